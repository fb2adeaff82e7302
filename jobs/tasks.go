// Package jobs holds the asynq task types and the worker wrapper.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskPortfolioWarmup pre-populates the portfolio snapshot cache.
	TaskPortfolioWarmup = "portfolio:warmup"
)

// PortfolioWarmupPayload parameterises a warmup run.
type PortfolioWarmupPayload struct {
	// Reason distinguishes scheduled runs from manual triggers in logs.
	Reason string `json:"reason,omitempty"`
}

// NewPortfolioWarmupTask constructs an asynq task.
func NewPortfolioWarmupTask(payload PortfolioWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPortfolioWarmup, data), nil
}
