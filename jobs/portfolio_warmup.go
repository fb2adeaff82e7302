package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/telaris-erp/telaris-reports/internal/portfolio"
)

// PortfolioWarmupJob refreshes the snapshot cache so the first dashboard hit
// after a deploy or cache expiry does not pay the full fetch.
type PortfolioWarmupJob struct {
	Fetcher portfolio.Fetcher
	Cache   *portfolio.Cache
	Logger  *slog.Logger
	clock   func() time.Time
}

// NewPortfolioWarmupJob wires dependencies for the warmup handler.
func NewPortfolioWarmupJob(fetcher portfolio.Fetcher, cache *portfolio.Cache, logger *slog.Logger) *PortfolioWarmupJob {
	return &PortfolioWarmupJob{
		Fetcher: fetcher,
		Cache:   cache,
		Logger:  logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes portfolio warmup tasks.
func (j *PortfolioWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Fetcher == nil {
		return errors.New("portfolio warmup: handler not configured")
	}
	var payload PortfolioWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	logger := j.logger()
	if payload.Reason != "" {
		logger = logger.With(slog.String("reason", payload.Reason))
	}
	logger.Info("starting portfolio warmup")

	start := j.now()
	jobCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	if err := j.Cache.Bump(jobCtx); err != nil {
		logger.Error("bump snapshot cache", slog.Any("error", err))
		return err
	}
	records, err := j.Fetcher.FetchRecords(jobCtx)
	if err != nil {
		logger.Error("fetch open items", slog.Any("error", err))
		return err
	}
	if err := j.Cache.Set(jobCtx, records); err != nil {
		logger.Error("store snapshot", slog.Any("error", err))
		return err
	}

	logger.Info("completed portfolio warmup",
		slog.Int("records", len(records)),
		slog.Duration("duration", time.Since(start)))
	return nil
}

func (j *PortfolioWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskPortfolioWarmup))
	}
	return slog.Default().With(slog.String("job", TaskPortfolioWarmup))
}

func (j *PortfolioWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
