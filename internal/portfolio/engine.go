package portfolio

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// Fetcher loads the full baseline record set. No pagination and no
// server-side filtering: the engine owns all filtering in memory.
type Fetcher interface {
	FetchRecords(ctx context.Context) ([]Record, error)
}

// Engine owns the report state: the immutable baseline, the global filter and
// one selection per facet. Derived views are recomputed from current inputs
// on every read; nothing is patched incrementally.
type Engine struct {
	fetcher Fetcher
	logger  *slog.Logger
	now     func() time.Time

	mu          sync.RWMutex
	baseline    []Record
	loaded      bool
	snapshotID  string
	refreshedAt time.Time
	global      GlobalFilter
	selections  SelectionSet

	flight  singleflight.Group
	loading atomic.Bool
}

// NewEngine builds an engine with the documented default filter (receivable
// documents only) and empty selections.
func NewEngine(fetcher Fetcher, logger *slog.Logger) *Engine {
	return &Engine{
		fetcher:    fetcher,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
		global:     DefaultGlobalFilter(),
		selections: make(SelectionSet),
	}
}

// WithNow overrides the engine clock for testing.
func (e *Engine) WithNow(fn func() time.Time) {
	if fn != nil {
		e.now = fn
	}
}

// Refresh replaces the baseline wholesale. Concurrent callers collapse onto
// a single fetch; on failure the current baseline is left untouched (still
// empty when the initial load fails).
func (e *Engine) Refresh(ctx context.Context) error {
	if e.fetcher == nil {
		return fmt.Errorf("portfolio: fetcher not configured")
	}
	_, err, _ := e.flight.Do("refresh", func() (interface{}, error) {
		e.loading.Store(true)
		defer e.loading.Store(false)

		records, err := e.fetcher.FetchRecords(ctx)
		if err != nil {
			e.log().Error("refresh baseline", slog.Any("error", err))
			return nil, err
		}

		e.mu.Lock()
		e.baseline = records
		e.loaded = true
		e.snapshotID = uuid.NewString()
		e.refreshedAt = e.now()
		e.mu.Unlock()

		e.log().Info("baseline refreshed", slog.Int("records", len(records)))
		return nil, nil
	})
	return err
}

// Loading reports whether a refresh is in flight; callers use it to disable
// re-triggering.
func (e *Engine) Loading() bool {
	return e.loading.Load()
}

// SnapshotID identifies the current baseline; empty before the first
// successful load.
func (e *Engine) SnapshotID() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshotID
}

// RefreshedAt returns when the baseline was last replaced.
func (e *Engine) RefreshedAt() time.Time {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.refreshedAt
}

// SetGlobalFilter replaces one field's allow-list. No values removes the
// restriction on that field.
func (e *Engine) SetGlobalFilter(field Field, values []string) error {
	if !FilterableField(field) {
		return fmt.Errorf("portfolio: field %q is not globally filterable", field)
	}
	e.mu.Lock()
	e.global = e.global.With(field, values...)
	e.mu.Unlock()
	return nil
}

// ResetGlobalFilter restores the documented default (account type =
// receivable) and drops every other restriction.
func (e *Engine) ResetGlobalFilter() {
	e.mu.Lock()
	e.global = DefaultGlobalFilter()
	e.mu.Unlock()
}

// GlobalFilter returns a copy of the current filter.
func (e *Engine) GlobalFilter() GlobalFilter {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.global.Clone()
}

// Select applies the toggle transition for one facet: re-applying the
// current selection clears it, anything else replaces it wholesale.
func (e *Engine) Select(facet Facet, candidate Selection) error {
	if !facet.Valid() {
		return fmt.Errorf("portfolio: unknown facet %q", facet)
	}
	e.mu.Lock()
	e.selections[facet] = e.selections[facet].Apply(candidate)
	e.mu.Unlock()
	return nil
}

// ClearSelection unconditionally resets one facet's selection.
func (e *Engine) ClearSelection(facet Facet) error {
	if !facet.Valid() {
		return fmt.Errorf("portfolio: unknown facet %q", facet)
	}
	e.mu.Lock()
	e.selections[facet] = Selection{}
	e.mu.Unlock()
	return nil
}

// Selection returns one facet's current selection.
func (e *Engine) Selection(facet Facet) Selection {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.selections[facet]
}

// View recomputes one facet's aggregate rows: global filter, then the other
// two facets' selections, then grouping and ordering.
func (e *Engine) View(facet Facet) (FacetView, error) {
	if !facet.Valid() {
		return FacetView{}, fmt.Errorf("portfolio: unknown facet %q", facet)
	}
	baseline, global, selections := e.snapshot()
	filtered := ApplyGlobalFilter(baseline, global)
	foreign := ForeignFiltered(facet, filtered, selections)
	return Aggregate(facet, foreign), nil
}

// KPI computes the summary totals over the fully-constrained set.
func (e *Engine) KPI() KPISummary {
	baseline, global, selections := e.snapshot()
	filtered := ApplyGlobalFilter(baseline, global)
	return ComputeKPI(FullyFiltered(filtered, selections), e.now())
}

// ExportRecords returns the fully-constrained array behind bulk export.
func (e *Engine) ExportRecords() []Record {
	baseline, global, selections := e.snapshot()
	filtered := ApplyGlobalFilter(baseline, global)
	return FullyFiltered(filtered, selections)
}

func (e *Engine) snapshot() ([]Record, GlobalFilter, SelectionSet) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.baseline, e.global.Clone(), e.selections.Clone()
}

func (e *Engine) log() *slog.Logger {
	if e.logger != nil {
		return e.logger.With(slog.String("component", "portfolio_engine"))
	}
	return slog.Default().With(slog.String("component", "portfolio_engine"))
}
