package badges

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Engine orchestrates aggregation, rule evaluation, ranking and
// reconciliation for contractor badges. Stateless; a recompute is a short
// read-then-compute-then-write sequence.
type Engine struct {
	store      Store
	aggregator *Aggregator
	logger     *zap.Logger
	now        func() time.Time
	parallel   int
}

// Option configures an Engine
type Option func(*Engine)

// WithClock injects the clock used for expiry and award timestamps
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithSweepParallelism bounds the number of concurrent contractor
// recomputations in SweepAll
func WithSweepParallelism(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.parallel = n
		}
	}
}

// NewEngine creates a badge engine
func NewEngine(store Store, aggregator *Aggregator, logger *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:      store,
		aggregator: aggregator,
		logger:     logger,
		now:        time.Now,
		parallel:   8,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ComputeBadges evaluates the rule set over aggregated data. Pure and
// deterministic: same input, same badge set.
func (e *Engine) ComputeBadges(agg *Aggregate) BadgeSet {
	return evaluateBadges(agg)
}

// Recompute re-evaluates one contractor and applies the resulting delta as
// a single atomic badge-set replace. A concurrent-modification conflict is
// retried once with fresh aggregation; recomputation is cheap and
// idempotent, so last writer wins on the full set.
func (e *Engine) Recompute(ctx context.Context, contractorID uuid.UUID) (Delta, error) {
	var delta Delta
	for attempt := 0; ; attempt++ {
		agg, err := e.aggregator.Aggregate(ctx, contractorID)
		if err != nil {
			return Delta{}, err
		}

		existing, err := e.store.ListBadgeRecords(ctx, contractorID)
		if err != nil {
			return Delta{}, fmt.Errorf("fetch badge records for %s: %w", contractorID, err)
		}

		current := e.ComputeBadges(agg)
		delta = Reconcile(contractorID, existing, current, e.now())
		if delta.Empty() {
			return delta, nil
		}

		err = e.store.ApplyBadgeSet(ctx, contractorID, agg.Profile.Version, delta.ToCreate, delta.ToRemove, delta.Final)
		if err == nil {
			e.logger.Info("badge set updated",
				zap.String("contractorId", contractorID.String()),
				zap.Int("created", len(delta.ToCreate)),
				zap.Int("removed", len(delta.ToRemove)),
			)
			return delta, nil
		}
		if errors.Is(err, ErrConflict) && attempt == 0 {
			e.logger.Warn("badge apply conflict, retrying with fresh aggregation",
				zap.String("contractorId", contractorID.String()))
			continue
		}
		return Delta{}, fmt.Errorf("apply badge set for %s: %w", contractorID, err)
	}
}

// SweepResult summarizes a batch recomputation
type SweepResult struct {
	Total   int
	Updated int
	Failed  int
}

// SweepAll recomputes every contractor's badges. Contractors are
// independent, so the sweep runs them in parallel with a bound; a partially
// completed sweep is safe to rerun since each recompute is self-contained.
func (e *Engine) SweepAll(ctx context.Context) (SweepResult, error) {
	ids, err := e.store.ListContractorIDs(ctx)
	if err != nil {
		return SweepResult{}, fmt.Errorf("list contractors: %w", err)
	}

	result := SweepResult{Total: len(ids)}
	e.logger.Info("starting badge sweep", zap.Int("contractors", len(ids)))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.parallel)

	results := make([]int8, len(ids))
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			delta, err := e.Recompute(gctx, id)
			if err != nil {
				e.logger.Error("badge recompute failed",
					zap.String("contractorId", id.String()),
					zap.Error(err),
				)
				results[i] = -1
				return nil // keep sweeping; failures are per-contractor
			}
			if !delta.Empty() {
				results[i] = 1
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result, err
	}

	for _, r := range results {
		switch r {
		case 1:
			result.Updated++
		case -1:
			result.Failed++
		}
	}

	e.logger.Info("badge sweep complete",
		zap.Int("total", result.Total),
		zap.Int("updated", result.Updated),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}
