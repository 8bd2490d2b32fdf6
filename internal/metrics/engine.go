package metrics

import (
	"context"
	"time"

	"github.com/zinye/prm/backend/internal/contracts"
	"github.com/zinye/prm/backend/pkg/logger"
	"github.com/zinye/prm/backend/pkg/redis"
)

// SnapshotCache is the subset of the shared cache the engine uses for
// performance snapshots. Satisfied by *redis.Cache.
type SnapshotCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// Engine wires collector, aggregator, scorer, and snapshot assembly into
// the two operations exposed to the surrounding CRUD/API layer. One
// invocation handles one partner's one period window; invocations share no
// mutable state, so they may run concurrently without coordination.
type Engine struct {
	collector  *Collector
	aggregator *TrendAggregator
	scorer     *ScoreCalculator

	partnerRepo contracts.PartnerRepository
	cache       SnapshotCache
	cacheTTL    time.Duration

	logger *logger.Logger

	// now is injectable for deterministic tests
	now func() time.Time
}

// NewEngine creates the metrics engine. cache may be backed by a disabled
// Redis client, in which case every lookup is a miss.
func NewEngine(
	collector *Collector,
	aggregator *TrendAggregator,
	scorer *ScoreCalculator,
	partnerRepo contracts.PartnerRepository,
	cache SnapshotCache,
	cacheTTL time.Duration,
	log *logger.Logger,
) *Engine {
	return &Engine{
		collector:   collector,
		aggregator:  aggregator,
		scorer:      scorer,
		partnerRepo: partnerRepo,
		cache:       cache,
		cacheTTL:    cacheTTL,
		logger:      log.WithField("module", "engine"),
		now:         time.Now,
	}
}

// WithClock overrides the engine's clock. Test hook.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// GetPartnerPerformance runs the read-only pipeline: collect, aggregate,
// score, assemble. No persistence side effect.
func (e *Engine) GetPartnerPerformance(ctx context.Context, partnerID string, period *contracts.PeriodRange) (*contracts.PerformanceSnapshot, error) {
	now := e.now()

	// Validate before consulting the cache so malformed input never
	// produces a cached (or fabricated) result.
	if period != nil {
		if err := period.Validate(); err != nil {
			return nil, err
		}
	}

	window := contracts.DefaultPeriodRange(now)
	if period != nil {
		window = *period
	}
	cacheKey := redis.PartnerPerformanceKey(
		partnerID,
		window.From.Format("2006-01-02"),
		window.To.Format("2006-01-02"),
	)

	if e.cache != nil {
		var cached contracts.PerformanceSnapshot
		if found, err := e.cache.Get(ctx, cacheKey, &cached); err == nil && found {
			return &cached, nil
		}
	}

	snapshot, err := e.run(ctx, partnerID, period, now)
	if err != nil {
		return nil, err
	}

	if e.cache != nil {
		if err := e.cache.Set(ctx, cacheKey, snapshot, e.cacheTTL); err != nil {
			e.logger.WithError(err).Warn("Failed to cache performance snapshot")
		}
	}

	return snapshot, nil
}

// RecalculatePartnerScore runs the full pipeline over the default window
// and writes the cached score fields back onto the partner record. The
// write-back happens only after the composite is computed; any earlier
// failure aborts with nothing persisted.
func (e *Engine) RecalculatePartnerScore(ctx context.Context, partnerID string) (float64, error) {
	now := e.now()

	snapshot, err := e.run(ctx, partnerID, nil, now)
	if err != nil {
		return 0, err
	}

	fields := contracts.ScoreFields{
		TotalRevenueGenerated: snapshot.Totals.Revenue,
		TotalDealsClosed:      snapshot.Totals.DealsCount,
		LeadConversionRate:    snapshot.Totals.ConversionRate,
		PartnerScore:          snapshot.Score.Composite,
	}
	if err := e.partnerRepo.UpdateScoreFields(ctx, partnerID, fields); err != nil {
		return 0, err
	}

	// Drop every cached window for this partner; the next read recomputes
	if e.cache != nil {
		if err := e.cache.DeleteByPattern(ctx, redis.PartnerPerformancePattern(partnerID)); err != nil {
			e.logger.WithError(err).Warn("Failed to invalidate snapshot cache")
		}
	}

	e.logger.WithFields(map[string]interface{}{
		"partner_id": partnerID,
		"score":      snapshot.Score.Composite,
		"revenue":    snapshot.Totals.Revenue,
		"deals":      snapshot.Totals.DealsCount,
	}).Info("Partner score recalculated")

	return snapshot.Score.Composite, nil
}

// run executes collect -> aggregate -> score -> assemble
func (e *Engine) run(ctx context.Context, partnerID string, period *contracts.PeriodRange, now time.Time) (*contracts.PerformanceSnapshot, error) {
	partner, deals, leads, err := e.collector.Collect(ctx, partnerID, period, now)
	if err != nil {
		return nil, err
	}

	timeline := e.aggregator.Aggregate(deals, leads)
	totals := ComputeTotals(timeline)
	score := e.scorer.Score(partner, totals, now)

	return BuildSnapshot(partnerID, timeline, totals, score), nil
}
