package contracts

import (
	"context"
	"time"
)

// PartnerRepository provides read access to partner records and the
// single write-back of cached score fields.
type PartnerRepository interface {
	GetByID(ctx context.Context, id string) (*Partner, error)
	ListActiveIDs(ctx context.Context) ([]string, error)
	CodeExists(ctx context.Context, code string) (bool, error)

	// UpdateScoreFields persists the cached score fields in a single
	// UPDATE (last-writer-wins at the record level).
	UpdateScoreFields(ctx context.Context, id string, fields ScoreFields) error
}

// ActivityRepository provides read access to raw deal and lead activity
// scoped to one partner and a closed date range.
type ActivityRepository interface {
	GetDeals(ctx context.Context, partnerID string, from, to time.Time) ([]DealRecord, error)
	GetLeads(ctx context.Context, partnerID string, from, to time.Time) ([]LeadRecord, error)
}

// Engine exposes the two operations the surrounding CRUD/API layer calls
type Engine interface {
	// GetPartnerPerformance runs the read-only pipeline. A nil period
	// selects the default window (last 12 months).
	GetPartnerPerformance(ctx context.Context, partnerID string, period *PeriodRange) (*PerformanceSnapshot, error)

	// RecalculatePartnerScore runs the full pipeline and writes the
	// resulting score fields back onto the partner record.
	RecalculatePartnerScore(ctx context.Context, partnerID string) (float64, error)
}
