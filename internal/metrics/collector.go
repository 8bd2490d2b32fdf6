package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/zinye/prm/backend/internal/contracts"
	"github.com/zinye/prm/backend/pkg/logger"
)

// Collector retrieves raw deal and lead activity for one partner and one
// period window. Pure read, no side effects. A store failure surfaces as
// contracts.ErrActivityUnavailable so callers can tell "fetch failed" from
// "no activity".
type Collector struct {
	partnerRepo  contracts.PartnerRepository
	activityRepo contracts.ActivityRepository
	logger       *logger.Logger
}

// NewCollector creates a new metrics collector
func NewCollector(partnerRepo contracts.PartnerRepository, activityRepo contracts.ActivityRepository, log *logger.Logger) *Collector {
	return &Collector{
		partnerRepo:  partnerRepo,
		activityRepo: activityRepo,
		logger:       log.WithField("module", "collector"),
	}
}

// Collect resolves the partner, applies the default window when no period
// is given (last 12 months from now), and fetches both record series.
func (c *Collector) Collect(ctx context.Context, partnerID string, period *contracts.PeriodRange, now time.Time) (*contracts.Partner, []contracts.DealRecord, []contracts.LeadRecord, error) {
	// Reject malformed ranges before touching the store
	if period != nil {
		if err := period.Validate(); err != nil {
			return nil, nil, nil, err
		}
	}

	partner, err := c.partnerRepo.GetByID(ctx, partnerID)
	if err != nil {
		return nil, nil, nil, err
	}

	window := contracts.DefaultPeriodRange(now)
	if period != nil {
		window = *period
	}

	deals, err := c.activityRepo.GetDeals(ctx, partnerID, window.From, window.To)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: fetch deals: %v", contracts.ErrActivityUnavailable, err)
	}

	leads, err := c.activityRepo.GetLeads(ctx, partnerID, window.From, window.To)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: fetch leads: %v", contracts.ErrActivityUnavailable, err)
	}

	c.logger.WithFields(map[string]interface{}{
		"partner_id": partnerID,
		"from":       window.From.Format("2006-01-02"),
		"to":         window.To.Format("2006-01-02"),
		"deals":      len(deals),
		"leads":      len(leads),
	}).Debug("Collected partner activity")

	return partner, deals, leads, nil
}
