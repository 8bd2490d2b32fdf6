package metrics

import (
	"math"
	"time"

	"github.com/zinye/prm/backend/internal/contracts"
	"github.com/zinye/prm/backend/pkg/config"
)

// Composite weights. They sum to 1.0, so the final clamp is a safety net
// against malformed sub-scores rather than a normal path.
const (
	weightRevenue    = 0.4
	weightConversion = 0.3
	weightTraining   = 0.2
	weightCompliance = 0.1
)

// ScoreCalculator computes the four normalized sub-scores and the weighted
// composite. It is deterministic: identical partner fields, totals, and
// reference date produce identical output. The reference date is always an
// explicit argument so tests can fix it.
type ScoreCalculator struct {
	revenueBenchmark float64
	conversionTarget float64
}

// NewScoreCalculator creates a score calculator from the configured
// normalization benchmarks.
func NewScoreCalculator(cfg config.ScoringConfig) *ScoreCalculator {
	return &ScoreCalculator{
		revenueBenchmark: cfg.RevenueBenchmark,
		conversionTarget: cfg.ConversionTarget,
	}
}

// Score computes the full breakdown for a partner over the given totals.
// now is the compliance reference date.
func (c *ScoreCalculator) Score(partner *contracts.Partner, totals contracts.Totals, now time.Time) contracts.ScoreBreakdown {
	breakdown := contracts.ScoreBreakdown{
		RevenueScore:    c.revenueScore(totals.Revenue),
		ConversionScore: c.conversionScore(totals.ConversionRate),
		TrainingScore:   c.trainingScore(partner),
		ComplianceScore: c.complianceScore(partner, now),
	}

	composite := weightRevenue*breakdown.RevenueScore +
		weightConversion*breakdown.ConversionScore +
		weightTraining*breakdown.TrainingScore +
		weightCompliance*breakdown.ComplianceScore

	breakdown.Composite = clamp(composite)
	return breakdown
}

// revenueScore scales total revenue against the configured benchmark
func (c *ScoreCalculator) revenueScore(revenue float64) float64 {
	if revenue <= 0 {
		return 0
	}
	return clamp(revenue / c.revenueBenchmark * 100)
}

// conversionScore scales the overall conversion rate against the target
func (c *ScoreCalculator) conversionScore(rate float64) float64 {
	if rate <= 0 {
		return 0
	}
	return clamp(rate / c.conversionTarget * 100)
}

// trainingScore grants half credit each for completed training and an
// obtained certification.
func (c *ScoreCalculator) trainingScore(partner *contracts.Partner) float64 {
	score := 0.0
	if partner.TrainingCompleted {
		score += 50
	}
	if partner.CertificationObtained {
		score += 50
	}
	return score
}

// complianceScore grants half credit for Active status and half for an
// agreement window covering the reference date.
func (c *ScoreCalculator) complianceScore(partner *contracts.Partner, now time.Time) float64 {
	score := 0.0
	if partner.IsActive() {
		score += 50
	}
	if partner.AgreementCovers(now) {
		score += 50
	}
	return score
}

// clamp bounds a score to [0,100] and squashes non-finite values to 0
func clamp(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
