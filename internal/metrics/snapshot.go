package metrics

import "github.com/zinye/prm/backend/internal/contracts"

// ComputeTotals sums monthly buckets into aggregate totals. The overall
// conversion rate is computed from the summed lead counts and is 0 when the
// timeline contains no leads at all; it never divides by zero.
func ComputeTotals(timeline []contracts.MonthBucket) contracts.Totals {
	var totals contracts.Totals
	var totalLeads, convertedLeads int

	for _, b := range timeline {
		totals.DealsCount += b.DealsCount
		totals.Revenue += b.Revenue
		totalLeads += b.TotalLeads
		convertedLeads += b.ConvertedLeads
	}

	if totalLeads > 0 {
		totals.ConversionRate = float64(convertedLeads) / float64(totalLeads) * 100
	}

	return totals
}

// BuildSnapshot assembles the immutable performance snapshot. Pure
// packaging: the score breakdown is trusted as-is, nothing is recomputed.
func BuildSnapshot(partnerID string, timeline []contracts.MonthBucket, totals contracts.Totals, score contracts.ScoreBreakdown) *contracts.PerformanceSnapshot {
	if timeline == nil {
		timeline = []contracts.MonthBucket{}
	}
	return &contracts.PerformanceSnapshot{
		PartnerID:     partnerID,
		MonthlyTrends: timeline,
		Totals:        totals,
		Score:         score,
	}
}
