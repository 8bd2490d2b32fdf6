package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zinye/prm/backend/internal/contracts"
)

func TestComputeTotals(t *testing.T) {
	timeline := []contracts.MonthBucket{
		{Month: "2024-01", DealsCount: 1, Revenue: 1000},
		{Month: "2024-02", DealsCount: 1, Revenue: 500, TotalLeads: 2, ConvertedLeads: 1},
	}

	totals := ComputeTotals(timeline)

	assert.Equal(t, 2, totals.DealsCount)
	assert.Equal(t, 1500.0, totals.Revenue)
	assert.Equal(t, 50.0, totals.ConversionRate)
}

func TestComputeTotals_NoLeads(t *testing.T) {
	timeline := []contracts.MonthBucket{
		{Month: "2024-01", DealsCount: 3, Revenue: 900},
	}

	totals := ComputeTotals(timeline)

	assert.Equal(t, 3, totals.DealsCount)
	assert.Equal(t, 900.0, totals.Revenue)
	assert.Zero(t, totals.ConversionRate)
}

func TestComputeTotals_Empty(t *testing.T) {
	assert.Equal(t, contracts.Totals{}, ComputeTotals(nil))
	assert.Equal(t, contracts.Totals{}, ComputeTotals([]contracts.MonthBucket{}))
}

func TestBuildSnapshot(t *testing.T) {
	timeline := []contracts.MonthBucket{{Month: "2024-01", DealsCount: 1, Revenue: 100}}
	totals := contracts.Totals{DealsCount: 1, Revenue: 100}
	score := contracts.ScoreBreakdown{Composite: 12.5}

	snapshot := BuildSnapshot("PRT-001", timeline, totals, score)

	assert.Equal(t, "PRT-001", snapshot.PartnerID)
	assert.Equal(t, timeline, snapshot.MonthlyTrends)
	assert.Equal(t, totals, snapshot.Totals)
	assert.Equal(t, score, snapshot.Score)
}

func TestBuildSnapshot_NilTimeline(t *testing.T) {
	snapshot := BuildSnapshot("PRT-001", nil, contracts.Totals{}, contracts.ScoreBreakdown{})

	// Serializes as [] rather than null
	assert.NotNil(t, snapshot.MonthlyTrends)
	assert.Empty(t, snapshot.MonthlyTrends)
}
