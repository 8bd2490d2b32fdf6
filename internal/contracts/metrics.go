package contracts

import "time"

// MonthKeyLayout is the time layout producing "YYYY-MM" month keys.
// Keys sort lexicographically in chronological order.
const MonthKeyLayout = "2006-01"

// MonthKey derives the month bucket key for a timestamp
func MonthKey(t time.Time) string {
	return t.Format(MonthKeyLayout)
}

// MonthBucket aggregates one partner's activity for one calendar month.
// A month present in only one source series still gets a bucket, with the
// missing side's fields zeroed.
type MonthBucket struct {
	Month          string  `json:"month"` // YYYY-MM
	DealsCount     int     `json:"deals_count"`
	Revenue        float64 `json:"revenue"`
	TotalLeads     int     `json:"total_leads"`
	ConvertedLeads int     `json:"converted_leads"`
}

// Totals holds aggregate figures summed over a timeline
type Totals struct {
	DealsCount     int     `json:"deals_count"`
	Revenue        float64 `json:"revenue"`
	ConversionRate float64 `json:"conversion_rate"` // %, 0 when no leads
}

// ScoreBreakdown holds the composite score and the four weighted sub-scores
// that produced it. Every field is finite and within [0,100].
type ScoreBreakdown struct {
	Composite       float64 `json:"composite"`
	RevenueScore    float64 `json:"revenue_score"`
	ConversionScore float64 `json:"conversion_score"`
	TrainingScore   float64 `json:"training_score"`
	ComplianceScore float64 `json:"compliance_score"`
}

// PerformanceSnapshot is the sole artifact the engine returns across its
// boundary: the merged monthly timeline, aggregate totals, and the score
// breakdown. It is assembled once per request and never mutated.
type PerformanceSnapshot struct {
	PartnerID     string         `json:"partner_id"`
	MonthlyTrends []MonthBucket  `json:"monthly_trends"`
	Totals        Totals         `json:"totals"`
	Score         ScoreBreakdown `json:"score"`
}
