package metrics

import (
	"sort"

	"github.com/zinye/prm/backend/internal/contracts"
)

// DealBucket holds the deal-side metrics for one month key
type DealBucket struct {
	Count   int
	Revenue float64
}

// LeadBucket holds the lead-side metrics for one month key
type LeadBucket struct {
	Total     int
	Converted int
}

// TrendAggregator groups raw activity into per-month buckets and merges
// the two independently-sourced series into one ordered monthly timeline.
// Both group-by passes and the merge are pure; the output depends only on
// the multiset of input records, never on their order.
type TrendAggregator struct{}

// NewTrendAggregator creates a new trend aggregator
func NewTrendAggregator() *TrendAggregator {
	return &TrendAggregator{}
}

// BucketizeDeals groups deal records by month key. Only won deals count
// toward the count and revenue; a month whose deals are all lost yields
// no bucket at all, matching the source query's WHERE clause.
func (a *TrendAggregator) BucketizeDeals(deals []contracts.DealRecord) map[string]DealBucket {
	buckets := make(map[string]DealBucket)
	for _, d := range deals {
		if !d.IsWon() {
			continue
		}
		key := contracts.MonthKey(d.ClosedAt)
		b := buckets[key]
		b.Count++
		b.Revenue += d.Value
		buckets[key] = b
	}
	return buckets
}

// BucketizeLeads groups lead records by month key
func (a *TrendAggregator) BucketizeLeads(leads []contracts.LeadRecord) map[string]LeadBucket {
	buckets := make(map[string]LeadBucket)
	for _, l := range leads {
		key := contracts.MonthKey(l.CreatedAt)
		b := buckets[key]
		b.Total++
		if l.Converted {
			b.Converted++
		}
		buckets[key] = b
	}
	return buckets
}

// Merge unions the month keys of both bucket sets into one timeline sorted
// ascending by month key. A key present on only one side gets zeros for the
// other side's fields; no key is invented, none is dropped, none repeats.
func (a *TrendAggregator) Merge(deals map[string]DealBucket, leads map[string]LeadBucket) []contracts.MonthBucket {
	keys := make(map[string]struct{}, len(deals)+len(leads))
	for k := range deals {
		keys[k] = struct{}{}
	}
	for k := range leads {
		keys[k] = struct{}{}
	}

	timeline := make([]contracts.MonthBucket, 0, len(keys))
	for k := range keys {
		d := deals[k] // zero value when absent
		l := leads[k]
		timeline = append(timeline, contracts.MonthBucket{
			Month:          k,
			DealsCount:     d.Count,
			Revenue:        d.Revenue,
			TotalLeads:     l.Total,
			ConvertedLeads: l.Converted,
		})
	}

	// String order equals chronological order for YYYY-MM keys
	sort.Slice(timeline, func(i, j int) bool {
		return timeline[i].Month < timeline[j].Month
	})

	return timeline
}

// Aggregate is the full pass: two group-bys followed by the merge
func (a *TrendAggregator) Aggregate(deals []contracts.DealRecord, leads []contracts.LeadRecord) []contracts.MonthBucket {
	return a.Merge(a.BucketizeDeals(deals), a.BucketizeLeads(leads))
}
