package contracts

import "time"

// DealStatusWon is the only deal status that counts toward revenue and
// deal counts.
const DealStatusWon = "Won"

// DealRecord is a raw deal row scoped to one partner
type DealRecord struct {
	PartnerID string    `json:"partner_id"`
	ClosedAt  time.Time `json:"closed_at"`
	Value     float64   `json:"value"`
	Status    string    `json:"status"`
}

// IsWon reports whether the deal counts toward revenue
func (d *DealRecord) IsWon() bool {
	return d.Status == DealStatusWon
}

// LeadRecord is a raw lead row scoped to one partner
type LeadRecord struct {
	PartnerID string    `json:"partner_id"`
	CreatedAt time.Time `json:"created_at"`
	Converted bool      `json:"converted"`
}

// PeriodRange bounds a performance query. A nil *PeriodRange means the
// default window (last 12 months from the reference date).
type PeriodRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Validate rejects inverted ranges before any data is fetched
func (p *PeriodRange) Validate() error {
	if p.To.Before(p.From) {
		return ErrInvalidPeriod
	}
	return nil
}

// DefaultPeriodRange returns the last 12 months ending at now
func DefaultPeriodRange(now time.Time) PeriodRange {
	return PeriodRange{
		From: now.AddDate(0, -12, 0),
		To:   now,
	}
}
