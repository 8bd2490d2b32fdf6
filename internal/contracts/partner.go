package contracts

import "time"

// PartnerTier is the partner ranking category. It affects benefits and
// presentation only; the scoring formula does not read it.
type PartnerTier string

const (
	TierBronze   PartnerTier = "Bronze"
	TierSilver   PartnerTier = "Silver"
	TierGold     PartnerTier = "Gold"
	TierPlatinum PartnerTier = "Platinum"
	TierDiamond  PartnerTier = "Diamond"
)

// PartnerType classifies the business relationship
type PartnerType string

const (
	TypeReseller    PartnerType = "Reseller"
	TypeDistributor PartnerType = "Distributor"
	TypeAffiliate   PartnerType = "Affiliate"
	TypeReferral    PartnerType = "Referral"
	TypeTechnology  PartnerType = "Technology"
)

// PartnerStatus is the lifecycle state of a partner record
type PartnerStatus string

const (
	StatusActive          PartnerStatus = "Active"
	StatusPendingApproval PartnerStatus = "Pending Approval"
	StatusInactive        PartnerStatus = "Inactive"
	StatusSuspended       PartnerStatus = "Suspended"
	StatusTerminated      PartnerStatus = "Terminated"
)

// Partner represents a partner record. The record itself is owned by the
// CRUD layer; the engine reads it and writes back only the cached score
// fields after a successful recalculation.
type Partner struct {
	ID        string        `json:"id"`
	Name      string        `json:"partner_name"`
	Code      string        `json:"partner_code"`
	Type      PartnerType   `json:"partner_type"`
	Tier      PartnerTier   `json:"partner_tier"`
	Status    PartnerStatus `json:"status"`
	Email     string        `json:"email"`
	Territory string        `json:"territory"`

	CommissionRate float64 `json:"commission_rate"` // 0-100
	DiscountLevel  float64 `json:"discount_level"`  // 0-100

	TrainingCompleted     bool `json:"training_completed"`
	CertificationObtained bool `json:"certification_obtained"`

	AgreementStartDate *time.Time `json:"agreement_start_date,omitempty"`
	AgreementEndDate   *time.Time `json:"agreement_end_date,omitempty"`

	// Cached performance fields, maintained by the engine
	TotalRevenueGenerated float64 `json:"total_revenue_generated"`
	TotalDealsClosed      int     `json:"total_deals_closed"`
	LeadConversionRate    float64 `json:"lead_conversion_rate"`
	PartnerScore          float64 `json:"partner_score"`
}

// IsActive reports whether the partner is in the Active status
func (p *Partner) IsActive() bool {
	return p.Status == StatusActive
}

// AgreementCovers reports whether the partner's agreement window covers
// the given date. An absent start date means "started"; an absent end date
// means the agreement has no verified validity and earns no credit.
func (p *Partner) AgreementCovers(now time.Time) bool {
	if p.AgreementEndDate == nil || !p.AgreementEndDate.After(now) {
		return false
	}
	if p.AgreementStartDate != nil && p.AgreementStartDate.After(now) {
		return false
	}
	return true
}

// ScoreFields is the set of cached fields written back onto the partner
// record after a successful score recalculation.
type ScoreFields struct {
	TotalRevenueGenerated float64
	TotalDealsClosed      int
	LeadConversionRate    float64
	PartnerScore          float64
}
