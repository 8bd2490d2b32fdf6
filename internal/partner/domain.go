package partner

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/zinye/prm/backend/internal/contracts"
)

// Domain rules the original partner record enforced on save. The CRUD
// layer owns the record; it calls these before persisting.

// ValidateAgreementDates rejects an agreement whose end does not fall
// strictly after its start. Records with either date absent are accepted.
func ValidateAgreementDates(p *contracts.Partner) error {
	if p.AgreementStartDate == nil || p.AgreementEndDate == nil {
		return nil
	}
	if !p.AgreementEndDate.After(*p.AgreementStartDate) {
		return fmt.Errorf("agreement end date must be after agreement start date")
	}
	return nil
}

// ValidateRates checks commission rate and discount level are within 0-100
func ValidateRates(p *contracts.Partner) error {
	if p.CommissionRate < 0 || p.CommissionRate > 100 {
		return fmt.Errorf("commission rate must be between 0 and 100, got %.2f", p.CommissionRate)
	}
	if p.DiscountLevel < 0 || p.DiscountLevel > 100 {
		return fmt.Errorf("discount level must be between 0 and 100, got %.2f", p.DiscountLevel)
	}
	return nil
}

// Commission calculates a partner's commission for a deal value
func Commission(p *contracts.Partner, dealValue float64) float64 {
	if p.CommissionRate <= 0 {
		return 0
	}
	return dealValue * p.CommissionRate / 100
}

// CodeBase derives the fixed prefix of a partner code: the partner name
// upper-cased with whitespace removed, truncated to six runes, plus the
// first three letters of the type ("GEN" when the type is unset).
func CodeBase(name string, partnerType contracts.PartnerType) string {
	var b strings.Builder
	for _, word := range strings.Fields(name) {
		for _, r := range word {
			if b.Len() >= 6 {
				break
			}
			b.WriteRune(unicode.ToUpper(r))
		}
		if b.Len() >= 6 {
			break
		}
	}

	typeCode := "GEN"
	if s := string(partnerType); len(s) >= 3 {
		typeCode = strings.ToUpper(s[:3])
	}

	return b.String() + typeCode
}

// GenerateCode produces the first free partner code for the given name and
// type by probing <base><NNN> counters against the repository.
func GenerateCode(ctx context.Context, repo contracts.PartnerRepository, name string, partnerType contracts.PartnerType) (string, error) {
	base := CodeBase(name, partnerType)

	for counter := 1; ; counter++ {
		code := fmt.Sprintf("%s%03d", base, counter)
		exists, err := repo.CodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("generate partner code: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
}
