package partner

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zinye/prm/backend/internal/contracts"
)

// Repository implements contracts.PartnerRepository on PostgreSQL
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new partner repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByID retrieves a partner record by ID
func (r *Repository) GetByID(ctx context.Context, id string) (*contracts.Partner, error) {
	query := `
		SELECT id, partner_name, partner_code, partner_type, partner_tier, status,
		       email, territory, commission_rate, discount_level,
		       training_completed, certification_obtained,
		       agreement_start_date, agreement_end_date,
		       total_revenue_generated, total_deals_closed, lead_conversion_rate, partner_score
		FROM crm.partners
		WHERE id = $1
	`

	var p contracts.Partner
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Code, &p.Type, &p.Tier, &p.Status,
		&p.Email, &p.Territory, &p.CommissionRate, &p.DiscountLevel,
		&p.TrainingCompleted, &p.CertificationObtained,
		&p.AgreementStartDate, &p.AgreementEndDate,
		&p.TotalRevenueGenerated, &p.TotalDealsClosed, &p.LeadConversionRate, &p.PartnerScore,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, contracts.ErrPartnerNotFound
		}
		return nil, fmt.Errorf("get partner %s: %w", id, err)
	}
	return &p, nil
}

// ListActiveIDs returns the IDs of all Active partners, for bulk
// recalculation runs.
func (r *Repository) ListActiveIDs(ctx context.Context) ([]string, error) {
	query := `
		SELECT id
		FROM crm.partners
		WHERE status = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, contracts.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("list active partners: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CodeExists reports whether a partner code is already taken
func (r *Repository) CodeExists(ctx context.Context, code string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM crm.partners WHERE partner_code = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, code).Scan(&exists); err != nil {
		return false, fmt.Errorf("check partner code %s: %w", code, err)
	}
	return exists, nil
}

// UpdateScoreFields writes the cached score fields in a single UPDATE.
// Concurrent recalculations for the same partner are last-writer-wins.
func (r *Repository) UpdateScoreFields(ctx context.Context, id string, fields contracts.ScoreFields) error {
	query := `
		UPDATE crm.partners
		SET total_revenue_generated = $2,
		    total_deals_closed = $3,
		    lead_conversion_rate = $4,
		    partner_score = $5,
		    updated_at = now()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id,
		fields.TotalRevenueGenerated,
		fields.TotalDealsClosed,
		fields.LeadConversionRate,
		fields.PartnerScore,
	)
	if err != nil {
		return fmt.Errorf("update score fields for partner %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return contracts.ErrPartnerNotFound
	}
	return nil
}
