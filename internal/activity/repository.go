package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zinye/prm/backend/internal/contracts"
)

// Repository implements contracts.ActivityRepository on PostgreSQL.
// Deals and leads are owned by the CRM's deal/lead modules; this
// repository only reads them.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new activity repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetDeals retrieves a partner's deals closed within the date range.
// All statuses are returned; the aggregator decides what counts.
func (r *Repository) GetDeals(ctx context.Context, partnerID string, from, to time.Time) ([]contracts.DealRecord, error) {
	query := `
		SELECT partner_id, closed_date, COALESCE(deal_value, 0), status
		FROM crm.deals
		WHERE partner_id = $1 AND closed_date BETWEEN $2 AND $3
		ORDER BY closed_date ASC
	`

	rows, err := r.pool.Query(ctx, query, partnerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("query deals for partner %s: %w", partnerID, err)
	}
	defer rows.Close()

	var deals []contracts.DealRecord
	for rows.Next() {
		var d contracts.DealRecord
		if err := rows.Scan(&d.PartnerID, &d.ClosedAt, &d.Value, &d.Status); err != nil {
			return nil, err
		}
		deals = append(deals, d)
	}
	return deals, rows.Err()
}

// GetLeads retrieves a partner's leads created within the date range
func (r *Repository) GetLeads(ctx context.Context, partnerID string, from, to time.Time) ([]contracts.LeadRecord, error) {
	query := `
		SELECT partner_id, created_at, status = 'Converted' AS converted
		FROM crm.leads
		WHERE partner_id = $1 AND created_at BETWEEN $2 AND $3
		ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, partnerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("query leads for partner %s: %w", partnerID, err)
	}
	defer rows.Close()

	var leads []contracts.LeadRecord
	for rows.Next() {
		var l contracts.LeadRecord
		if err := rows.Scan(&l.PartnerID, &l.CreatedAt, &l.Converted); err != nil {
			return nil, err
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}
