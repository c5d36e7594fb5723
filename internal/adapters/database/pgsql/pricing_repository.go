package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/paymentops/settlement-backend/internal/apperrors"
	"github.com/paymentops/settlement-backend/internal/core/domain"
	portsrepo "github.com/paymentops/settlement-backend/internal/core/ports/repositories"
)

type PgxPricingRepository struct {
	pool *pgxpool.Pool
}

// NewPricingRepository creates a new repository for per-site pricing configs.
func NewPricingRepository(pool *pgxpool.Pool) portsrepo.PricingRepository {
	return &PgxPricingRepository{pool: pool}
}

// FindPricingBySiteID retrieves the pricing config for a site.
func (r *PgxPricingRepository) FindPricingBySiteID(ctx context.Context, siteID string) (*domain.PricingConfig, error) {
	query := `
		SELECT site_id, percentage_fee, per_transaction_fee, refund_fee, chargeback_fee,
		       reserve_amount, reserve_collected,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM pricing_configs
		WHERE site_id = $1;
	`
	var pricing domain.PricingConfig
	err := r.pool.QueryRow(ctx, query, siteID).Scan(
		&pricing.SiteID,
		&pricing.PercentageFee,
		&pricing.PerTransactionFee,
		&pricing.RefundFee,
		&pricing.ChargebackFee,
		&pricing.ReserveAmount,
		&pricing.ReserveCollected,
		&pricing.CreatedAt,
		&pricing.CreatedBy,
		&pricing.LastUpdatedAt,
		&pricing.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find pricing config for site %s: %w", siteID, err)
	}
	return &pricing, nil
}

// UpsertPricing creates or replaces the fee schedule for a site. The running
// reserve_collected total is deliberately excluded from the update set: only
// the settlement report writer advances it.
func (r *PgxPricingRepository) UpsertPricing(ctx context.Context, pricing domain.PricingConfig) error {
	query := `
		INSERT INTO pricing_configs (site_id, percentage_fee, per_transaction_fee, refund_fee, chargeback_fee,
		                             reserve_amount, reserve_collected,
		                             created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (site_id) DO UPDATE SET
			percentage_fee = EXCLUDED.percentage_fee,
			per_transaction_fee = EXCLUDED.per_transaction_fee,
			refund_fee = EXCLUDED.refund_fee,
			chargeback_fee = EXCLUDED.chargeback_fee,
			reserve_amount = EXCLUDED.reserve_amount,
			last_updated_at = EXCLUDED.last_updated_at,
			last_updated_by = EXCLUDED.last_updated_by;
	`
	_, err := r.pool.Exec(ctx, query,
		pricing.SiteID,
		pricing.PercentageFee,
		pricing.PerTransactionFee,
		pricing.RefundFee,
		pricing.ChargebackFee,
		pricing.ReserveAmount,
		pricing.ReserveCollected,
		pricing.CreatedAt,
		pricing.CreatedBy,
		pricing.LastUpdatedAt,
		pricing.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert pricing config for site %s: %w", pricing.SiteID, err)
	}
	return nil
}
