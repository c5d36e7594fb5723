package repositories

import (
	"context"

	"github.com/paymentops/settlement-backend/internal/core/domain"
)

// PricingRepository defines storage operations for per-site pricing configs.
// The running reserve total on a config is advanced only by the settlement
// report writer, inside the settlement write transaction; there is no
// standalone mutation of reserve_collected.
type PricingRepository interface {
	// FindPricingBySiteID retrieves the pricing config for a site.
	// Returns apperrors.ErrNotFound when the site has none; absence is a
	// valid, handled state (the site is skipped by the batch runner).
	FindPricingBySiteID(ctx context.Context, siteID string) (*domain.PricingConfig, error)

	// UpsertPricing creates or replaces the fee schedule for a site. The
	// running reserve_collected total is preserved across upserts.
	UpsertPricing(ctx context.Context, pricing domain.PricingConfig) error
}
