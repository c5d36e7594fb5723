package services

import (
	"context"

	"github.com/paymentops/settlement-backend/internal/core/domain"
	"github.com/paymentops/settlement-backend/internal/dto"
)

// PricingSvcFacade defines pricing config operations.
type PricingSvcFacade interface {
	// GetPricing retrieves the fee schedule for a site.
	GetPricing(ctx context.Context, siteID string) (*domain.PricingConfig, error)

	// UpsertPricing creates or replaces the fee schedule for a site,
	// preserving the running reserve_collected total.
	UpsertPricing(ctx context.Context, siteID string, req dto.UpsertPricingRequest, updaterUserID string) (*domain.PricingConfig, error)
}
