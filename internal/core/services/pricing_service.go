package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/paymentops/settlement-backend/internal/apperrors"
	"github.com/paymentops/settlement-backend/internal/core/domain"
	portsrepo "github.com/paymentops/settlement-backend/internal/core/ports/repositories"
	portssvc "github.com/paymentops/settlement-backend/internal/core/ports/services"
	"github.com/paymentops/settlement-backend/internal/dto"
	"github.com/paymentops/settlement-backend/internal/middleware"
	"github.com/shopspring/decimal"
)

var ErrNegativeFee = errors.New("fee amounts must not be negative")

// pricingService manages per-site fee schedules.
type pricingService struct {
	pricingRepo portsrepo.PricingRepository
	siteRepo    portsrepo.SiteRepository
}

// NewPricingService creates a new PricingService.
func NewPricingService(pricingRepo portsrepo.PricingRepository, siteRepo portsrepo.SiteRepository) portssvc.PricingSvcFacade {
	return &pricingService{
		pricingRepo: pricingRepo,
		siteRepo:    siteRepo,
	}
}

var _ portssvc.PricingSvcFacade = (*pricingService)(nil)

// GetPricing implements portssvc.PricingSvcFacade.
func (s *pricingService) GetPricing(ctx context.Context, siteID string) (*domain.PricingConfig, error) {
	pricing, err := s.pricingRepo.FindPricingBySiteID(ctx, siteID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			middleware.GetLoggerFromCtx(ctx).Error("Failed to fetch pricing config", slog.String("site_id", siteID), slog.String("error", err.Error()))
		}
		return nil, fmt.Errorf("failed to fetch pricing config for site %s: %w", siteID, err)
	}
	return pricing, nil
}

// UpsertPricing implements portssvc.PricingSvcFacade. The running
// reserve_collected total is never reset by an upsert; only the settlement
// report writer advances it.
func (s *pricingService) UpsertPricing(ctx context.Context, siteID string, req dto.UpsertPricingRequest, updaterUserID string) (*domain.PricingConfig, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	for _, fee := range []decimal.Decimal{req.PercentageFee, req.PerTransactionFee, req.RefundFee, req.ChargebackFee, req.ReserveAmount} {
		if fee.IsNegative() {
			return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrNegativeFee)
		}
	}

	// The site must exist before it can carry a fee schedule.
	if _, err := s.siteRepo.FindSiteByID(ctx, siteID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Pricing upsert for unknown site", slog.String("site_id", siteID))
		}
		return nil, fmt.Errorf("failed to verify site %s: %w", siteID, err)
	}

	now := time.Now().UTC()
	pricing := domain.PricingConfig{
		SiteID:            siteID,
		PercentageFee:     req.PercentageFee,
		PerTransactionFee: req.PerTransactionFee,
		RefundFee:         req.RefundFee,
		ChargebackFee:     req.ChargebackFee,
		ReserveAmount:     req.ReserveAmount,
		ReserveCollected:  decimal.Zero, // Preserved server-side on update
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     updaterUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: updaterUserID,
		},
	}

	if err := s.pricingRepo.UpsertPricing(ctx, pricing); err != nil {
		logger.Error("Failed to upsert pricing config", slog.String("site_id", siteID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to upsert pricing config: %w", err)
	}

	// Re-read so the response carries the preserved reserve_collected.
	saved, err := s.pricingRepo.FindPricingBySiteID(ctx, siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload pricing config: %w", err)
	}

	logger.Info("Pricing config upserted", slog.String("site_id", siteID))
	return saved, nil
}
