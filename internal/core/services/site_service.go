package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/paymentops/settlement-backend/internal/core/domain"
	portsrepo "github.com/paymentops/settlement-backend/internal/core/ports/repositories"
	portssvc "github.com/paymentops/settlement-backend/internal/core/ports/services"
	"github.com/paymentops/settlement-backend/internal/dto"
	"github.com/paymentops/settlement-backend/internal/middleware"
)

// siteService manages the merchant site roster.
type siteService struct {
	siteRepo portsrepo.SiteRepository
	txnRepo  portsrepo.TransactionRepository
}

// NewSiteService creates a new SiteService.
func NewSiteService(siteRepo portsrepo.SiteRepository, txnRepo portsrepo.TransactionRepository) portssvc.SiteSvcFacade {
	return &siteService{
		siteRepo: siteRepo,
		txnRepo:  txnRepo,
	}
}

var _ portssvc.SiteSvcFacade = (*siteService)(nil)

// CreateSite implements portssvc.SiteSvcFacade.
func (s *siteService) CreateSite(ctx context.Context, req dto.CreateSiteRequest, creatorUserID string) (*domain.Site, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now().UTC()
	site := domain.Site{
		SiteID:   uuid.NewString(),
		Name:     req.Name,
		IsActive: true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.siteRepo.SaveSite(ctx, site); err != nil {
		logger.Error("Failed to save site", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save site: %w", err)
	}

	logger.Info("Site created", slog.String("site_id", site.SiteID))
	return &site, nil
}

// ListSites implements portssvc.SiteSvcFacade.
func (s *siteService) ListSites(ctx context.Context) ([]domain.Site, error) {
	sites, err := s.siteRepo.ListActiveSites(ctx)
	if err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to list sites", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	return sites, nil
}

// ListSiteTransactions implements portssvc.SiteSvcFacade.
func (s *siteService) ListSiteTransactions(ctx context.Context, siteID string, unsettledOnly bool, limit int) ([]domain.Transaction, error) {
	if limit <= 0 {
		limit = 50
	}

	// Verify the site exists so an unknown ID maps to 404 rather than an
	// empty list.
	if _, err := s.siteRepo.FindSiteByID(ctx, siteID); err != nil {
		return nil, fmt.Errorf("failed to verify site %s: %w", siteID, err)
	}

	transactions, err := s.txnRepo.ListBySite(ctx, siteID, unsettledOnly, limit)
	if err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to list transactions", slog.String("site_id", siteID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return transactions, nil
}
