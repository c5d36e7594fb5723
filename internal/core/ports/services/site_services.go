package services

import (
	"context"

	"github.com/paymentops/settlement-backend/internal/core/domain"
	"github.com/paymentops/settlement-backend/internal/dto"
)

// SiteSvcFacade defines merchant site roster operations.
type SiteSvcFacade interface {
	// CreateSite registers a new active site.
	CreateSite(ctx context.Context, req dto.CreateSiteRequest, creatorUserID string) (*domain.Site, error)

	// ListSites returns every active site.
	ListSites(ctx context.Context) ([]domain.Site, error)

	// ListSiteTransactions returns imported transactions for one site.
	ListSiteTransactions(ctx context.Context, siteID string, unsettledOnly bool, limit int) ([]domain.Transaction, error)
}
