package repositories

import (
	"context"

	"github.com/paymentops/settlement-backend/internal/core/domain"
)

// SiteRepository defines storage operations for merchant sites.
type SiteRepository interface {
	// SaveSite persists a new site.
	SaveSite(ctx context.Context, site domain.Site) error

	// FindSiteByID retrieves a site by its identifier.
	FindSiteByID(ctx context.Context, siteID string) (*domain.Site, error)

	// ListActiveSites returns every active site, ordered by name. This is the
	// settlement roster: sites are never hardcoded into a run.
	ListActiveSites(ctx context.Context) ([]domain.Site, error)
}
