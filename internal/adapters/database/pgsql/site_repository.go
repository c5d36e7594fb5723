package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/paymentops/settlement-backend/internal/apperrors"
	"github.com/paymentops/settlement-backend/internal/core/domain"
	portsrepo "github.com/paymentops/settlement-backend/internal/core/ports/repositories"
)

type PgxSiteRepository struct {
	pool *pgxpool.Pool
}

// NewSiteRepository creates a new repository for merchant site data.
func NewSiteRepository(pool *pgxpool.Pool) portsrepo.SiteRepository {
	return &PgxSiteRepository{pool: pool}
}

// SaveSite persists a new site.
func (r *PgxSiteRepository) SaveSite(ctx context.Context, site domain.Site) error {
	query := `
		INSERT INTO sites (site_id, name, is_active, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := r.pool.Exec(ctx, query,
		site.SiteID,
		site.Name,
		site.IsActive,
		site.CreatedAt,
		site.CreatedBy,
		site.LastUpdatedAt,
		site.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperrors.ErrDuplicate
		}
		return fmt.Errorf("failed to insert site %s: %w", site.SiteID, err)
	}
	return nil
}

// FindSiteByID retrieves a site by its identifier.
func (r *PgxSiteRepository) FindSiteByID(ctx context.Context, siteID string) (*domain.Site, error) {
	query := `
		SELECT site_id, name, is_active, created_at, created_by, last_updated_at, last_updated_by
		FROM sites
		WHERE site_id = $1;
	`
	var site domain.Site
	err := r.pool.QueryRow(ctx, query, siteID).Scan(
		&site.SiteID,
		&site.Name,
		&site.IsActive,
		&site.CreatedAt,
		&site.CreatedBy,
		&site.LastUpdatedAt,
		&site.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find site by ID %s: %w", siteID, err)
	}
	return &site, nil
}

// ListActiveSites returns every active site, ordered by name.
func (r *PgxSiteRepository) ListActiveSites(ctx context.Context) ([]domain.Site, error) {
	query := `
		SELECT site_id, name, is_active, created_at, created_by, last_updated_at, last_updated_by
		FROM sites
		WHERE is_active = TRUE
		ORDER BY name;
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query active sites: %w", err)
	}
	defer rows.Close()

	sites := []domain.Site{}
	for rows.Next() {
		var site domain.Site
		if err := rows.Scan(
			&site.SiteID,
			&site.Name,
			&site.IsActive,
			&site.CreatedAt,
			&site.CreatedBy,
			&site.LastUpdatedAt,
			&site.LastUpdatedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan site row: %w", err)
		}
		sites = append(sites, site)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating site rows: %w", err)
	}
	return sites, nil
}
