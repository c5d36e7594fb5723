package services

import (
	"context"

	"github.com/paymentops/settlement-backend/internal/core/domain"
)

// SettlementSvcFacade defines the settlement engine operations exposed to
// handlers and schedulers.
type SettlementSvcFacade interface {
	// RunWeeklyBatch settles the most recently completed Monday-Sunday week
	// for every active site (or the given subset). Per-site failures are
	// recorded in the returned results; only batch-level failures (e.g.
	// roster fetch) return an error.
	RunWeeklyBatch(ctx context.Context, siteIDs []string) (*domain.BatchRun, error)

	// GetReportByNumber retrieves one settlement report with its items.
	GetReportByNumber(ctx context.Context, reportNumber string) (*domain.SettlementReport, error)

	// ListReportsBySite retrieves report headers for a site, newest first.
	ListReportsBySite(ctx context.Context, siteID string, limit int) ([]domain.SettlementReport, error)

	// ListRecentBatchRuns retrieves the audit trail of recent batch runs,
	// newest first.
	ListRecentBatchRuns(ctx context.Context, limit int) ([]domain.BatchRun, error)
}
