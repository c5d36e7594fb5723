package repositories

import (
	"context"

	"github.com/paymentops/settlement-backend/internal/core/domain"
)

// AuditRepository records settlement batch runs.
type AuditRepository interface {
	// SaveBatchRun writes one audit-log entry summarizing a full batch:
	// period boundaries plus the per-site outcome list.
	SaveBatchRun(ctx context.Context, run domain.BatchRun) error

	// ListRecentBatchRuns returns the most recent batch runs, newest first.
	ListRecentBatchRuns(ctx context.Context, limit int) ([]domain.BatchRun, error)
}
