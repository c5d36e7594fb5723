package repositories

import (
	"context"

	"github.com/paymentops/settlement-backend/internal/core/domain"
)

// SettlementWriter persists settlement reports.
type SettlementWriter interface {
	// SaveReport persists the report and its items, claims the consumed
	// transactions (conditional update guarded on settlement_report_id IS
	// NULL, keyed by session_id + occurred_at), and advances the pricing
	// config's reserve_collected when the report withheld reserve - all
	// within a single database transaction so a mid-sequence failure leaves
	// no partial report.
	//
	// Returns apperrors.ErrConflict when any claimed transaction was already
	// taken by a concurrent run; nothing is committed in that case.
	SaveReport(ctx context.Context, report domain.SettlementReport, claimed []domain.Transaction) error
}

// SettlementReader reads persisted settlement reports.
type SettlementReader interface {
	// FindReportByNumber retrieves one report with its items.
	FindReportByNumber(ctx context.Context, reportNumber string) (*domain.SettlementReport, error)

	// ListReportsBySite retrieves report headers (no items) for a site,
	// newest period first.
	ListReportsBySite(ctx context.Context, siteID string, limit int) ([]domain.SettlementReport, error)
}

// SettlementRepository combines settlement read and write operations.
type SettlementRepository interface {
	SettlementWriter
	SettlementReader
}
