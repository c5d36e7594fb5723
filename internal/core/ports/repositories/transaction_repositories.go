package repositories

import (
	"context"
	"time"

	"github.com/paymentops/settlement-backend/internal/core/domain"
)

// TransactionRepository defines read operations over the transaction store.
// Transactions are written by the external provider sync jobs; this service
// only reads them and claims them into settlement reports.
type TransactionRepository interface {
	// FindUnreportedBySiteAndPeriod returns all settled, not-yet-reported
	// transactions for a site with occurred_at in [from, toExclusive),
	// ordered by occurred_at ascending.
	FindUnreportedBySiteAndPeriod(ctx context.Context, siteID string, from, toExclusive time.Time) ([]domain.Transaction, error)

	// ListBySite returns transactions for a site for back-office inspection.
	// When unsettledOnly is true, only unclaimed transactions are returned.
	ListBySite(ctx context.Context, siteID string, unsettledOnly bool, limit int) ([]domain.Transaction, error)
}
