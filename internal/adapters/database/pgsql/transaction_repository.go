package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/paymentops/settlement-backend/internal/core/domain"
	portsrepo "github.com/paymentops/settlement-backend/internal/core/ports/repositories"
)

type PgxTransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new read-only repository over the
// transaction store populated by the provider sync jobs.
func NewTransactionRepository(pool *pgxpool.Pool) portsrepo.TransactionRepository {
	return &PgxTransactionRepository{pool: pool}
}

// FindUnreportedBySiteAndPeriod returns unclaimed transactions for a site in
// [from, toExclusive), ordered by occurred_at ascending. Ordering affects
// nothing numerically but keeps report item listings deterministic.
func (r *PgxTransactionRepository) FindUnreportedBySiteAndPeriod(ctx context.Context, siteID string, from, toExclusive time.Time) ([]domain.Transaction, error) {
	query := `
		SELECT session_id, site_id, kind, amount, occurred_at, settlement_report_id, created_at
		FROM transactions
		WHERE site_id = $1
		  AND settlement_report_id IS NULL
		  AND occurred_at >= $2
		  AND occurred_at < $3
		ORDER BY occurred_at;
	`
	rows, err := r.pool.Query(ctx, query, siteID, from, toExclusive)
	if err != nil {
		return nil, fmt.Errorf("failed to query unreported transactions for site %s: %w", siteID, err)
	}
	defer rows.Close()

	return scanTransactions(rows, siteID)
}

// ListBySite returns transactions for back-office inspection, newest first.
func (r *PgxTransactionRepository) ListBySite(ctx context.Context, siteID string, unsettledOnly bool, limit int) ([]domain.Transaction, error) {
	query := `
		SELECT session_id, site_id, kind, amount, occurred_at, settlement_report_id, created_at
		FROM transactions
		WHERE site_id = $1
		  AND ($2 = FALSE OR settlement_report_id IS NULL)
		ORDER BY occurred_at DESC
		LIMIT $3;
	`
	rows, err := r.pool.Query(ctx, query, siteID, unsettledOnly, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions for site %s: %w", siteID, err)
	}
	defer rows.Close()

	return scanTransactions(rows, siteID)
}

func scanTransactions(rows pgx.Rows, siteID string) ([]domain.Transaction, error) {
	transactions := []domain.Transaction{}
	for rows.Next() {
		var txn domain.Transaction
		var kind string
		if err := rows.Scan(
			&txn.SessionID,
			&txn.SiteID,
			&kind,
			&txn.Amount,
			&txn.OccurredAt,
			&txn.SettlementReportID,
			&txn.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction row for site %s: %w", siteID, err)
		}
		parsed, err := domain.ParseTransactionKind(kind)
		if err != nil {
			return nil, fmt.Errorf("invalid transaction kind for site %s: %w", siteID, err)
		}
		txn.Kind = parsed
		transactions = append(transactions, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows for site %s: %w", siteID, err)
	}
	return transactions, nil
}
