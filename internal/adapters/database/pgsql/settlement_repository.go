package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/paymentops/settlement-backend/internal/apperrors"
	"github.com/paymentops/settlement-backend/internal/core/domain"
	portsrepo "github.com/paymentops/settlement-backend/internal/core/ports/repositories"
)

type PgxSettlementRepository struct {
	pool *pgxpool.Pool
}

// NewSettlementRepository creates a new repository for settlement reports.
func NewSettlementRepository(pool *pgxpool.Pool) portsrepo.SettlementRepository {
	return &PgxSettlementRepository{pool: pool}
}

// SaveReport persists the report, its items, the transaction claims and the
// reserve advance as one database transaction. The claim is a conditional
// update guarded on settlement_report_id IS NULL, keyed by the compound
// (session_id, occurred_at) since transaction ids are not globally unique
// across import batches; a row-count mismatch means a concurrent run claimed
// one of the transactions first, and the whole write rolls back with
// apperrors.ErrConflict.
func (r *PgxSettlementRepository) SaveReport(ctx context.Context, report domain.SettlementReport, claimed []domain.Transaction) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx) // Ignore rollback error
	}()

	// 1. Insert the report header
	reportQuery := `
		INSERT INTO settlement_reports (
			report_number, site_id, period_start, period_end,
			gross_amount, refunds_amount, chargebacks_amount, net_amount,
			processing_fee_percent, processing_fee_amount,
			per_transaction_fee_rate, per_transaction_fees_total,
			refund_fee_rate, refund_fees_total,
			chargeback_fee_rate, chargeback_fees_total,
			total_fees, reserve_deducted, reserve_balance, merchant_payout,
			transaction_count, refund_count, chargeback_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
		        $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24);
	`
	_, err = tx.Exec(ctx, reportQuery,
		report.ReportNumber,
		report.SiteID,
		report.PeriodStart,
		report.PeriodEnd,
		report.GrossAmount,
		report.RefundsAmount,
		report.ChargebacksAmount,
		report.NetAmount,
		report.ProcessingFeePercent,
		report.ProcessingFeeAmount,
		report.PerTransactionFeeRate,
		report.PerTransactionFeesTotal,
		report.RefundFeeRate,
		report.RefundFeesTotal,
		report.ChargebackFeeRate,
		report.ChargebackFeesTotal,
		report.TotalFees,
		report.ReserveDeducted,
		report.ReserveBalance,
		report.MerchantPayout,
		report.TransactionCount,
		report.RefundCount,
		report.ChargebackCount,
		report.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert settlement report %s: %w", report.ReportNumber, err)
	}

	// 2. Insert the denormalized item snapshots
	batch := &pgx.Batch{}
	itemQuery := `
		INSERT INTO settlement_report_items (item_id, report_number, session_id, kind, amount, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	for _, item := range report.Items {
		batch.Queue(itemQuery,
			item.ItemID,
			item.ReportNumber,
			item.SessionID,
			string(item.Kind),
			item.Amount,
			item.OccurredAt,
		)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to insert items for report %s: %w", report.ReportNumber, err)
	}

	// 3. Claim the consumed transactions, counting affected rows
	claimQuery := `
		UPDATE transactions
		SET settlement_report_id = $1
		WHERE session_id = $2
		  AND occurred_at = $3
		  AND settlement_report_id IS NULL;
	`
	var claimedCount int64
	for _, txn := range claimed {
		ct, err := tx.Exec(ctx, claimQuery, report.ReportNumber, txn.SessionID, txn.OccurredAt)
		if err != nil {
			return fmt.Errorf("failed to claim transaction %s for report %s: %w", txn.SessionID, report.ReportNumber, err)
		}
		claimedCount += ct.RowsAffected()
	}
	if claimedCount != int64(len(claimed)) {
		return fmt.Errorf("%w: claimed %d of %d transactions for report %s",
			apperrors.ErrConflict, claimedCount, len(claimed), report.ReportNumber)
	}

	// 4. Advance the running reserve total, guarded so a concurrent advance
	// rolls the whole write back instead of double-counting
	if report.ReserveDeducted.IsPositive() {
		reserveQuery := `
			UPDATE pricing_configs
			SET reserve_collected = $1, last_updated_at = $2
			WHERE site_id = $3
			  AND reserve_collected = $4;
		`
		priorCollected := report.ReserveBalance.Sub(report.ReserveDeducted)
		ct, err := tx.Exec(ctx, reserveQuery, report.ReserveBalance, report.CreatedAt, report.SiteID, priorCollected)
		if err != nil {
			return fmt.Errorf("failed to advance reserve for site %s: %w", report.SiteID, err)
		}
		if ct.RowsAffected() != 1 {
			return fmt.Errorf("%w: reserve total moved concurrently for site %s", apperrors.ErrConflict, report.SiteID)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit settlement report %s: %w", report.ReportNumber, err)
	}
	return nil
}

// FindReportByNumber retrieves one report with its items.
func (r *PgxSettlementRepository) FindReportByNumber(ctx context.Context, reportNumber string) (*domain.SettlementReport, error) {
	query := reportSelect + ` WHERE report_number = $1;`
	var report domain.SettlementReport
	if err := scanReport(r.pool.QueryRow(ctx, query, reportNumber), &report); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find settlement report %s: %w", reportNumber, err)
	}

	items, err := r.findItems(ctx, reportNumber)
	if err != nil {
		return nil, err
	}
	report.Items = items
	return &report, nil
}

// ListReportsBySite retrieves report headers (no items) for a site, newest
// period first.
func (r *PgxSettlementRepository) ListReportsBySite(ctx context.Context, siteID string, limit int) ([]domain.SettlementReport, error) {
	query := reportSelect + ` WHERE site_id = $1 ORDER BY period_end DESC LIMIT $2;`
	rows, err := r.pool.Query(ctx, query, siteID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query settlement reports for site %s: %w", siteID, err)
	}
	defer rows.Close()

	reports := []domain.SettlementReport{}
	for rows.Next() {
		var report domain.SettlementReport
		if err := scanReport(rows, &report); err != nil {
			return nil, fmt.Errorf("failed to scan settlement report row for site %s: %w", siteID, err)
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating settlement report rows for site %s: %w", siteID, err)
	}
	return reports, nil
}

const reportSelect = `
	SELECT report_number, site_id, period_start, period_end,
	       gross_amount, refunds_amount, chargebacks_amount, net_amount,
	       processing_fee_percent, processing_fee_amount,
	       per_transaction_fee_rate, per_transaction_fees_total,
	       refund_fee_rate, refund_fees_total,
	       chargeback_fee_rate, chargeback_fees_total,
	       total_fees, reserve_deducted, reserve_balance, merchant_payout,
	       transaction_count, refund_count, chargeback_count, created_at
	FROM settlement_reports`

func scanReport(row pgx.Row, report *domain.SettlementReport) error {
	return row.Scan(
		&report.ReportNumber,
		&report.SiteID,
		&report.PeriodStart,
		&report.PeriodEnd,
		&report.GrossAmount,
		&report.RefundsAmount,
		&report.ChargebacksAmount,
		&report.NetAmount,
		&report.ProcessingFeePercent,
		&report.ProcessingFeeAmount,
		&report.PerTransactionFeeRate,
		&report.PerTransactionFeesTotal,
		&report.RefundFeeRate,
		&report.RefundFeesTotal,
		&report.ChargebackFeeRate,
		&report.ChargebackFeesTotal,
		&report.TotalFees,
		&report.ReserveDeducted,
		&report.ReserveBalance,
		&report.MerchantPayout,
		&report.TransactionCount,
		&report.RefundCount,
		&report.ChargebackCount,
		&report.CreatedAt,
	)
}

func (r *PgxSettlementRepository) findItems(ctx context.Context, reportNumber string) ([]domain.SettlementReportItem, error) {
	query := `
		SELECT item_id, report_number, session_id, kind, amount, occurred_at
		FROM settlement_report_items
		WHERE report_number = $1
		ORDER BY occurred_at;
	`
	rows, err := r.pool.Query(ctx, query, reportNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to query items for report %s: %w", reportNumber, err)
	}
	defer rows.Close()

	items := []domain.SettlementReportItem{}
	for rows.Next() {
		var item domain.SettlementReportItem
		var kind string
		if err := rows.Scan(
			&item.ItemID,
			&item.ReportNumber,
			&item.SessionID,
			&kind,
			&item.Amount,
			&item.OccurredAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan item row for report %s: %w", reportNumber, err)
		}
		parsed, err := domain.ParseTransactionKind(kind)
		if err != nil {
			return nil, fmt.Errorf("invalid item kind for report %s: %w", reportNumber, err)
		}
		item.Kind = parsed
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating item rows for report %s: %w", reportNumber, err)
	}
	return items, nil
}
