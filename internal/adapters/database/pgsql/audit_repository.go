package pgsql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/paymentops/settlement-backend/internal/core/domain"
	portsrepo "github.com/paymentops/settlement-backend/internal/core/ports/repositories"
)

type PgxAuditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository creates a new repository for settlement batch audit logs.
func NewAuditRepository(pool *pgxpool.Pool) portsrepo.AuditRepository {
	return &PgxAuditRepository{pool: pool}
}

// SaveBatchRun writes one audit-log entry summarizing a full batch. Per-site
// outcomes are stored as a JSONB document.
func (r *PgxAuditRepository) SaveBatchRun(ctx context.Context, run domain.BatchRun) error {
	results, err := json.Marshal(run.Results)
	if err != nil {
		return fmt.Errorf("failed to marshal batch results for %s: %w", run.BatchID, err)
	}

	query := `
		INSERT INTO settlement_audit_logs (batch_id, period_start, period_end, ran_at, results)
		VALUES ($1, $2, $3, $4, $5);
	`
	_, err = r.pool.Exec(ctx, query, run.BatchID, run.PeriodStart, run.PeriodEnd, run.RanAt, results)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry for batch %s: %w", run.BatchID, err)
	}
	return nil
}

// ListRecentBatchRuns returns the most recent batch runs, newest first.
func (r *PgxAuditRepository) ListRecentBatchRuns(ctx context.Context, limit int) ([]domain.BatchRun, error) {
	query := `
		SELECT batch_id, period_start, period_end, ran_at, results
		FROM settlement_audit_logs
		ORDER BY ran_at DESC
		LIMIT $1;
	`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer rows.Close()

	runs := []domain.BatchRun{}
	for rows.Next() {
		var run domain.BatchRun
		var results []byte
		if err := rows.Scan(&run.BatchID, &run.PeriodStart, &run.PeriodEnd, &run.RanAt, &results); err != nil {
			return nil, fmt.Errorf("failed to scan audit row: %w", err)
		}
		if err := json.Unmarshal(results, &run.Results); err != nil {
			return nil, fmt.Errorf("failed to unmarshal batch results for %s: %w", run.BatchID, err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit rows: %w", err)
	}
	return runs, nil
}
