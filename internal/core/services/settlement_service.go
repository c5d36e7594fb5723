package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/paymentops/settlement-backend/internal/apperrors"
	"github.com/paymentops/settlement-backend/internal/core/domain"
	portsrepo "github.com/paymentops/settlement-backend/internal/core/ports/repositories"
	portssvc "github.com/paymentops/settlement-backend/internal/core/ports/services"
	"github.com/paymentops/settlement-backend/internal/middleware"
	"github.com/paymentops/settlement-backend/internal/platform/metrics"
	"github.com/paymentops/settlement-backend/internal/utils/fees"
	"github.com/paymentops/settlement-backend/internal/utils/schedule"
)

var ErrSiteUnknown = errors.New("site is not on the settlement roster")

// settlementService orchestrates the weekly settlement batch: resolve the
// period, then per site fetch unreported transactions, run the fee
// calculation and persist the report atomically. Sites are processed
// sequentially; one site's failure never blocks the others.
type settlementService struct {
	siteRepo       portsrepo.SiteRepository
	txnRepo        portsrepo.TransactionRepository
	pricingRepo    portsrepo.PricingRepository
	settlementRepo portsrepo.SettlementRepository
	auditRepo      portsrepo.AuditRepository
	loc            *time.Location
	now            func() time.Time
}

// NewSettlementService creates the settlement engine service. loc is the
// fixed business timezone used to resolve period boundaries.
func NewSettlementService(
	siteRepo portsrepo.SiteRepository,
	txnRepo portsrepo.TransactionRepository,
	pricingRepo portsrepo.PricingRepository,
	settlementRepo portsrepo.SettlementRepository,
	auditRepo portsrepo.AuditRepository,
	loc *time.Location,
) portssvc.SettlementSvcFacade {
	return &settlementService{
		siteRepo:       siteRepo,
		txnRepo:        txnRepo,
		pricingRepo:    pricingRepo,
		settlementRepo: settlementRepo,
		auditRepo:      auditRepo,
		loc:            loc,
		now:            time.Now,
	}
}

// NewSettlementServiceWithClock is NewSettlementService with an injectable
// clock, used by tests to pin the resolved period.
func NewSettlementServiceWithClock(
	siteRepo portsrepo.SiteRepository,
	txnRepo portsrepo.TransactionRepository,
	pricingRepo portsrepo.PricingRepository,
	settlementRepo portsrepo.SettlementRepository,
	auditRepo portsrepo.AuditRepository,
	loc *time.Location,
	now func() time.Time,
) portssvc.SettlementSvcFacade {
	svc := NewSettlementService(siteRepo, txnRepo, pricingRepo, settlementRepo, auditRepo, loc).(*settlementService)
	svc.now = now
	return svc
}

var _ portssvc.SettlementSvcFacade = (*settlementService)(nil)

// RunWeeklyBatch implements portssvc.SettlementSvcFacade.
func (s *settlementService) RunWeeklyBatch(ctx context.Context, siteIDs []string) (*domain.BatchRun, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	period := schedule.LastCompletedWeek(s.now(), s.loc)
	logger = logger.With(
		slog.String("period_start", period.Start.Format("2006-01-02")),
		slog.String("period_end", period.End.Format("2006-01-02")),
	)

	// The roster is the set of active sites in storage, optionally narrowed
	// by the caller. A roster fetch failure is batch-fatal: no per-site loop
	// has started and there are no partial results to report.
	sites, err := s.siteRepo.ListActiveSites(ctx)
	if err != nil {
		logger.Error("Failed to load settlement roster", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to load settlement roster: %w", err)
	}
	sites, err = filterRoster(sites, siteIDs)
	if err != nil {
		return nil, err
	}

	run := domain.BatchRun{
		BatchID:     uuid.NewString(),
		PeriodStart: period.Start,
		PeriodEnd:   period.End,
		RanAt:       s.now().UTC(),
		Results:     make([]domain.SiteRunResult, 0, len(sites)),
	}

	for _, site := range sites {
		result := s.settleSite(ctx, site, period)
		metrics.SettlementSiteOutcomes.WithLabelValues(string(result.Status)).Inc()
		run.Results = append(run.Results, result)
	}
	metrics.SettlementBatchRuns.Inc()

	// The audit entry summarizes the whole batch. Its failure is logged but
	// does not void the settlements already committed per site.
	if err := s.auditRepo.SaveBatchRun(ctx, run); err != nil {
		logger.Error("Failed to write batch audit entry", slog.String("batch_id", run.BatchID), slog.String("error", err.Error()))
	}

	logger.Info("Settlement batch completed", slog.String("batch_id", run.BatchID), slog.Int("site_count", len(run.Results)))
	return &run, nil
}

// settleSite runs the full pipeline for one site. Every failure is caught
// here and folded into the returned result so the batch can proceed.
func (s *settlementService) settleSite(ctx context.Context, site domain.Site, period schedule.Period) domain.SiteRunResult {
	logger := middleware.GetLoggerFromCtx(ctx).With(slog.String("site_id", site.SiteID))
	result := domain.SiteRunResult{SiteID: site.SiteID}

	pricing, err := s.pricingRepo.FindPricingBySiteID(ctx, site.SiteID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Info("Site skipped", slog.String("reason", domain.SkipNoPricing))
			result.Status = domain.RunSkipped
			result.Reason = domain.SkipNoPricing
			return result
		}
		logger.Error("Failed to fetch pricing config", slog.String("error", err.Error()))
		result.Status = domain.RunError
		result.ErrorMessage = err.Error()
		return result
	}

	transactions, err := s.txnRepo.FindUnreportedBySiteAndPeriod(ctx, site.SiteID, period.Start, period.EndExclusive())
	if err != nil {
		logger.Error("Failed to fetch transactions", slog.String("error", err.Error()))
		result.Status = domain.RunError
		result.ErrorMessage = err.Error()
		return result
	}
	if len(transactions) == 0 {
		// Not an error: a zero-value report is never created.
		logger.Info("Site skipped", slog.String("reason", domain.SkipNoTransactions))
		result.Status = domain.RunSkipped
		result.Reason = domain.SkipNoTransactions
		return result
	}

	calc := fees.Calculate(transactions, *pricing, pricing.ReserveCollected)
	report := s.assembleReport(site.SiteID, period, *pricing, calc, transactions)

	if err := s.settlementRepo.SaveReport(ctx, report, transactions); err != nil {
		logger.Error("Failed to persist settlement report", slog.String("report_number", report.ReportNumber), slog.String("error", err.Error()))
		result.Status = domain.RunError
		result.ErrorMessage = err.Error()
		return result
	}

	logger.Info("Site settled",
		slog.String("report_number", report.ReportNumber),
		slog.Int("transaction_count", calc.TransactionCount),
		slog.String("merchant_payout", calc.MerchantPayout.String()),
	)

	payout := calc.MerchantPayout
	result.Status = domain.RunSuccess
	result.ReportNumber = report.ReportNumber
	result.TransactionCount = calc.TransactionCount
	result.MerchantPayout = &payout
	return result
}

// assembleReport builds the immutable settlement report from the calculation,
// snapshotting each consumed transaction into a denormalized item row.
func (s *settlementService) assembleReport(siteID string, period schedule.Period, pricing domain.PricingConfig, calc fees.Calculation, transactions []domain.Transaction) domain.SettlementReport {
	reportNumber := newReportNumber(period.End)

	items := make([]domain.SettlementReportItem, len(transactions))
	for i, txn := range transactions {
		items[i] = domain.SettlementReportItem{
			ItemID:       uuid.NewString(),
			ReportNumber: reportNumber,
			SessionID:    txn.SessionID,
			Kind:         txn.Kind,
			Amount:       txn.Amount,
			OccurredAt:   txn.OccurredAt,
		}
	}

	return domain.SettlementReport{
		ReportNumber: reportNumber,
		SiteID:       siteID,
		PeriodStart:  period.Start,
		PeriodEnd:    period.End,

		GrossAmount:       calc.Gross,
		RefundsAmount:     calc.RefundsAmount,
		ChargebacksAmount: calc.ChargebacksAmount,
		NetAmount:         calc.Net,

		ProcessingFeePercent:    pricing.PercentageFee,
		ProcessingFeeAmount:     calc.ProcessingFeeAmount,
		PerTransactionFeeRate:   pricing.PerTransactionFee,
		PerTransactionFeesTotal: calc.PerTransactionFeesTotal,
		RefundFeeRate:           pricing.RefundFee,
		RefundFeesTotal:         calc.RefundFeesTotal,
		ChargebackFeeRate:       pricing.ChargebackFee,
		ChargebackFeesTotal:     calc.ChargebackFeesTotal,
		TotalFees:               calc.TotalFees,

		ReserveDeducted: calc.ReserveDeducted,
		ReserveBalance:  calc.ReserveBalance,
		MerchantPayout:  calc.MerchantPayout,

		TransactionCount: calc.TransactionCount,
		RefundCount:      calc.RefundCount,
		ChargebackCount:  calc.ChargebackCount,

		Items:     items,
		CreatedAt: s.now().UTC(),
	}
}

// GetReportByNumber implements portssvc.SettlementSvcFacade.
func (s *settlementService) GetReportByNumber(ctx context.Context, reportNumber string) (*domain.SettlementReport, error) {
	report, err := s.settlementRepo.FindReportByNumber(ctx, reportNumber)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			middleware.GetLoggerFromCtx(ctx).Error("Failed to find settlement report", slog.String("report_number", reportNumber), slog.String("error", err.Error()))
		}
		return nil, fmt.Errorf("failed to find settlement report %s: %w", reportNumber, err)
	}
	return report, nil
}

// ListReportsBySite implements portssvc.SettlementSvcFacade.
func (s *settlementService) ListReportsBySite(ctx context.Context, siteID string, limit int) ([]domain.SettlementReport, error) {
	if limit <= 0 {
		limit = 20
	}
	reports, err := s.settlementRepo.ListReportsBySite(ctx, siteID, limit)
	if err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to list settlement reports", slog.String("site_id", siteID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list settlement reports: %w", err)
	}
	return reports, nil
}

// ListRecentBatchRuns implements portssvc.SettlementSvcFacade.
func (s *settlementService) ListRecentBatchRuns(ctx context.Context, limit int) ([]domain.BatchRun, error) {
	if limit <= 0 {
		limit = 10
	}
	runs, err := s.auditRepo.ListRecentBatchRuns(ctx, limit)
	if err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to list batch runs", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list batch runs: %w", err)
	}
	return runs, nil
}

// filterRoster narrows the active roster to the requested subset. Requesting
// a site that is not on the roster is a caller error, not a skip.
func filterRoster(sites []domain.Site, siteIDs []string) ([]domain.Site, error) {
	if len(siteIDs) == 0 {
		return sites, nil
	}

	bySite := make(map[string]domain.Site, len(sites))
	for _, site := range sites {
		bySite[site.SiteID] = site
	}

	filtered := make([]domain.Site, 0, len(siteIDs))
	for _, id := range siteIDs {
		site, ok := bySite[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrSiteUnknown, id)
		}
		filtered = append(filtered, site)
	}
	return filtered, nil
}

// newReportNumber derives a unique report identifier from the period end
// date plus a random suffix.
func newReportNumber(periodEnd time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("SR-%s-%s", periodEnd.Format("20060102"), suffix)
}
