package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/paymentops/settlement-backend/internal/apperrors"
	"github.com/paymentops/settlement-backend/internal/core/domain"
	"github.com/paymentops/settlement-backend/internal/core/services"
	portssvc "github.com/paymentops/settlement-backend/internal/core/ports/services"
)

// --- Mocks for the repository ports ---

type MockSiteRepository struct {
	mock.Mock
}

func (m *MockSiteRepository) SaveSite(ctx context.Context, site domain.Site) error {
	args := m.Called(ctx, site)
	return args.Error(0)
}

func (m *MockSiteRepository) FindSiteByID(ctx context.Context, siteID string) (*domain.Site, error) {
	args := m.Called(ctx, siteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Site), args.Error(1)
}

func (m *MockSiteRepository) ListActiveSites(ctx context.Context) ([]domain.Site, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Site), args.Error(1)
}

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) FindUnreportedBySiteAndPeriod(ctx context.Context, siteID string, from, toExclusive time.Time) ([]domain.Transaction, error) {
	args := m.Called(ctx, siteID, from, toExclusive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ListBySite(ctx context.Context, siteID string, unsettledOnly bool, limit int) ([]domain.Transaction, error) {
	args := m.Called(ctx, siteID, unsettledOnly, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

type MockPricingRepository struct {
	mock.Mock
}

func (m *MockPricingRepository) FindPricingBySiteID(ctx context.Context, siteID string) (*domain.PricingConfig, error) {
	args := m.Called(ctx, siteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PricingConfig), args.Error(1)
}

func (m *MockPricingRepository) UpsertPricing(ctx context.Context, pricing domain.PricingConfig) error {
	args := m.Called(ctx, pricing)
	return args.Error(0)
}

type MockSettlementRepository struct {
	mock.Mock
}

func (m *MockSettlementRepository) SaveReport(ctx context.Context, report domain.SettlementReport, claimed []domain.Transaction) error {
	args := m.Called(ctx, report, claimed)
	return args.Error(0)
}

func (m *MockSettlementRepository) FindReportByNumber(ctx context.Context, reportNumber string) (*domain.SettlementReport, error) {
	args := m.Called(ctx, reportNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SettlementReport), args.Error(1)
}

func (m *MockSettlementRepository) ListReportsBySite(ctx context.Context, siteID string, limit int) ([]domain.SettlementReport, error) {
	args := m.Called(ctx, siteID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SettlementReport), args.Error(1)
}

type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) SaveBatchRun(ctx context.Context, run domain.BatchRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockAuditRepository) ListRecentBatchRuns(ctx context.Context, limit int) ([]domain.BatchRun, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BatchRun), args.Error(1)
}

// --- Test Suite Setup ---

type SettlementServiceTestSuite struct {
	suite.Suite
	mockSiteRepo       *MockSiteRepository
	mockTxnRepo        *MockTransactionRepository
	mockPricingRepo    *MockPricingRepository
	mockSettlementRepo *MockSettlementRepository
	mockAuditRepo      *MockAuditRepository
	service            portssvc.SettlementSvcFacade

	loc         *time.Location
	periodStart time.Time
	periodEnd   time.Time
}

func (suite *SettlementServiceTestSuite) SetupTest() {
	suite.mockSiteRepo = new(MockSiteRepository)
	suite.mockTxnRepo = new(MockTransactionRepository)
	suite.mockPricingRepo = new(MockPricingRepository)
	suite.mockSettlementRepo = new(MockSettlementRepository)
	suite.mockAuditRepo = new(MockAuditRepository)

	var err error
	suite.loc, err = time.LoadLocation("America/Los_Angeles")
	suite.Require().NoError(err)

	// Pin the clock to Wednesday 2025-01-15 so every run resolves the
	// completed week Mon 2025-01-06 .. Sun 2025-01-12.
	now := time.Date(2025, 1, 15, 10, 30, 0, 0, suite.loc)
	suite.periodStart = time.Date(2025, 1, 6, 0, 0, 0, 0, suite.loc)
	suite.periodEnd = time.Date(2025, 1, 12, 0, 0, 0, 0, suite.loc)

	suite.service = services.NewSettlementServiceWithClock(
		suite.mockSiteRepo,
		suite.mockTxnRepo,
		suite.mockPricingRepo,
		suite.mockSettlementRepo,
		suite.mockAuditRepo,
		suite.loc,
		func() time.Time { return now },
	)
}

func (suite *SettlementServiceTestSuite) site(id, name string) domain.Site {
	return domain.Site{SiteID: id, Name: name, IsActive: true}
}

func (suite *SettlementServiceTestSuite) pricing(siteID string) *domain.PricingConfig {
	return &domain.PricingConfig{
		SiteID:            siteID,
		PercentageFee:     decimal.RequireFromString("2.9"),
		PerTransactionFee: decimal.RequireFromString("0.30"),
		RefundFee:         decimal.RequireFromString("1.00"),
		ChargebackFee:     decimal.RequireFromString("15.00"),
		ReserveAmount:     decimal.Zero,
		ReserveCollected:  decimal.Zero,
	}
}

func (suite *SettlementServiceTestSuite) sale(siteID, sessionID, amount string, day int) domain.Transaction {
	return domain.Transaction{
		SessionID:  sessionID,
		SiteID:     siteID,
		Kind:       domain.Sale,
		Amount:     decimal.RequireFromString(amount),
		OccurredAt: time.Date(2025, 1, day, 12, 0, 0, 0, suite.loc),
	}
}

// --- Test Cases ---

func (suite *SettlementServiceTestSuite) TestRunWeeklyBatch_Success() {
	ctx := context.Background()
	site := suite.site("site-1", "Alpha")
	transactions := []domain.Transaction{
		suite.sale("site-1", "sess-1", "100.00", 7),
		suite.sale("site-1", "sess-2", "75.00", 9),
	}

	suite.mockSiteRepo.On("ListActiveSites", ctx).Return([]domain.Site{site}, nil).Once()
	suite.mockPricingRepo.On("FindPricingBySiteID", ctx, "site-1").Return(suite.pricing("site-1"), nil).Once()
	suite.mockTxnRepo.On("FindUnreportedBySiteAndPeriod", ctx, "site-1", suite.periodStart, suite.periodEnd.AddDate(0, 0, 1)).
		Return(transactions, nil).Once()

	var savedReport domain.SettlementReport
	suite.mockSettlementRepo.On("SaveReport", ctx, mock.AnythingOfType("domain.SettlementReport"), transactions).
		Run(func(args mock.Arguments) {
			savedReport = args.Get(1).(domain.SettlementReport)
		}).Return(nil).Once()
	suite.mockAuditRepo.On("SaveBatchRun", ctx, mock.AnythingOfType("domain.BatchRun")).Return(nil).Once()

	run, err := suite.service.RunWeeklyBatch(ctx, nil)

	suite.Require().NoError(err)
	suite.Require().Len(run.Results, 1)

	result := run.Results[0]
	suite.Equal(domain.RunSuccess, result.Status)
	suite.Equal(2, result.TransactionCount)
	suite.Require().NotNil(result.MerchantPayout)
	// gross 175.00, processing 5.075, per-txn 0.60, payout 169.325
	suite.True(result.MerchantPayout.Equal(decimal.RequireFromString("169.325")))

	suite.Equal("site-1", savedReport.SiteID)
	suite.True(savedReport.GrossAmount.Equal(decimal.RequireFromString("175.00")))
	suite.True(savedReport.NetAmount.Equal(savedReport.GrossAmount))
	suite.True(savedReport.TotalFees.Equal(decimal.RequireFromString("5.675")))
	suite.True(savedReport.NetAmount.Sub(savedReport.TotalFees).Sub(savedReport.ReserveDeducted).Equal(savedReport.MerchantPayout))
	suite.Len(savedReport.Items, 2)
	suite.Contains(savedReport.ReportNumber, "SR-20250112-")

	suite.mockSiteRepo.AssertExpectations(suite.T())
	suite.mockSettlementRepo.AssertExpectations(suite.T())
	suite.mockAuditRepo.AssertExpectations(suite.T())
}

func (suite *SettlementServiceTestSuite) TestRunWeeklyBatch_SkipsSiteWithNoTransactions() {
	ctx := context.Background()
	site := suite.site("site-1", "Alpha")

	suite.mockSiteRepo.On("ListActiveSites", ctx).Return([]domain.Site{site}, nil).Once()
	suite.mockPricingRepo.On("FindPricingBySiteID", ctx, "site-1").Return(suite.pricing("site-1"), nil).Once()
	suite.mockTxnRepo.On("FindUnreportedBySiteAndPeriod", ctx, "site-1", mock.Anything, mock.Anything).
		Return([]domain.Transaction{}, nil).Once()
	suite.mockAuditRepo.On("SaveBatchRun", ctx, mock.AnythingOfType("domain.BatchRun")).Return(nil).Once()

	run, err := suite.service.RunWeeklyBatch(ctx, nil)

	suite.Require().NoError(err)
	suite.Require().Len(run.Results, 1)
	suite.Equal(domain.RunSkipped, run.Results[0].Status)
	suite.Equal(domain.SkipNoTransactions, run.Results[0].Reason)

	// No zero-value report is ever written.
	suite.mockSettlementRepo.AssertNotCalled(suite.T(), "SaveReport", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *SettlementServiceTestSuite) TestRunWeeklyBatch_SkipsSiteWithoutPricing() {
	ctx := context.Background()
	site := suite.site("site-1", "Alpha")

	suite.mockSiteRepo.On("ListActiveSites", ctx).Return([]domain.Site{site}, nil).Once()
	suite.mockPricingRepo.On("FindPricingBySiteID", ctx, "site-1").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockAuditRepo.On("SaveBatchRun", ctx, mock.AnythingOfType("domain.BatchRun")).Return(nil).Once()

	run, err := suite.service.RunWeeklyBatch(ctx, nil)

	suite.Require().NoError(err)
	suite.Require().Len(run.Results, 1)
	suite.Equal(domain.RunSkipped, run.Results[0].Status)
	suite.Equal(domain.SkipNoPricing, run.Results[0].Reason)

	suite.mockTxnRepo.AssertNotCalled(suite.T(), "FindUnreportedBySiteAndPeriod", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *SettlementServiceTestSuite) TestRunWeeklyBatch_OneSiteFailureDoesNotBlockOthers() {
	ctx := context.Background()
	siteA := suite.site("site-a", "Alpha")
	siteB := suite.site("site-b", "Beta")
	txnsA := []domain.Transaction{suite.sale("site-a", "sess-a", "50.00", 8)}
	txnsB := []domain.Transaction{suite.sale("site-b", "sess-b", "60.00", 8)}

	suite.mockSiteRepo.On("ListActiveSites", ctx).Return([]domain.Site{siteA, siteB}, nil).Once()
	suite.mockPricingRepo.On("FindPricingBySiteID", ctx, "site-a").Return(suite.pricing("site-a"), nil).Once()
	suite.mockPricingRepo.On("FindPricingBySiteID", ctx, "site-b").Return(suite.pricing("site-b"), nil).Once()
	suite.mockTxnRepo.On("FindUnreportedBySiteAndPeriod", ctx, "site-a", mock.Anything, mock.Anything).Return(txnsA, nil).Once()
	suite.mockTxnRepo.On("FindUnreportedBySiteAndPeriod", ctx, "site-b", mock.Anything, mock.Anything).Return(txnsB, nil).Once()

	// Site A loses the claim race; site B must still settle.
	suite.mockSettlementRepo.On("SaveReport", ctx, mock.AnythingOfType("domain.SettlementReport"), txnsA).
		Return(apperrors.ErrConflict).Once()
	suite.mockSettlementRepo.On("SaveReport", ctx, mock.AnythingOfType("domain.SettlementReport"), txnsB).
		Return(nil).Once()
	suite.mockAuditRepo.On("SaveBatchRun", ctx, mock.AnythingOfType("domain.BatchRun")).Return(nil).Once()

	run, err := suite.service.RunWeeklyBatch(ctx, nil)

	suite.Require().NoError(err)
	suite.Require().Len(run.Results, 2)
	suite.Equal(domain.RunError, run.Results[0].Status)
	suite.NotEmpty(run.Results[0].ErrorMessage)
	suite.Equal(domain.RunSuccess, run.Results[1].Status)

	suite.mockSettlementRepo.AssertExpectations(suite.T())
}

func (suite *SettlementServiceTestSuite) TestRunWeeklyBatch_FiltersRosterBySiteIDs() {
	ctx := context.Background()
	siteA := suite.site("site-a", "Alpha")
	siteB := suite.site("site-b", "Beta")

	suite.mockSiteRepo.On("ListActiveSites", ctx).Return([]domain.Site{siteA, siteB}, nil).Once()
	suite.mockPricingRepo.On("FindPricingBySiteID", ctx, "site-b").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockAuditRepo.On("SaveBatchRun", ctx, mock.AnythingOfType("domain.BatchRun")).Return(nil).Once()

	run, err := suite.service.RunWeeklyBatch(ctx, []string{"site-b"})

	suite.Require().NoError(err)
	suite.Require().Len(run.Results, 1)
	suite.Equal("site-b", run.Results[0].SiteID)

	suite.mockPricingRepo.AssertNotCalled(suite.T(), "FindPricingBySiteID", ctx, "site-a")
}

func (suite *SettlementServiceTestSuite) TestRunWeeklyBatch_UnknownSiteIsFatal() {
	ctx := context.Background()

	suite.mockSiteRepo.On("ListActiveSites", ctx).Return([]domain.Site{suite.site("site-a", "Alpha")}, nil).Once()

	run, err := suite.service.RunWeeklyBatch(ctx, []string{"site-a", "nope"})

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrSiteUnknown)
	suite.Nil(run)
	suite.mockAuditRepo.AssertNotCalled(suite.T(), "SaveBatchRun", mock.Anything, mock.Anything)
}

func (suite *SettlementServiceTestSuite) TestRunWeeklyBatch_RosterFetchFailureIsFatal() {
	ctx := context.Background()

	suite.mockSiteRepo.On("ListActiveSites", ctx).Return(nil, assert.AnError).Once()

	run, err := suite.service.RunWeeklyBatch(ctx, nil)

	suite.Require().Error(err)
	suite.Nil(run)
}

func (suite *SettlementServiceTestSuite) TestRunWeeklyBatch_AuditFailureDoesNotVoidBatch() {
	ctx := context.Background()
	site := suite.site("site-1", "Alpha")

	suite.mockSiteRepo.On("ListActiveSites", ctx).Return([]domain.Site{site}, nil).Once()
	suite.mockPricingRepo.On("FindPricingBySiteID", ctx, "site-1").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockAuditRepo.On("SaveBatchRun", ctx, mock.AnythingOfType("domain.BatchRun")).Return(assert.AnError).Once()

	run, err := suite.service.RunWeeklyBatch(ctx, nil)

	suite.Require().NoError(err)
	suite.Require().NotNil(run)
	suite.Len(run.Results, 1)
}

func (suite *SettlementServiceTestSuite) TestGetReportByNumber_NotFound() {
	ctx := context.Background()

	suite.mockSettlementRepo.On("FindReportByNumber", ctx, "SR-MISSING").Return(nil, apperrors.ErrNotFound).Once()

	report, err := suite.service.GetReportByNumber(ctx, "SR-MISSING")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.Nil(report)
}

func (suite *SettlementServiceTestSuite) TestListReportsBySite_DefaultsLimit() {
	ctx := context.Background()

	suite.mockSettlementRepo.On("ListReportsBySite", ctx, "site-1", 20).Return([]domain.SettlementReport{}, nil).Once()

	reports, err := suite.service.ListReportsBySite(ctx, "site-1", 0)

	suite.Require().NoError(err)
	suite.Empty(reports)
	suite.mockSettlementRepo.AssertExpectations(suite.T())
}

func TestSettlementServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SettlementServiceTestSuite))
}
