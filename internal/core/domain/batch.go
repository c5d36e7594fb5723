package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SiteRunStatus is the outcome of settling a single site within a batch.
type SiteRunStatus string

const (
	RunSuccess SiteRunStatus = "SUCCESS"
	RunSkipped SiteRunStatus = "SKIPPED"
	RunError   SiteRunStatus = "ERROR"
)

// Skip reasons recorded on SKIPPED outcomes.
const (
	SkipNoTransactions = "no transactions"
	SkipNoPricing      = "no pricing configured"
)

// SiteRunResult records the outcome of one site in a settlement batch.
type SiteRunResult struct {
	SiteID           string           `json:"siteID"`
	Status           SiteRunStatus    `json:"status"`
	Reason           string           `json:"reason,omitempty"` // Populated on SKIPPED
	ReportNumber     string           `json:"reportNumber,omitempty"`
	TransactionCount int              `json:"transactionCount,omitempty"`
	MerchantPayout   *decimal.Decimal `json:"merchantPayout,omitempty"`
	ErrorMessage     string           `json:"errorMessage,omitempty"` // Populated on ERROR
}

// BatchRun summarizes one full settlement batch over the site roster.
// One audit-log entry is written per batch run.
type BatchRun struct {
	BatchID     string          `json:"batchID"`
	PeriodStart time.Time       `json:"periodStart"`
	PeriodEnd   time.Time       `json:"periodEnd"`
	RanAt       time.Time       `json:"ranAt"`
	Results     []SiteRunResult `json:"results"`
}
