package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SettlementReport is an immutable weekly accounting statement for one site.
// Created once per (site, week) by the report writer; read-only thereafter.
// Accounting identity: Gross - Refunds - Chargebacks = Net, and
// Net - TotalFees - ReserveDeducted = MerchantPayout, exactly.
type SettlementReport struct {
	ReportNumber string    `json:"reportNumber"` // Unique, timestamp-derived
	SiteID       string    `json:"siteID"`
	PeriodStart  time.Time `json:"periodStart"` // Inclusive calendar day boundary
	PeriodEnd    time.Time `json:"periodEnd"`   // Inclusive calendar day boundary

	GrossAmount       decimal.Decimal `json:"grossAmount"` // Sum of ALL transaction amounts, every kind
	RefundsAmount     decimal.Decimal `json:"refundsAmount"`
	ChargebacksAmount decimal.Decimal `json:"chargebacksAmount"`
	NetAmount         decimal.Decimal `json:"netAmount"` // Gross - Refunds - Chargebacks

	ProcessingFeePercent    decimal.Decimal `json:"processingFeePercent"`
	ProcessingFeeAmount     decimal.Decimal `json:"processingFeeAmount"`
	PerTransactionFeeRate   decimal.Decimal `json:"perTransactionFeeRate"`
	PerTransactionFeesTotal decimal.Decimal `json:"perTransactionFeesTotal"`
	RefundFeeRate           decimal.Decimal `json:"refundFeeRate"`
	RefundFeesTotal         decimal.Decimal `json:"refundFeesTotal"`
	ChargebackFeeRate       decimal.Decimal `json:"chargebackFeeRate"`
	ChargebackFeesTotal     decimal.Decimal `json:"chargebackFeesTotal"`
	TotalFees               decimal.Decimal `json:"totalFees"`

	ReserveDeducted decimal.Decimal `json:"reserveDeducted"` // Withheld from this settlement
	ReserveBalance  decimal.Decimal `json:"reserveBalance"`  // Cumulative reserve after this report
	MerchantPayout  decimal.Decimal `json:"merchantPayout"`  // Net - TotalFees - ReserveDeducted

	TransactionCount int `json:"transactionCount"` // All kinds
	RefundCount      int `json:"refundCount"`
	ChargebackCount  int `json:"chargebackCount"`

	Items     []SettlementReportItem `json:"items,omitempty"`
	CreatedAt time.Time              `json:"createdAt"`
}

// SettlementReportItem is a denormalized snapshot of one consumed transaction,
// so the report stays self-contained even if source rows are later altered.
type SettlementReportItem struct {
	ItemID       string          `json:"itemID"` // Primary Key (UUID)
	ReportNumber string          `json:"reportNumber"`
	SessionID    string          `json:"sessionID"`
	Kind         TransactionKind `json:"kind"`
	Amount       decimal.Decimal `json:"amount"`
	OccurredAt   time.Time       `json:"occurredAt"`
}
