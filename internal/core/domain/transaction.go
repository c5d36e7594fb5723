package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind classifies a single settled event. The three kinds are
// mutually exclusive; refunds and chargebacks are separate positive records
// layered on top of the original sale, never negative adjustments.
type TransactionKind string

const (
	Sale       TransactionKind = "SALE"
	Refund     TransactionKind = "REFUND"
	Chargeback TransactionKind = "CHARGEBACK"
)

// ParseTransactionKind converts a stored kind string into a TransactionKind.
func ParseTransactionKind(s string) (TransactionKind, error) {
	switch TransactionKind(s) {
	case Sale, Refund, Chargeback:
		return TransactionKind(s), nil
	default:
		return "", fmt.Errorf("unknown transaction kind %q", s)
	}
}

// Transaction represents one settled event imported by the provider sync jobs.
// Immutable once created; a transaction is linked to at most one settlement
// report, ever. SettlementReportID doubles as the claim guard: nil until the
// transaction is consumed by a report.
type Transaction struct {
	SessionID          string          `json:"sessionID"` // Opaque, unique per customer checkout attempt
	SiteID             string          `json:"siteID"`    // FK -> Site.siteID
	Kind               TransactionKind `json:"kind"`
	Amount             decimal.Decimal `json:"amount"` // Always positive
	OccurredAt         time.Time       `json:"occurredAt"`
	SettlementReportID *string         `json:"settlementReportID,omitempty"` // Nil until claimed by a report
	CreatedAt          time.Time       `json:"createdAt"`
}
