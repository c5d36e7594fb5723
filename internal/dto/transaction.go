package dto

import (
	"github.com/paymentops/settlement-backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

const timeFormat = "2006-01-02T15:04:05Z07:00"

// TransactionResponse is the back-office view of one imported transaction.
type TransactionResponse struct {
	SessionID          string          `json:"sessionID"`
	SiteID             string          `json:"siteID"`
	Kind               string          `json:"kind"`
	Amount             decimal.Decimal `json:"amount"`
	OccurredAt         string          `json:"occurredAt"`
	SettlementReportID *string         `json:"settlementReportID,omitempty"`
}

// ToTransactionResponses converts domain transactions to DTOs.
func ToTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, len(txns))
	for i, t := range txns {
		out[i] = TransactionResponse{
			SessionID:          t.SessionID,
			SiteID:             t.SiteID,
			Kind:               string(t.Kind),
			Amount:             t.Amount,
			OccurredAt:         t.OccurredAt.Format(timeFormat),
			SettlementReportID: t.SettlementReportID,
		}
	}
	return out
}
