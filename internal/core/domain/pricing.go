package domain

import "github.com/shopspring/decimal"

// PricingConfig holds the fee schedule for one site. One row per site.
// Invariant: 0 <= ReserveCollected <= ReserveAmount; ReserveCollected is
// advanced only by the settlement report writer and never decreases.
type PricingConfig struct {
	SiteID            string          `json:"siteID"`
	PercentageFee     decimal.Decimal `json:"percentageFee"`     // e.g. 2.9 meaning 2.9%, applied to net
	PerTransactionFee decimal.Decimal `json:"perTransactionFee"` // Flat amount per transaction of any kind
	RefundFee         decimal.Decimal `json:"refundFee"`         // Flat amount per refund
	ChargebackFee     decimal.Decimal `json:"chargebackFee"`     // Flat amount per chargeback
	ReserveAmount     decimal.Decimal `json:"reserveAmount"`     // Target total reserve; 0 = no reserve program
	ReserveCollected  decimal.Decimal `json:"reserveCollected"`  // Running total already withheld
	AuditFields
}
