package dto

import (
	"github.com/paymentops/settlement-backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// UpsertPricingRequest creates or replaces a site's fee schedule.
// Fee fields use the custom dgte0 binding rule (decimal >= 0).
type UpsertPricingRequest struct {
	PercentageFee     decimal.Decimal `json:"percentageFee" binding:"dgte0"`
	PerTransactionFee decimal.Decimal `json:"perTransactionFee" binding:"dgte0"`
	RefundFee         decimal.Decimal `json:"refundFee" binding:"dgte0"`
	ChargebackFee     decimal.Decimal `json:"chargebackFee" binding:"dgte0"`
	ReserveAmount     decimal.Decimal `json:"reserveAmount" binding:"dgte0"`
}

// PricingConfigResponse is the API representation of a site's fee schedule.
type PricingConfigResponse struct {
	SiteID            string          `json:"siteID"`
	PercentageFee     decimal.Decimal `json:"percentageFee"`
	PerTransactionFee decimal.Decimal `json:"perTransactionFee"`
	RefundFee         decimal.Decimal `json:"refundFee"`
	ChargebackFee     decimal.Decimal `json:"chargebackFee"`
	ReserveAmount     decimal.Decimal `json:"reserveAmount"`
	ReserveCollected  decimal.Decimal `json:"reserveCollected"`
}

// ToPricingConfigResponse converts a domain pricing config to its DTO.
func ToPricingConfigResponse(p *domain.PricingConfig) PricingConfigResponse {
	return PricingConfigResponse{
		SiteID:            p.SiteID,
		PercentageFee:     p.PercentageFee,
		PerTransactionFee: p.PerTransactionFee,
		RefundFee:         p.RefundFee,
		ChargebackFee:     p.ChargebackFee,
		ReserveAmount:     p.ReserveAmount,
		ReserveCollected:  p.ReserveCollected,
	}
}
