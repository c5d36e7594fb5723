package dto

import (
	"github.com/paymentops/settlement-backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RunSettlementsRequest optionally restricts the batch to a subset of the
// roster. An empty list means every active site.
type RunSettlementsRequest struct {
	SiteIDs []string `json:"siteIDs"`
}

// PeriodResponse carries the resolved settlement week as calendar dates.
type PeriodResponse struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// SiteResultResponse is the per-site outcome entry in a batch response.
// Callers must inspect each entry: the top-level success flag only reflects
// whether the batch ran, not whether every site settled cleanly.
type SiteResultResponse struct {
	SiteID           string           `json:"siteID"`
	Status           string           `json:"status"`
	Reason           string           `json:"reason,omitempty"`
	ReportNumber     string           `json:"reportNumber,omitempty"`
	TransactionCount int              `json:"transactionCount,omitempty"`
	MerchantPayout   *decimal.Decimal `json:"merchantPayout,omitempty"`
	ErrorMessage     string           `json:"errorMessage,omitempty"`
}

// RunSettlementsResponse is the body returned by the batch run endpoint.
type RunSettlementsResponse struct {
	Success bool                 `json:"success"`
	Period  PeriodResponse       `json:"period"`
	Results []SiteResultResponse `json:"results"`
}

// BatchRunResponse is one audit-trail entry for a past batch run.
type BatchRunResponse struct {
	BatchID string               `json:"batchID"`
	Period  PeriodResponse       `json:"period"`
	RanAt   string               `json:"ranAt"`
	Results []SiteResultResponse `json:"results"`
}

// ToBatchRunResponses converts domain batch runs to DTOs.
func ToBatchRunResponses(runs []domain.BatchRun) []BatchRunResponse {
	out := make([]BatchRunResponse, len(runs))
	for i, run := range runs {
		results := make([]SiteResultResponse, len(run.Results))
		for j, r := range run.Results {
			results[j] = ToSiteResultResponse(r)
		}
		out[i] = BatchRunResponse{
			BatchID: run.BatchID,
			Period: PeriodResponse{
				Start: run.PeriodStart.Format("2006-01-02"),
				End:   run.PeriodEnd.Format("2006-01-02"),
			},
			RanAt:   run.RanAt.Format(timeFormat),
			Results: results,
		}
	}
	return out
}

// SettlementReportItemResponse is one denormalized transaction snapshot.
type SettlementReportItemResponse struct {
	SessionID  string          `json:"sessionID"`
	Kind       string          `json:"kind"`
	Amount     decimal.Decimal `json:"amount"`
	OccurredAt string          `json:"occurredAt"`
}

// SettlementReportResponse is the full itemized report representation.
type SettlementReportResponse struct {
	ReportNumber string `json:"reportNumber"`
	SiteID       string `json:"siteID"`
	PeriodStart  string `json:"periodStart"`
	PeriodEnd    string `json:"periodEnd"`

	GrossAmount       decimal.Decimal `json:"grossAmount"`
	RefundsAmount     decimal.Decimal `json:"refundsAmount"`
	ChargebacksAmount decimal.Decimal `json:"chargebacksAmount"`
	NetAmount         decimal.Decimal `json:"netAmount"`

	ProcessingFeePercent    decimal.Decimal `json:"processingFeePercent"`
	ProcessingFeeAmount     decimal.Decimal `json:"processingFeeAmount"`
	PerTransactionFeeRate   decimal.Decimal `json:"perTransactionFeeRate"`
	PerTransactionFeesTotal decimal.Decimal `json:"perTransactionFeesTotal"`
	RefundFeeRate           decimal.Decimal `json:"refundFeeRate"`
	RefundFeesTotal         decimal.Decimal `json:"refundFeesTotal"`
	ChargebackFeeRate       decimal.Decimal `json:"chargebackFeeRate"`
	ChargebackFeesTotal     decimal.Decimal `json:"chargebackFeesTotal"`
	TotalFees               decimal.Decimal `json:"totalFees"`

	ReserveDeducted decimal.Decimal `json:"reserveDeducted"`
	ReserveBalance  decimal.Decimal `json:"reserveBalance"`
	MerchantPayout  decimal.Decimal `json:"merchantPayout"`

	TransactionCount int `json:"transactionCount"`
	RefundCount      int `json:"refundCount"`
	ChargebackCount  int `json:"chargebackCount"`

	Items []SettlementReportItemResponse `json:"items,omitempty"`
}

// ToSiteResultResponse converts a domain site outcome to its DTO.
func ToSiteResultResponse(r domain.SiteRunResult) SiteResultResponse {
	return SiteResultResponse{
		SiteID:           r.SiteID,
		Status:           string(r.Status),
		Reason:           r.Reason,
		ReportNumber:     r.ReportNumber,
		TransactionCount: r.TransactionCount,
		MerchantPayout:   r.MerchantPayout,
		ErrorMessage:     r.ErrorMessage,
	}
}

// ToRunSettlementsResponse converts a domain batch run to the HTTP response.
func ToRunSettlementsResponse(run *domain.BatchRun) RunSettlementsResponse {
	results := make([]SiteResultResponse, len(run.Results))
	for i, r := range run.Results {
		results[i] = ToSiteResultResponse(r)
	}
	return RunSettlementsResponse{
		Success: true,
		Period: PeriodResponse{
			Start: run.PeriodStart.Format("2006-01-02"),
			End:   run.PeriodEnd.Format("2006-01-02"),
		},
		Results: results,
	}
}

// ToSettlementReportResponse converts a domain report (with or without items)
// to its DTO.
func ToSettlementReportResponse(report *domain.SettlementReport) SettlementReportResponse {
	resp := SettlementReportResponse{
		ReportNumber:            report.ReportNumber,
		SiteID:                  report.SiteID,
		PeriodStart:             report.PeriodStart.Format("2006-01-02"),
		PeriodEnd:               report.PeriodEnd.Format("2006-01-02"),
		GrossAmount:             report.GrossAmount,
		RefundsAmount:           report.RefundsAmount,
		ChargebacksAmount:       report.ChargebacksAmount,
		NetAmount:               report.NetAmount,
		ProcessingFeePercent:    report.ProcessingFeePercent,
		ProcessingFeeAmount:     report.ProcessingFeeAmount,
		PerTransactionFeeRate:   report.PerTransactionFeeRate,
		PerTransactionFeesTotal: report.PerTransactionFeesTotal,
		RefundFeeRate:           report.RefundFeeRate,
		RefundFeesTotal:         report.RefundFeesTotal,
		ChargebackFeeRate:       report.ChargebackFeeRate,
		ChargebackFeesTotal:     report.ChargebackFeesTotal,
		TotalFees:               report.TotalFees,
		ReserveDeducted:         report.ReserveDeducted,
		ReserveBalance:          report.ReserveBalance,
		MerchantPayout:          report.MerchantPayout,
		TransactionCount:        report.TransactionCount,
		RefundCount:             report.RefundCount,
		ChargebackCount:         report.ChargebackCount,
	}
	if len(report.Items) > 0 {
		resp.Items = make([]SettlementReportItemResponse, len(report.Items))
		for i, item := range report.Items {
			resp.Items[i] = SettlementReportItemResponse{
				SessionID:  item.SessionID,
				Kind:       string(item.Kind),
				Amount:     item.Amount,
				OccurredAt: item.OccurredAt.Format(timeFormat),
			}
		}
	}
	return resp
}
