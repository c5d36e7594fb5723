// Package fees implements the settlement fee calculation. It is pure
// arithmetic over in-memory records; persistence and period selection live
// elsewhere. All amounts are shopspring decimals and no rounding is applied
// here, so intermediate sums carry full precision.
package fees

import (
	"github.com/paymentops/settlement-backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Calculation is the result of applying a site's fee schedule to one period's
// transactions. Two identities hold exactly for every input:
//
//	Gross - RefundsAmount - ChargebacksAmount == Net
//	Net - TotalFees - ReserveDeducted == MerchantPayout
type Calculation struct {
	Gross             decimal.Decimal
	RefundsAmount     decimal.Decimal
	ChargebacksAmount decimal.Decimal
	Net               decimal.Decimal

	ProcessingFeeAmount     decimal.Decimal
	PerTransactionFeesTotal decimal.Decimal
	RefundFeesTotal         decimal.Decimal
	ChargebackFeesTotal     decimal.Decimal
	TotalFees               decimal.Decimal

	ReserveDeducted decimal.Decimal
	ReserveBalance  decimal.Decimal // reserveAlreadyCollected + ReserveDeducted
	MerchantPayout  decimal.Decimal

	TransactionCount int // All kinds
	RefundCount      int
	ChargebackCount  int
}

// Calculate applies the pricing config to the given transactions, carrying
// reserveAlreadyCollected as the running reserve total withheld by prior
// settlements. It never fails for well-formed input.
//
// Every transaction contributes its amount to gross regardless of kind:
// refunds and chargebacks are separate positive records layered on top of the
// original sale, so gross is the sum over ALL records, and the refund and
// chargeback totals are then subtracted to reach net. The percentage fee is
// applied to net, not gross, so refunded and charged-back volume is not
// percentage-fee-taxed.
func Calculate(transactions []domain.Transaction, pricing domain.PricingConfig, reserveAlreadyCollected decimal.Decimal) Calculation {
	calc := Calculation{
		Gross:             decimal.Zero,
		RefundsAmount:     decimal.Zero,
		ChargebacksAmount: decimal.Zero,
	}

	for _, txn := range transactions {
		calc.Gross = calc.Gross.Add(txn.Amount)
		switch txn.Kind {
		case domain.Refund:
			calc.RefundsAmount = calc.RefundsAmount.Add(txn.Amount)
			calc.RefundCount++
		case domain.Chargeback:
			calc.ChargebacksAmount = calc.ChargebacksAmount.Add(txn.Amount)
			calc.ChargebackCount++
		}
		calc.TransactionCount++
	}

	calc.Net = calc.Gross.Sub(calc.RefundsAmount).Sub(calc.ChargebacksAmount)

	calc.ProcessingFeeAmount = calc.Net.Mul(pricing.PercentageFee).Div(hundred)
	calc.PerTransactionFeesTotal = pricing.PerTransactionFee.Mul(decimal.NewFromInt(int64(calc.TransactionCount)))
	calc.RefundFeesTotal = pricing.RefundFee.Mul(decimal.NewFromInt(int64(calc.RefundCount)))
	calc.ChargebackFeesTotal = pricing.ChargebackFee.Mul(decimal.NewFromInt(int64(calc.ChargebackCount)))
	calc.TotalFees = calc.ProcessingFeeAmount.
		Add(calc.PerTransactionFeesTotal).
		Add(calc.RefundFeesTotal).
		Add(calc.ChargebackFeesTotal)

	// Pre-reserve payout may be negative when fees exceed net; it is not
	// clamped here.
	payout := calc.Net.Sub(calc.TotalFees)

	calc.ReserveDeducted = reserveDeduction(payout, pricing.ReserveAmount, reserveAlreadyCollected)
	calc.MerchantPayout = payout.Sub(calc.ReserveDeducted)
	calc.ReserveBalance = reserveAlreadyCollected.Add(calc.ReserveDeducted)

	return calc
}

// reserveDeduction computes the amount withheld towards the reserve target.
// A zero or negative pre-reserve payout never triggers withholding: the
// reserve program cannot push a merchant further negative.
func reserveDeduction(payoutPreReserve, reserveAmount, reserveAlreadyCollected decimal.Decimal) decimal.Decimal {
	remaining := reserveAmount.Sub(reserveAlreadyCollected)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	if remaining.IsZero() || !payoutPreReserve.IsPositive() {
		return decimal.Zero
	}
	if payoutPreReserve.LessThan(remaining) {
		return payoutPreReserve
	}
	return remaining
}
