package fees_test

import (
	"testing"
	"time"

	"github.com/paymentops/settlement-backend/internal/core/domain"
	"github.com/paymentops/settlement-backend/internal/utils/fees"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func txn(kind domain.TransactionKind, amount string) domain.Transaction {
	return domain.Transaction{
		SessionID:  "sess-" + amount,
		SiteID:     "site-1",
		Kind:       kind,
		Amount:     dec(amount),
		OccurredAt: time.Date(2024, 1, 17, 12, 0, 0, 0, time.UTC),
	}
}

func standardPricing() domain.PricingConfig {
	return domain.PricingConfig{
		SiteID:            "site-1",
		PercentageFee:     dec("2.9"),
		PerTransactionFee: dec("0.30"),
		RefundFee:         dec("1.00"),
		ChargebackFee:     dec("15.00"),
		ReserveAmount:     decimal.Zero,
	}
}

// assertIdentities checks the two accounting identities that must hold for
// every calculation, exactly, with no residual cents.
func assertIdentities(t *testing.T, c fees.Calculation) {
	t.Helper()
	assert.True(t, c.Gross.Sub(c.RefundsAmount).Sub(c.ChargebacksAmount).Equal(c.Net),
		"gross - refunds - chargebacks != net")
	assert.True(t, c.Net.Sub(c.TotalFees).Sub(c.ReserveDeducted).Equal(c.MerchantPayout),
		"net - fees - reserve != payout")
}

func TestCalculateSalesOnly(t *testing.T) {
	transactions := []domain.Transaction{
		txn(domain.Sale, "100"),
		txn(domain.Sale, "50"),
		txn(domain.Sale, "25"),
	}

	calc := fees.Calculate(transactions, standardPricing(), decimal.Zero)

	assert.True(t, calc.Gross.Equal(dec("175")), "gross = %s", calc.Gross)
	assert.True(t, calc.Net.Equal(dec("175")), "net = %s", calc.Net)
	assert.True(t, calc.ProcessingFeeAmount.Equal(dec("5.075")), "processing fee = %s", calc.ProcessingFeeAmount)
	assert.True(t, calc.PerTransactionFeesTotal.Equal(dec("0.90")), "txn fees = %s", calc.PerTransactionFeesTotal)
	assert.True(t, calc.TotalFees.Equal(dec("5.975")), "total fees = %s", calc.TotalFees)
	assert.True(t, calc.ReserveDeducted.IsZero())
	assert.True(t, calc.MerchantPayout.Equal(dec("169.025")), "payout = %s", calc.MerchantPayout)
	assert.Equal(t, 3, calc.TransactionCount)
	assert.Equal(t, 0, calc.RefundCount)
	assert.Equal(t, 0, calc.ChargebackCount)
	assertIdentities(t, calc)
}

func TestCalculateWithRefund(t *testing.T) {
	// The refund is a separate positive record: it raises gross but nets out,
	// and it incurs both a per-transaction fee and a refund fee.
	transactions := []domain.Transaction{
		txn(domain.Sale, "100"),
		txn(domain.Sale, "50"),
		txn(domain.Sale, "25"),
		txn(domain.Refund, "50"),
	}

	calc := fees.Calculate(transactions, standardPricing(), decimal.Zero)

	assert.True(t, calc.Gross.Equal(dec("225")), "gross = %s", calc.Gross)
	assert.True(t, calc.RefundsAmount.Equal(dec("50")))
	assert.True(t, calc.Net.Equal(dec("175")), "net = %s", calc.Net)
	assert.True(t, calc.RefundFeesTotal.Equal(dec("1.00")))
	assert.True(t, calc.PerTransactionFeesTotal.Equal(dec("1.20")), "4 transactions at 0.30")
	assert.True(t, calc.TotalFees.Equal(dec("7.275")), "total fees = %s", calc.TotalFees)
	assert.True(t, calc.MerchantPayout.Equal(dec("167.725")), "payout = %s", calc.MerchantPayout)
	assert.Equal(t, 4, calc.TransactionCount)
	assert.Equal(t, 1, calc.RefundCount)
	assertIdentities(t, calc)
}

func TestCalculateChargebackFees(t *testing.T) {
	transactions := []domain.Transaction{
		txn(domain.Sale, "200"),
		txn(domain.Chargeback, "75"),
	}

	calc := fees.Calculate(transactions, standardPricing(), decimal.Zero)

	assert.True(t, calc.Gross.Equal(dec("275")))
	assert.True(t, calc.ChargebacksAmount.Equal(dec("75")))
	assert.True(t, calc.Net.Equal(dec("125")))
	assert.True(t, calc.ChargebackFeesTotal.Equal(dec("15.00")))
	assert.Equal(t, 1, calc.ChargebackCount)
	assertIdentities(t, calc)
}

func TestCalculateReservePartialWithholding(t *testing.T) {
	// 20 remains of a 500 target; pre-reserve payout is 50, so only the
	// remaining 20 is withheld and the running total tops out at the target.
	pricing := domain.PricingConfig{
		SiteID:        "site-1",
		ReserveAmount: dec("500"),
	}
	transactions := []domain.Transaction{txn(domain.Sale, "50")}

	calc := fees.Calculate(transactions, pricing, dec("480"))

	assert.True(t, calc.ReserveDeducted.Equal(dec("20")), "deducted = %s", calc.ReserveDeducted)
	assert.True(t, calc.MerchantPayout.Equal(dec("30")), "payout = %s", calc.MerchantPayout)
	assert.True(t, calc.ReserveBalance.Equal(dec("500")))
	assertIdentities(t, calc)
}

func TestCalculateReserveFull(t *testing.T) {
	// Target already reached: nothing further is withheld.
	pricing := domain.PricingConfig{
		SiteID:        "site-1",
		ReserveAmount: dec("500"),
	}
	transactions := []domain.Transaction{txn(domain.Sale, "50")}

	calc := fees.Calculate(transactions, pricing, dec("500"))

	assert.True(t, calc.ReserveDeducted.IsZero())
	assert.True(t, calc.MerchantPayout.Equal(dec("50")))
	assert.True(t, calc.ReserveBalance.Equal(dec("500")))
	assertIdentities(t, calc)
}

func TestCalculateReserveCapsAtPayout(t *testing.T) {
	// Remaining target exceeds the payout: the whole payout is withheld but
	// the merchant is never pushed negative by the reserve.
	pricing := domain.PricingConfig{
		SiteID:        "site-1",
		ReserveAmount: dec("500"),
	}
	transactions := []domain.Transaction{txn(domain.Sale, "40")}

	calc := fees.Calculate(transactions, pricing, dec("100"))

	assert.True(t, calc.ReserveDeducted.Equal(dec("40")))
	assert.True(t, calc.MerchantPayout.IsZero())
	assert.True(t, calc.ReserveBalance.Equal(dec("140")))
	assertIdentities(t, calc)
}

func TestCalculateNegativePayoutSkipsReserve(t *testing.T) {
	// Fees exceed net: the pre-reserve payout is negative and must pass
	// through unclamped, with zero reserve withheld regardless of the
	// remaining target.
	pricing := domain.PricingConfig{
		SiteID:        "site-1",
		PercentageFee: dec("2.9"),
		ChargebackFee: dec("15.00"),
		ReserveAmount: dec("500"),
	}
	transactions := []domain.Transaction{
		txn(domain.Sale, "10"),
		txn(domain.Chargeback, "10"),
	}

	calc := fees.Calculate(transactions, pricing, decimal.Zero)

	require.True(t, calc.Net.IsZero())
	assert.True(t, calc.MerchantPayout.IsNegative(), "payout = %s", calc.MerchantPayout)
	assert.True(t, calc.MerchantPayout.Equal(dec("-15.00")))
	assert.True(t, calc.ReserveDeducted.IsZero())
	assert.True(t, calc.ReserveBalance.IsZero())
	assertIdentities(t, calc)
}

func TestCalculateReserveMonotonicity(t *testing.T) {
	pricing := domain.PricingConfig{
		SiteID:        "site-1",
		ReserveAmount: dec("100"),
	}

	collected := decimal.Zero
	for i := 0; i < 5; i++ {
		calc := fees.Calculate([]domain.Transaction{txn(domain.Sale, "30")}, pricing, collected)
		assert.True(t, calc.ReserveBalance.GreaterThanOrEqual(collected), "reserve decreased")
		assert.True(t, calc.ReserveBalance.LessThanOrEqual(pricing.ReserveAmount), "reserve overshot target")
		collected = calc.ReserveBalance
	}
	assert.True(t, collected.Equal(dec("100")))
}

func TestCalculateFeeCountCorrectness(t *testing.T) {
	pricing := standardPricing()
	transactions := []domain.Transaction{
		txn(domain.Sale, "10"), txn(domain.Sale, "20"), txn(domain.Sale, "30"),
		txn(domain.Refund, "10"), txn(domain.Refund, "20"),
		txn(domain.Chargeback, "30"),
	}

	calc := fees.Calculate(transactions, pricing, decimal.Zero)

	assert.True(t, calc.PerTransactionFeesTotal.Equal(pricing.PerTransactionFee.Mul(dec("6"))))
	assert.True(t, calc.RefundFeesTotal.Equal(pricing.RefundFee.Mul(dec("2"))))
	assert.True(t, calc.ChargebackFeesTotal.Equal(pricing.ChargebackFee.Mul(dec("1"))))
	assertIdentities(t, calc)
}
