package fiscal

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestComputeProvisionalEndToEnd(t *testing.T) {
	// Year-to-date income $100,000 with $20,000 of deductions through March.
	in := ProvisionalInput{
		AccumulatedIncome:     dec("100000"),
		AccumulatedDeductions: dec("20000"),
		AlreadyPaid:           decimal.Zero,
		Retained:              decimal.Zero,
	}
	res := ComputeProvisional(in, DefaultAnnualISRTable())

	assert.Equal(t, "80000.00", res.TaxableIncome.StringFixed(2))
	assert.Equal(t, "5416.30", res.ISRCalculated.StringFixed(2))
	assert.Equal(t, "5416.30", res.ISRBalance.StringFixed(2))

	// Determinism: a second run over the same inputs returns the same figure.
	again := ComputeProvisional(in, DefaultAnnualISRTable())
	assert.True(t, res.ISRCalculated.Equal(again.ISRCalculated))
}

func TestComputeProvisionalBalanceNeverNegative(t *testing.T) {
	in := ProvisionalInput{
		AccumulatedIncome:     dec("50000"),
		AccumulatedDeductions: dec("10000"),
		AlreadyPaid:           dec("3000"),
		Retained:              dec("4000"), // already-paid + retained exceed the calculated figure
	}
	res := ComputeProvisional(in, DefaultAnnualISRTable())
	assert.True(t, res.ISRBalance.IsZero(), "monthly balance must clamp at zero, got %s", res.ISRBalance)
}

func TestComputeProvisionalDeductionsExceedIncome(t *testing.T) {
	in := ProvisionalInput{
		AccumulatedIncome:     dec("10000"),
		AccumulatedDeductions: dec("25000"),
	}
	res := ComputeProvisional(in, DefaultAnnualISRTable())
	assert.True(t, res.TaxableIncome.IsZero())
	assert.True(t, res.ISRCalculated.IsZero())
	assert.True(t, res.ISRBalance.IsZero())
}

func TestSumPriorProvisional(t *testing.T) {
	records := []PeriodTax{
		{Month: 1, Status: "paid", ISR: dec("1000")},
		{Month: 2, Status: "calculated", ISR: dec("1500")},
		{Month: 3, Status: "pending", ISR: dec("9999")},   // not yet part of the chain
		{Month: 4, Status: "calculated", ISR: dec("500")}, // the month being recalculated
		{Month: 5, Status: "paid", ISR: dec("700")},       // future month, ignored
	}

	got := SumPriorProvisional(records, 4)
	assert.Equal(t, "2500.00", got.StringFixed(2), "only prior calculated/paid months count")

	assert.True(t, SumPriorProvisional(nil, 6).IsZero())
	assert.True(t, SumPriorProvisional(records, 1).IsZero(), "January has no prior months")
}

func TestSettleAnnualRefund(t *testing.T) {
	// Heavy over-withholding across the year produces a negative final
	// balance, i.e. a refund owed to the taxpayer.
	in := AnnualInput{
		TotalIncome:        dec("100000"),
		TotalDeductions:    dec("20000"),
		PersonalDeductions: decimal.Zero,
		ProvisionalPaid:    dec("4000"),
		Retained:           dec("3000"),
	}
	res := SettleAnnual(in, DefaultAnnualISRTable())

	assert.Equal(t, "5416.30", res.ISRAnnual.StringFixed(2))
	assert.Equal(t, "-1583.70", res.FinalBalance.StringFixed(2))
	assert.True(t, res.FinalBalance.IsNegative(), "annual balance must stay signed")
}

func TestSettleAnnualPersonalDeductionsClamp(t *testing.T) {
	in := AnnualInput{
		TotalIncome:        dec("30000"),
		TotalDeductions:    dec("10000"),
		PersonalDeductions: dec("50000"), // more than the remaining taxable income
	}
	res := SettleAnnual(in, DefaultAnnualISRTable())
	assert.True(t, res.TaxableIncome.IsZero(), "personal deductions clamp taxable income at zero")
	assert.True(t, res.ISRAnnual.IsZero())
}

func TestSettleAnnualPersonalDeductionsReduceTax(t *testing.T) {
	base := AnnualInput{TotalIncome: dec("100000"), TotalDeductions: dec("20000")}
	withDeductions := base
	withDeductions.PersonalDeductions = dec("15000")

	plain := SettleAnnual(base, DefaultAnnualISRTable())
	reduced := SettleAnnual(withDeductions, DefaultAnnualISRTable())

	assert.Equal(t, "65000.00", reduced.TaxableIncome.StringFixed(2))
	assert.True(t, reduced.ISRAnnual.LessThan(plain.ISRAnnual))
}
