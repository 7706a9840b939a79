package fiscal

import "github.com/shopspring/decimal"

// ProvisionalInput carries the year-to-date aggregates feeding a monthly
// provisional ISR calculation. All figures are pesos as decimals.
type ProvisionalInput struct {
	AccumulatedIncome     decimal.Decimal
	AccumulatedDeductions decimal.Decimal
	AlreadyPaid           decimal.Decimal // ISR calculated on prior months of the same year
	Retained              decimal.Decimal // ISR withheld on income in the accumulation window
}

// ProvisionalResult is the outcome of a monthly provisional run.
type ProvisionalResult struct {
	TaxableIncome decimal.Decimal
	ISRCalculated decimal.Decimal
	AlreadyPaid   decimal.Decimal
	Retained      decimal.Decimal
	ISRBalance    decimal.Decimal // clamped at zero, provisional payments are never refunded
}

// ComputeProvisional applies the tariff to the year-to-date taxable income and
// nets out prior provisional payments and withholdings. The balance clamps at
// zero: over-withholding mid-year is only resolved at annual settlement.
func ComputeProvisional(in ProvisionalInput, table BracketTable) ProvisionalResult {
	taxable := in.AccumulatedIncome.Sub(in.AccumulatedDeductions)
	if taxable.IsNegative() {
		taxable = decimal.Zero
	}

	isr := CalculateISR(taxable, table)

	balance := isr.Sub(in.AlreadyPaid).Sub(in.Retained)
	if balance.IsNegative() {
		balance = decimal.Zero
	}

	return ProvisionalResult{
		TaxableIncome: taxable,
		ISRCalculated: isr,
		AlreadyPaid:   in.AlreadyPaid,
		Retained:      in.Retained,
		ISRBalance:    balance,
	}
}

// PeriodTax is one month's persisted provisional result, as fed into the
// already-paid accumulator.
type PeriodTax struct {
	Month  int
	Status string
	ISR    decimal.Decimal
}

// countable reports whether a record's status makes it part of the
// already-paid chain.
func countable(status string) bool {
	return status == "calculated" || status == "paid"
}

// SumPriorProvisional folds the ordered sequence of a year's provisional
// records into the amount already covered before the given month. Only months
// strictly before the target count, so recalculating a month never double
// counts itself.
func SumPriorProvisional(records []PeriodTax, beforeMonth int) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		if r.Month >= beforeMonth {
			continue
		}
		if !countable(r.Status) {
			continue
		}
		total = total.Add(r.ISR)
	}
	return total
}

// AnnualInput carries the full-year aggregates for the annual settlement.
type AnnualInput struct {
	TotalIncome        decimal.Decimal
	TotalDeductions    decimal.Decimal // business deductions from the ledger
	PersonalDeductions decimal.Decimal // deducciones personales claimed on the annual return
	ProvisionalPaid    decimal.Decimal // provisional payments actually made across the year
	Retained           decimal.Decimal // ISR withheld across the year
}

// AnnualResult is the outcome of an annual ISR settlement. FinalBalance is
// signed: a negative value is a refund owed to the taxpayer.
type AnnualResult struct {
	TaxableIncome decimal.Decimal
	ISRAnnual     decimal.Decimal
	FinalBalance  decimal.Decimal
}

// SettleAnnual recomputes the year's taxable income, subtracts personal
// deductions (taxable income never drops below zero) and nets provisional
// payments and withholdings against the annual figure. Unlike the monthly
// path the balance is not clamped, so heavy over-withholding surfaces as a
// refund.
func SettleAnnual(in AnnualInput, table BracketTable) AnnualResult {
	taxable := in.TotalIncome.Sub(in.TotalDeductions)
	if taxable.IsNegative() {
		taxable = decimal.Zero
	}
	taxable = taxable.Sub(in.PersonalDeductions)
	if taxable.IsNegative() {
		taxable = decimal.Zero
	}

	isr := CalculateISR(taxable, table)

	return AnnualResult{
		TaxableIncome: taxable,
		ISRAnnual:     isr,
		FinalBalance:  isr.Sub(in.ProvisionalPaid).Sub(in.Retained),
	}
}
