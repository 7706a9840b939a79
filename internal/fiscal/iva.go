package fiscal

import "github.com/shopspring/decimal"

// IVAInput carries the strictly-monthly IVA aggregates. PriorBalance is the
// previous month's persisted balance, signed.
type IVAInput struct {
	Collected    decimal.Decimal // IVA charged on business income in the month
	Creditable   decimal.Decimal // IVA paid on deductible purchases in the month
	Retained     decimal.Decimal // IVA withheld by clients in the month
	PriorBalance decimal.Decimal
}

// IVAResult is the outcome of a definitive monthly IVA run. Balance is
// signed: negative means a credit in the taxpayer's favor that carries into
// the next month.
type IVAResult struct {
	Collected     decimal.Decimal
	Creditable    decimal.Decimal
	Retained      decimal.Decimal
	CreditApplied decimal.Decimal // prior-month credit pulled into this month, <= 0
	Balance       decimal.Decimal
}

// ComputeMonthlyIVA settles IVA for a single calendar month. Only a negative
// prior balance carries forward: a positive balance was already due in its own
// month and never offsets the next one.
func ComputeMonthlyIVA(in IVAInput) IVAResult {
	credit := decimal.Zero
	if in.PriorBalance.IsNegative() {
		credit = in.PriorBalance
	}

	balance := in.Collected.Sub(in.Creditable).Sub(in.Retained).Add(credit)

	return IVAResult{
		Collected:     in.Collected,
		Creditable:    in.Creditable,
		Retained:      in.Retained,
		CreditApplied: credit,
		Balance:       balance,
	}
}
