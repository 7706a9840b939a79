package fiscal

import "github.com/shopspring/decimal"

// Discrepancy severity levels. The thresholds are independent tripwires: an
// absolute difference OR a percentage difference alone is enough to escalate.
const (
	SeverityMinor    = "minor"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

var (
	// tolerance absorbs rounding noise between app and SAT figures.
	tolerance = decimal.RequireFromString("0.01")

	criticalAbs = decimal.NewFromInt(1000)
	criticalPct = decimal.NewFromInt(10)
	warningAbs  = decimal.NewFromInt(100)
	warningPct  = decimal.NewFromInt(5)
)

// Figures are the four reconciled fields of a monthly declaration, in pesos.
type Figures struct {
	Income   decimal.Decimal
	Expenses decimal.Decimal
	ISR      decimal.Decimal
	IVA      decimal.Decimal
}

// Discrepancy is one field-level mismatch between computed and declared
// figures. Derived on demand, never persisted.
type Discrepancy struct {
	Field          string          `json:"field"`
	AppValue       decimal.Decimal `json:"app_value"`
	DeclaredValue  decimal.Decimal `json:"declared_value"`
	Difference     decimal.Decimal `json:"difference"`
	PercentageDiff decimal.Decimal `json:"percentage_diff"`
	Severity       string          `json:"severity"`
}

// Compare diffs computed figures against declared ones field by field.
// Differences within the 0.01 tolerance band are dropped.
func Compare(app, declared Figures) []Discrepancy {
	fields := []struct {
		name     string
		app      decimal.Decimal
		declared decimal.Decimal
	}{
		{"income", app.Income, declared.Income},
		{"expenses", app.Expenses, declared.Expenses},
		{"isr", app.ISR, declared.ISR},
		{"iva", app.IVA, declared.IVA},
	}

	var out []Discrepancy
	for _, f := range fields {
		diff := f.app.Sub(f.declared)
		if diff.Abs().LessThanOrEqual(tolerance) {
			continue
		}
		pct := percentageDiff(diff, f.declared)
		out = append(out, Discrepancy{
			Field:          f.name,
			AppValue:       f.app,
			DeclaredValue:  f.declared,
			Difference:     diff,
			PercentageDiff: pct,
			Severity:       classify(diff.Abs(), pct),
		})
	}
	return out
}

// percentageDiff is abs(diff)/declared*100. A zero declared value against a
// nonzero app value reads as 100%, flagging the total absence of a declared
// figure at maximal severity.
func percentageDiff(diff, declared decimal.Decimal) decimal.Decimal {
	if declared.IsZero() {
		return decimal.NewFromInt(100)
	}
	return diff.Abs().Div(declared.Abs()).Mul(decimal.NewFromInt(100))
}

func classify(absDiff, pct decimal.Decimal) string {
	switch {
	case absDiff.GreaterThanOrEqual(criticalAbs) || pct.GreaterThanOrEqual(criticalPct):
		return SeverityCritical
	case absDiff.GreaterThanOrEqual(warningAbs) || pct.GreaterThanOrEqual(warningPct):
		return SeverityWarning
	default:
		return SeverityMinor
	}
}
