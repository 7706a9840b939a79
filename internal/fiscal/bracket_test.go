package fiscal

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultAnnualISRTableIsValid(t *testing.T) {
	require.NoError(t, DefaultAnnualISRTable().Validate())
}

func TestDefaultTableIsFreshPerCall(t *testing.T) {
	a := DefaultAnnualISRTable()
	a[0].Rate = dec("0.99")
	b := DefaultAnnualISRTable()
	assert.True(t, b[0].Rate.Equal(dec("0.0192")), "mutating one copy must not leak into the next")
}

func TestParseBracketTable(t *testing.T) {
	payload := []byte(`[
		{"lower_limit":"0","upper_limit":"1000","fixed_fee":"0","rate":"0.05"},
		{"lower_limit":"1000","upper_limit":null,"fixed_fee":"50","rate":"0.10"}
	]`)
	table, err := ParseBracketTable(payload)
	require.NoError(t, err)
	require.Len(t, table, 2)
	assert.True(t, table[1].FixedFee.Equal(dec("50")))

	_, err = ParseBracketTable([]byte(`{"not":"an array"}`))
	assert.Error(t, err)
}

func TestValidateRejectsBrokenTables(t *testing.T) {
	tests := []struct {
		name  string
		table BracketTable
	}{
		{"empty", BracketTable{}},
		{"does not start at zero", BracketTable{
			{LowerLimit: dec("100"), UpperLimit: nil, FixedFee: dec("0"), Rate: dec("0.1")},
		}},
		{"gap between rows", BracketTable{
			{LowerLimit: dec("0"), UpperLimit: decPtr("1000"), FixedFee: dec("0"), Rate: dec("0.05")},
			{LowerLimit: dec("1500"), UpperLimit: nil, FixedFee: dec("50"), Rate: dec("0.10")},
		}},
		{"closed terminal row", BracketTable{
			{LowerLimit: dec("0"), UpperLimit: decPtr("1000"), FixedFee: dec("0"), Rate: dec("0.05")},
			{LowerLimit: dec("1000"), UpperLimit: decPtr("2000"), FixedFee: dec("50"), Rate: dec("0.10")},
		}},
		{"open row in the middle", BracketTable{
			{LowerLimit: dec("0"), UpperLimit: nil, FixedFee: dec("0"), Rate: dec("0.05")},
			{LowerLimit: dec("1000"), UpperLimit: nil, FixedFee: dec("50"), Rate: dec("0.10")},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.table.Validate())
		})
	}
}

func TestCalculateISRZeroAndNegative(t *testing.T) {
	table := DefaultAnnualISRTable()
	assert.True(t, CalculateISR(decimal.Zero, table).IsZero())
	assert.True(t, CalculateISR(dec("-15000"), table).IsZero())
}

func TestCalculateISRKnownFigure(t *testing.T) {
	// 80,000 of taxable income lands in the 10.88% row:
	// 3855.14 + (80000 - 65651.07) * 0.1088 = 5416.303584
	got := CalculateISR(dec("80000"), DefaultAnnualISRTable())
	assert.Equal(t, "5416.30", got.StringFixed(2))

	// Same inputs, same figure.
	again := CalculateISR(dec("80000"), DefaultAnnualISRTable())
	assert.True(t, got.Equal(again))
}

func TestCalculateISRMonotonic(t *testing.T) {
	table := DefaultAnnualISRTable()
	incomes := []string{
		"0.01", "100", "7735", "7736", "50000", "65651.07", "65651.08",
		"80000", "115375.90", "500000", "974535.03", "2000000", "3898140.12", "5000000",
	}
	prev := decimal.Zero
	for _, s := range incomes {
		tax := CalculateISR(dec(s), table)
		assert.True(t, tax.GreaterThanOrEqual(prev), "tax must be non-decreasing, dropped at income %s", s)
		prev = tax
	}
}

func TestCalculateISRContinuousAtBoundaries(t *testing.T) {
	table := DefaultAnnualISRTable()
	eps := dec("0.01")
	// Official tariffs round their fixed fees to centavos, so the step across
	// a boundary may be off by a fraction of a peso but never jumps.
	maxJump := dec("0.05")

	for i, b := range table {
		if b.UpperLimit == nil {
			continue
		}
		below := CalculateISR(*b.UpperLimit, table)
		above := CalculateISR(b.UpperLimit.Add(eps), table)
		step := above.Sub(below).Sub(eps.Mul(table[i+1].Rate))
		assert.True(t, step.Abs().LessThan(maxJump),
			"discontinuity of %s at boundary %s", step, b.UpperLimit)
	}
}

func TestCalculateISRTerminalFallback(t *testing.T) {
	// A misconfigured table whose last row has a finite upper limit would
	// silently cap taxation; incomes past the end must still use the last
	// row's marginal formula.
	broken := BracketTable{
		{LowerLimit: dec("0"), UpperLimit: decPtr("1000"), FixedFee: dec("0"), Rate: dec("0.05")},
		{LowerLimit: dec("1000"), UpperLimit: decPtr("2000"), FixedFee: dec("50"), Rate: dec("0.10")},
	}
	got := CalculateISR(dec("5000"), broken)
	want := dec("50").Add(dec("4000").Mul(dec("0.10")))
	assert.True(t, got.Equal(want), "got %s, want %s", got, want)
}
