package fiscal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareToleranceBand(t *testing.T) {
	base := Figures{Income: dec("10000"), Expenses: dec("2000"), ISR: dec("800"), IVA: dec("1280")}

	within := base
	within.Income = base.Income.Add(dec("0.01"))
	assert.Empty(t, Compare(within, base), "a 0.01 difference sits inside the tolerance band")

	outside := base
	outside.Income = base.Income.Add(dec("0.02"))
	got := Compare(outside, base)
	require.Len(t, got, 1)
	assert.Equal(t, "income", got[0].Field)
	assert.Equal(t, "0.02", got[0].Difference.StringFixed(2))
}

func TestCompareIdenticalFiguresClean(t *testing.T) {
	f := Figures{Income: dec("55000"), Expenses: dec("12000"), ISR: dec("3100"), IVA: dec("6880")}
	assert.Empty(t, Compare(f, f))
}

func TestCompareSeverityTripwires(t *testing.T) {
	tests := []struct {
		name     string
		app      string
		declared string
		want     string
	}{
		// 999 absolute at 9%: neither critical tripwire fires, warning does.
		{"large but sub-threshold difference", "12100", "11101", SeverityWarning},
		// 1000 absolute is critical regardless of percentage.
		{"absolute tripwire", "101000", "100000", SeverityCritical},
		// 50 absolute but 12.5%: the percentage tripwire alone escalates.
		{"percentage tripwire", "450", "400", SeverityCritical},
		// 150 at 1.5%: absolute warning tripwire.
		{"warning absolute", "10150", "10000", SeverityWarning},
		// 10 at 0.1%: below every tripwire.
		{"minor", "10010", "10000", SeverityMinor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := Figures{Income: dec(tt.app)}
			declared := Figures{Income: dec(tt.declared)}
			got := Compare(app, declared)
			require.Len(t, got, 1)
			assert.Equal(t, tt.want, got[0].Severity)
		})
	}
}

func TestCompareZeroDeclaredReadsAsFullDeviation(t *testing.T) {
	app := Figures{ISR: dec("250")}
	declared := Figures{}
	got := Compare(app, declared)
	require.Len(t, got, 1)
	assert.Equal(t, "isr", got[0].Field)
	assert.Equal(t, "100.00", got[0].PercentageDiff.StringFixed(2))
	assert.Equal(t, SeverityCritical, got[0].Severity)
}

func TestCompareNegativeDifference(t *testing.T) {
	// Declaring more than the app computed is just as much a discrepancy.
	app := Figures{IVA: dec("1000")}
	declared := Figures{IVA: dec("2500")}
	got := Compare(app, declared)
	require.Len(t, got, 1)
	assert.Equal(t, "-1500.00", got[0].Difference.StringFixed(2))
	assert.Equal(t, SeverityCritical, got[0].Severity)
}
