package fiscal

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestComputeMonthlyIVA(t *testing.T) {
	tests := []struct {
		name        string
		in          IVAInput
		wantBalance string
		wantCredit  string
	}{
		{
			name: "plain month owes the net",
			in: IVAInput{
				Collected:  dec("16000"),
				Creditable: dec("4800"),
				Retained:   dec("1000"),
			},
			wantBalance: "10200.00",
			wantCredit:  "0.00",
		},
		{
			name: "credit in favor goes negative",
			in: IVAInput{
				Collected:  dec("1600"),
				Creditable: dec("2100"),
			},
			wantBalance: "-500.00",
			wantCredit:  "0.00",
		},
		{
			name: "negative prior balance carries forward",
			in: IVAInput{
				PriorBalance: dec("-500"),
			},
			wantBalance: "-500.00",
			wantCredit:  "-500.00",
		},
		{
			name: "positive prior balance does not carry",
			in: IVAInput{
				Collected:    dec("3200"),
				Creditable:   dec("800"),
				PriorBalance: dec("900"),
			},
			wantBalance: "2400.00",
			wantCredit:  "0.00",
		},
		{
			name: "carried credit offsets the next month",
			in: IVAInput{
				Collected:    dec("3200"),
				Creditable:   dec("800"),
				PriorBalance: dec("-500"),
			},
			wantBalance: "1900.00",
			wantCredit:  "-500.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ComputeMonthlyIVA(tt.in)
			assert.Equal(t, tt.wantBalance, res.Balance.StringFixed(2))
			assert.Equal(t, tt.wantCredit, res.CreditApplied.StringFixed(2))
		})
	}
}

func TestIVACreditPersistsThroughIdleMonth(t *testing.T) {
	// Month M closes at -500. Month M+1 has zero activity; the credit must
	// survive untouched into M+2.
	m := ComputeMonthlyIVA(IVAInput{Collected: dec("1600"), Creditable: dec("2100")})
	assert.Equal(t, "-500.00", m.Balance.StringFixed(2))

	idle := ComputeMonthlyIVA(IVAInput{PriorBalance: m.Balance})
	assert.Equal(t, "-500.00", idle.Balance.StringFixed(2))

	next := ComputeMonthlyIVA(IVAInput{Collected: dec("700"), PriorBalance: idle.Balance})
	assert.Equal(t, "200.00", next.Balance.StringFixed(2))
	assert.True(t, decimal.Zero.GreaterThan(next.CreditApplied))
}
