package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCentsRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		cents int64
		pesos string
	}{
		{"zero", 0, "0.00"},
		{"one centavo", 1, "0.01"},
		{"whole pesos", 1250000, "12500.00"},
		{"negative credit", -50000, "-500.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := FromCents(tt.cents)
			assert.Equal(t, tt.pesos, Format(d))
			assert.Equal(t, tt.cents, ToCents(d))
		})
	}
}

func TestRound2HalfAwayFromZero(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1.005", "1.01"},
		{"1.004", "1.00"},
		{"2.675", "2.68"},
		{"-1.005", "-1.01"},
		{"-0.005", "-0.01"},
		{"5416.3035", "5416.30"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, err := decimal.NewFromString(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, Format(Round2(d)))
		})
	}
}

func TestToCentsQuantizesBeforeScaling(t *testing.T) {
	d := decimal.RequireFromString("0.019")
	assert.Equal(t, int64(2), ToCents(d))
}

func TestParseAmount(t *testing.T) {
	d, err := ParseAmount("1234.56")
	require.NoError(t, err)
	assert.Equal(t, int64(123456), ToCents(d))

	_, err = ParseAmount("1.234")
	assert.Error(t, err)

	_, err = ParseAmount("abc")
	assert.Error(t, err)
}
