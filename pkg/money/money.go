package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// FromCents converts an integer amount of centavos into a decimal peso amount.
func FromCents(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Div(hundred)
}

// ToCents converts a decimal peso amount into centavos, quantizing to two
// decimal places (half-up) first so that sub-centavo remainders never leak
// into storage.
func ToCents(amount decimal.Decimal) int64 {
	return Round2(amount).Mul(hundred).IntPart()
}

// Round2 quantizes a decimal to two places, rounding half away from zero.
// On the negative amounts that occur here (IVA credits, refund balances)
// that rounds -0.005 to -0.01, keeping |rounded| the same whichever side of
// zero the figure lands on. All presentation and persisted figures pass
// through here.
func Round2(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}

// Format renders a decimal as a fixed two-place string for API responses.
func Format(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// ParseAmount parses a decimal string (e.g. "1234.56") and rejects values
// that carry more than two decimal places, since the ledger stores centavos.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if d.Exponent() < -2 {
		return decimal.Zero, fmt.Errorf("amount %q has more than two decimal places", s)
	}
	return d, nil
}
