package fiscal

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Bracket is one row of a progressive ISR tariff. UpperLimit is nil for the
// open-ended terminal row.
type Bracket struct {
	LowerLimit decimal.Decimal  `json:"lower_limit"`
	UpperLimit *decimal.Decimal `json:"upper_limit"`
	FixedFee   decimal.Decimal  `json:"fixed_fee"`
	Rate       decimal.Decimal  `json:"rate"`
}

// BracketTable is an ordered partition of [0, inf) into progressive brackets.
// Income x belongs to bracket b when x > b.LowerLimit and (b.UpperLimit is nil
// or x <= b.UpperLimit).
type BracketTable []Bracket

// ParseBracketTable decodes a serialized tariff payload and validates its
// structure. The payload is a JSON array of bracket rows as stored in the
// fiscal_parameters table.
func ParseBracketTable(payload []byte) (BracketTable, error) {
	var table BracketTable
	if err := json.Unmarshal(payload, &table); err != nil {
		return nil, fmt.Errorf("malformed bracket payload: %w", err)
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}

// Validate checks the structural invariants: non-empty, starts at zero,
// ascending, gapless (each upper limit equals the next lower limit) and
// open-ended on the last row.
func (t BracketTable) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("bracket table is empty")
	}
	if !t[0].LowerLimit.IsZero() {
		return fmt.Errorf("first bracket must start at 0, got %s", t[0].LowerLimit)
	}
	for i, b := range t {
		if b.Rate.IsNegative() || b.FixedFee.IsNegative() {
			return fmt.Errorf("bracket %d has negative rate or fixed fee", i)
		}
		last := i == len(t)-1
		if last {
			if b.UpperLimit != nil {
				return fmt.Errorf("last bracket must be open-ended")
			}
			continue
		}
		if b.UpperLimit == nil {
			return fmt.Errorf("bracket %d is open-ended but not last", i)
		}
		if b.UpperLimit.LessThanOrEqual(b.LowerLimit) {
			return fmt.Errorf("bracket %d has upper limit %s <= lower limit %s", i, b.UpperLimit, b.LowerLimit)
		}
		if !t[i+1].LowerLimit.Equal(*b.UpperLimit) {
			return fmt.Errorf("bracket %d upper limit %s does not meet next lower limit %s", i, b.UpperLimit, t[i+1].LowerLimit)
		}
	}
	return nil
}

// bracketFor locates the row covering the given income. When income exceeds
// every tabulated upper limit (a misconfigured terminal row), the last row is
// returned so the marginal formula still applies instead of capping the tax.
func (t BracketTable) bracketFor(income decimal.Decimal) Bracket {
	for _, b := range t {
		if income.GreaterThan(b.LowerLimit) && (b.UpperLimit == nil || income.LessThanOrEqual(*b.UpperLimit)) {
			return b
		}
	}
	return t[len(t)-1]
}

// CalculateISR applies the progressive tariff to a taxable income figure.
// Non-positive income yields zero. The result is unrounded; callers quantize
// at the presentation boundary.
func CalculateISR(income decimal.Decimal, table BracketTable) decimal.Decimal {
	if income.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	b := table.bracketFor(income)
	return b.FixedFee.Add(income.Sub(b.LowerLimit).Mul(b.Rate))
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// DefaultAnnualISRTable returns the built-in annual ISR tariff for the 2025
// fiscal year, used whenever no fiscal_parameters row resolves for a target
// date or its payload fails to parse. Returned fresh on every call so callers
// can never mutate a shared table.
func DefaultAnnualISRTable() BracketTable {
	return BracketTable{
		{LowerLimit: dec("0"), UpperLimit: decPtr("7735.00"), FixedFee: dec("0"), Rate: dec("0.0192")},
		{LowerLimit: dec("7735.00"), UpperLimit: decPtr("65651.07"), FixedFee: dec("148.51"), Rate: dec("0.064")},
		{LowerLimit: dec("65651.07"), UpperLimit: decPtr("115375.90"), FixedFee: dec("3855.14"), Rate: dec("0.1088")},
		{LowerLimit: dec("115375.90"), UpperLimit: decPtr("134119.41"), FixedFee: dec("9265.20"), Rate: dec("0.16")},
		{LowerLimit: dec("134119.41"), UpperLimit: decPtr("160577.65"), FixedFee: dec("12264.16"), Rate: dec("0.1792")},
		{LowerLimit: dec("160577.65"), UpperLimit: decPtr("323862.00"), FixedFee: dec("17005.47"), Rate: dec("0.2136")},
		{LowerLimit: dec("323862.00"), UpperLimit: decPtr("510451.00"), FixedFee: dec("51883.01"), Rate: dec("0.2352")},
		{LowerLimit: dec("510451.00"), UpperLimit: decPtr("974535.03"), FixedFee: dec("95768.74"), Rate: dec("0.30")},
		{LowerLimit: dec("974535.03"), UpperLimit: decPtr("1299380.04"), FixedFee: dec("234993.95"), Rate: dec("0.32")},
		{LowerLimit: dec("1299380.04"), UpperLimit: decPtr("3898140.12"), FixedFee: dec("338944.34"), Rate: dec("0.34")},
		{LowerLimit: dec("3898140.12"), UpperLimit: nil, FixedFee: dec("1222522.76"), Rate: dec("0.35")},
	}
}
