package fiscal

import (
	"fmt"
	"time"
)

// Calendar window helpers. All windows are inclusive [start, end] in UTC,
// with end pinned to the last second of the closing day to match the
// date-range queries over the transaction ledger.

// MonthRange returns the inclusive bounds of a calendar month.
func MonthRange(year, month int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Second)
	return start, end
}

// YearToDateRange returns the provisional accumulation window: January 1st
// through the last day of the target month.
func YearToDateRange(year, month int) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	_, end := MonthRange(year, month)
	return start, end
}

// YearRange returns the inclusive bounds of a full fiscal year.
func YearRange(year int) (time.Time, time.Time) {
	return YearToDateRange(year, 12)
}

// PriorMonth steps one month back, crossing the year boundary for January.
func PriorMonth(year, month int) (int, int) {
	if month == 1 {
		return year - 1, 12
	}
	return year, month - 1
}

// ValidatePeriod rejects out-of-range year/month inputs before any
// computation runs.
func ValidatePeriod(year, month int) error {
	if err := ValidateYear(year); err != nil {
		return err
	}
	if month < 1 || month > 12 {
		return fmt.Errorf("month %d out of range [1, 12]", month)
	}
	return nil
}

// ValidateYear rejects implausible fiscal years.
func ValidateYear(year int) error {
	if year < 2000 || year > 2100 {
		return fmt.Errorf("year %d out of range [2000, 2100]", year)
	}
	return nil
}
