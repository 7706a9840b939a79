package fiscal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonthRange(t *testing.T) {
	tests := []struct {
		year, month int
		wantStart   time.Time
		wantEnd     time.Time
	}{
		{2025, 1, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 31, 23, 59, 59, 0, time.UTC)},
		{2025, 4, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 4, 30, 23, 59, 59, 0, time.UTC)},
		{2024, 2, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC)}, // leap year
		{2025, 12, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC)},
	}

	for _, tt := range tests {
		start, end := MonthRange(tt.year, tt.month)
		assert.Equal(t, tt.wantStart, start)
		assert.Equal(t, tt.wantEnd, end)
	}
}

func TestYearToDateRange(t *testing.T) {
	start, end := YearToDateRange(2025, 3)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 3, 31, 23, 59, 59, 0, time.UTC), end)
}

func TestYearRange(t *testing.T) {
	start, end := YearRange(2025)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC), end)
}

func TestPriorMonth(t *testing.T) {
	y, m := PriorMonth(2025, 1)
	assert.Equal(t, 2024, y)
	assert.Equal(t, 12, m)

	y, m = PriorMonth(2025, 7)
	assert.Equal(t, 2025, y)
	assert.Equal(t, 6, m)
}

func TestValidatePeriod(t *testing.T) {
	assert.NoError(t, ValidatePeriod(2025, 6))
	assert.Error(t, ValidatePeriod(2025, 0))
	assert.Error(t, ValidatePeriod(2025, 13))
	assert.Error(t, ValidatePeriod(1999, 6))
	assert.Error(t, ValidateYear(2101))
}
