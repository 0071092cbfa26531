package accrual

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/peopleops/hr-backend/pkg/errors"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestProrateFullYear(t *testing.T) {
	// Hired before the year starts: full allocation, no scaling
	assert.Equal(t, 21.0, Prorate(21, date(2023, time.March, 15), 2024))
}

func TestProrateJanuaryFirst(t *testing.T) {
	// A January 1 hire of the balance year is still scaled: 364 of 365 days
	assert.Equal(t, 20.9, Prorate(21, date(2024, time.January, 1), 2024))
}

func TestProrateMidYear(t *testing.T) {
	// July 1 2024 to Dec 31 2024 is 183 days
	got := Prorate(21, date(2024, time.July, 1), 2024)
	assert.Equal(t, 10.5, got)
}

func TestProrateFutureYearHire(t *testing.T) {
	// Scaling applies only to hires during the balance year; a hire dated
	// into a later year keeps the full annual allocation
	assert.Equal(t, 21.0, Prorate(21, date(2025, time.February, 1), 2024))
}

func TestLeaveDaysInclusive(t *testing.T) {
	days, err := LeaveDays(date(2024, time.June, 10), date(2024, time.June, 14))
	require.NoError(t, err)
	assert.Equal(t, 5.0, days)
}

func TestLeaveDaysSingleDay(t *testing.T) {
	days, err := LeaveDays(date(2024, time.June, 10), date(2024, time.June, 10))
	require.NoError(t, err)
	assert.Equal(t, 1.0, days)
}

func TestLeaveDaysReversedRange(t *testing.T) {
	_, err := LeaveDays(date(2024, time.June, 14), date(2024, time.June, 10))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrValidation))
}
