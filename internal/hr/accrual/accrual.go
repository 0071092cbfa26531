// Package accrual holds the leave entitlement math.
package accrual

import (
	"math"
	"time"

	"github.com/peopleops/hr-backend/pkg/errors"
)

// Prorate computes the entitlement for a balance year. Only a hire during
// that year is scaled, by the days remaining until December 31 rounded to
// one decimal; any other hire year keeps the full annual allocation.
func Prorate(annualDays float64, hireDate time.Time, year int) float64 {
	if hireDate.Year() != year {
		return annualDays
	}

	yearEnd := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	daysLeft := int(yearEnd.Sub(hireDate).Hours() / 24)
	return round1(annualDays * float64(daysLeft) / 365)
}

// LeaveDays counts calendar days in a leave range, inclusive of both ends.
// A reversed range is a validation error, never a negative count.
func LeaveDays(start, end time.Time) (float64, error) {
	if end.Before(start) {
		return 0, errors.Validation("end_date", "end date must not be before start date")
	}
	return float64(int(end.Sub(start).Hours()/24) + 1), nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
