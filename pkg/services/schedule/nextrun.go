package schedule

import (
	"time"

	"github.com/rcm-tools/revenue-atlas/pkg/models/domain"
)

// NextRun computes the first fire time strictly after the given instant. All
// schedule math is UTC. DayOfMonth is clamped to the target month, so a
// schedule on the 31st fires on February 29th in a leap year.
func NextRun(s domain.Schedule, after time.Time) time.Time {
	after = after.UTC()

	switch s.Frequency {
	case domain.FrequencyWeekly:
		candidate := time.Date(after.Year(), after.Month(), after.Day(), s.HourUTC, 0, 0, 0, time.UTC)
		offset := (int(s.Weekday) - int(candidate.Weekday()) + 7) % 7
		candidate = candidate.AddDate(0, 0, offset)
		if !candidate.After(after) {
			candidate = candidate.AddDate(0, 0, 7)
		}
		return candidate
	case domain.FrequencyMonthly:
		candidate := monthlyOn(after.Year(), after.Month(), s.DayOfMonth, s.HourUTC)
		if !candidate.After(after) {
			candidate = monthlyOn(after.Year(), after.Month()+1, s.DayOfMonth, s.HourUTC)
		}
		return candidate
	case domain.FrequencyQuarterly:
		quarter := quarterMonth(after.Month())
		candidate := monthlyOn(after.Year(), quarter, s.DayOfMonth, s.HourUTC)
		if !candidate.After(after) {
			candidate = monthlyOn(after.Year(), quarter+3, s.DayOfMonth, s.HourUTC)
		}
		return candidate
	default:
		// Daily, and the fallback for anything unrecognized.
		candidate := time.Date(after.Year(), after.Month(), after.Day(), s.HourUTC, 0, 0, 0, time.UTC)
		if !candidate.After(after) {
			candidate = candidate.AddDate(0, 0, 1)
		}
		return candidate
	}
}

// monthlyOn places the fire time on the clamped day of the given month.
// Month values past December roll over into the next year.
func monthlyOn(year int, month time.Month, dayOfMonth, hour int) time.Time {
	day := clampDay(year, month, dayOfMonth)
	return time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
}

func clampDay(year int, month time.Month, day int) int {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		return last
	}
	if day < 1 {
		return 1
	}
	return day
}

func quarterMonth(m time.Month) time.Month {
	return time.Month((int(m)-1)/3*3 + 1)
}
