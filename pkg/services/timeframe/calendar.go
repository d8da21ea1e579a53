package timeframe

import (
	"time"

	"github.com/rcm-tools/revenue-atlas/pkg/models/domain"
)

func rangeOf(start, end time.Time) domain.DateRange {
	return domain.NewDateRange(FormatDate(start), FormatDate(end))
}

// trailingDays is the closed window of n calendar days ending at now, so the
// anchor day itself counts as the last day.
func trailingDays(now time.Time, n int) domain.DateRange {
	return rangeOf(now.AddDate(0, 0, -(n-1)), now)
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func endOfMonth(t time.Time) time.Time {
	return startOfMonth(t).AddDate(0, 1, -1)
}

func startOfQuarter(t time.Time) time.Time {
	q := (int(t.Month()) - 1) / 3
	return time.Date(t.Year(), time.Month(q*3+1), 1, 0, 0, 0, 0, time.UTC)
}

func endOfQuarter(t time.Time) time.Time {
	return startOfQuarter(t).AddDate(0, 3, -1)
}

func startOfYear(t time.Time) time.Time {
	return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
}

func endOfYear(t time.Time) time.Time {
	return time.Date(t.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)
}
