// Package timeframe resolves symbolic reporting time frames into concrete
// calendar date ranges. Every function is pure: results depend only on the
// arguments, the anchor instant is injected, and degenerate input maps to the
// unresolved range instead of an error.
package timeframe

import (
	"time"

	"github.com/rcm-tools/revenue-atlas/pkg/models/domain"
)

// DateLayout is the canonical calendar-date form used across the reporting API.
const DateLayout = "2006-01-02"

// FormatDate renders t as a canonical calendar date, dropping any time of day.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a canonical calendar date. Malformed input reports ok=false
// rather than an error.
func ParseDate(s string) (time.Time, bool) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Resolve maps a symbolic time frame to the concrete closed interval it
// denotes at the anchor instant now. Both endpoints are inclusive calendar
// dates. A custom frame echoes the supplied range when both endpoints are
// present and resolves to the unresolved range otherwise; the supplied range
// is not checked for ordering. Unknown frames behave like the current month.
func Resolve(tf domain.TimeFrame, now time.Time, custom *domain.DateRange) domain.DateRange {
	switch tf {
	case domain.TimeFrameCustom:
		if custom != nil && custom.IsResolved() {
			return *custom
		}
		return domain.DateRange{}
	case domain.TimeFramePreviousMonth:
		prev := startOfMonth(now).AddDate(0, -1, 0)
		return rangeOf(prev, endOfMonth(prev))
	case domain.TimeFrameCurrentQuarter:
		return rangeOf(startOfQuarter(now), endOfQuarter(now))
	case domain.TimeFramePreviousQuarter:
		prev := startOfQuarter(now).AddDate(0, -3, 0)
		return rangeOf(prev, endOfQuarter(prev))
	case domain.TimeFrameCurrentYear:
		return rangeOf(startOfYear(now), endOfYear(now))
	case domain.TimeFramePreviousYear:
		prev := startOfYear(now).AddDate(-1, 0, 0)
		return rangeOf(prev, endOfYear(prev))
	case domain.TimeFrameLast30Days:
		return trailingDays(now, 30)
	case domain.TimeFrameLast60Days:
		return trailingDays(now, 60)
	case domain.TimeFrameLast90Days:
		return trailingDays(now, 90)
	default:
		return rangeOf(startOfMonth(now), endOfMonth(now))
	}
}

// ResolveComparison derives the comparison window for a resolved primary
// range. The unresolved range comes back whenever no comparison applies: the
// comparison type is none (or unknown), the primary range is unresolved, or
// an endpoint fails to parse.
func ResolveComparison(primary domain.DateRange, ct domain.ComparisonType) domain.DateRange {
	if !primary.IsResolved() {
		return domain.DateRange{}
	}
	start, okStart := ParseDate(primary.Start())
	end, okEnd := ParseDate(primary.End())
	if !okStart || !okEnd {
		return domain.DateRange{}
	}

	switch ct {
	case domain.ComparisonPreviousPeriod:
		// Shift both endpoints back by the primary's inclusive day count,
		// giving the contiguous, equal-length window just before it.
		days := daysBetween(start, end) + 1
		return rangeOf(start.AddDate(0, 0, -days), end.AddDate(0, 0, -days))
	case domain.ComparisonYearOverYear:
		// AddDate normalizes Feb 29 to Mar 1 in non-leap years.
		return rangeOf(start.AddDate(-1, 0, 0), end.AddDate(-1, 0, 0))
	case domain.ComparisonBudget:
		// The budget dataset is fetched elsewhere; the window is the primary
		// window itself.
		return rangeOf(start, end)
	default:
		return domain.DateRange{}
	}
}

// daysBetween counts whole days from start to end. Parsed calendar dates are
// UTC midnights, so the subtraction is exact.
func daysBetween(start, end time.Time) int {
	return int(end.Sub(start) / (24 * time.Hour))
}
