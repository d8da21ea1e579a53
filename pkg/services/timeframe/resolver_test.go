package timeframe

import (
	"testing"
	"time"

	"github.com/rcm-tools/revenue-atlas/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_CalendarFrames(t *testing.T) {
	now := time.Date(2024, 2, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		tf    domain.TimeFrame
		start string
		end   string
	}{
		{"current month in a leap February", domain.TimeFrameCurrentMonth, "2024-02-01", "2024-02-29"},
		{"previous month", domain.TimeFramePreviousMonth, "2024-01-01", "2024-01-31"},
		{"current quarter", domain.TimeFrameCurrentQuarter, "2024-01-01", "2024-03-31"},
		{"previous quarter crosses the year boundary", domain.TimeFramePreviousQuarter, "2023-10-01", "2023-12-31"},
		{"current year", domain.TimeFrameCurrentYear, "2024-01-01", "2024-12-31"},
		{"previous year", domain.TimeFramePreviousYear, "2023-01-01", "2023-12-31"},
		{"last 30 days includes the anchor day", domain.TimeFrameLast30Days, "2024-01-17", "2024-02-15"},
		{"last 60 days", domain.TimeFrameLast60Days, "2023-12-18", "2024-02-15"},
		{"last 90 days", domain.TimeFrameLast90Days, "2023-11-18", "2024-02-15"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.tf, now, nil)
			require.True(t, got.IsResolved())
			assert.Equal(t, tt.start, got.Start())
			assert.Equal(t, tt.end, got.End())
		})
	}
}

func TestResolve_Last30DaysWindowLength(t *testing.T) {
	// 30 calendar days counted inclusively: Mar 1 through Mar 30.
	now := time.Date(2024, 3, 30, 0, 0, 0, 0, time.UTC)
	got := Resolve(domain.TimeFrameLast30Days, now, nil)
	assert.Equal(t, "2024-03-01", got.Start())
	assert.Equal(t, "2024-03-30", got.End())
}

func TestResolve_PreviousQuarterMidQuarter(t *testing.T) {
	now := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	got := Resolve(domain.TimeFramePreviousQuarter, now, nil)
	assert.Equal(t, "2023-10-01", got.Start())
	assert.Equal(t, "2023-12-31", got.End())
}

func TestResolve_PreviousMonthAtJanuary(t *testing.T) {
	now := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	got := Resolve(domain.TimeFramePreviousMonth, now, nil)
	assert.Equal(t, "2023-12-01", got.Start())
	assert.Equal(t, "2023-12-31", got.End())
}

func TestResolve_Custom(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("echoes a fully specified range", func(t *testing.T) {
		custom := domain.NewDateRange("2024-01-15", "2024-02-20")
		got := Resolve(domain.TimeFrameCustom, now, &custom)
		assert.Equal(t, custom, got)
	})

	t.Run("nil range stays unresolved", func(t *testing.T) {
		got := Resolve(domain.TimeFrameCustom, now, nil)
		assert.False(t, got.IsResolved())
		assert.Nil(t, got.StartDate)
		assert.Nil(t, got.EndDate)
	})

	t.Run("half-specified range stays unresolved", func(t *testing.T) {
		start := "2024-01-15"
		got := Resolve(domain.TimeFrameCustom, now, &domain.DateRange{StartDate: &start})
		assert.False(t, got.IsResolved())
		assert.Nil(t, got.StartDate)
		assert.Nil(t, got.EndDate)
	})
}

func TestResolve_UnknownFrameFallsBackToCurrentMonth(t *testing.T) {
	now := time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)
	got := Resolve(domain.TimeFrame("fortnight"), now, nil)
	assert.Equal(t, "2024-05-01", got.Start())
	assert.Equal(t, "2024-05-31", got.End())
}

func TestResolve_EveryNonCustomFrameIsOrdered(t *testing.T) {
	now := time.Date(2024, 7, 4, 18, 0, 0, 0, time.UTC)
	for _, tf := range domain.TimeFrames {
		if tf == domain.TimeFrameCustom {
			continue
		}
		got := Resolve(tf, now, nil)
		require.True(t, got.IsResolved(), "frame %s", tf)
		start, ok := ParseDate(got.Start())
		require.True(t, ok, "frame %s start %q", tf, got.Start())
		end, ok := ParseDate(got.End())
		require.True(t, ok, "frame %s end %q", tf, got.End())
		assert.False(t, end.Before(start), "frame %s resolved to %s..%s", tf, got.Start(), got.End())
	}
}

func TestResolve_Deterministic(t *testing.T) {
	now := time.Date(2024, 8, 9, 23, 59, 59, 0, time.UTC)
	for _, tf := range domain.TimeFrames {
		first := Resolve(tf, now, nil)
		second := Resolve(tf, now, nil)
		assert.Equal(t, first, second, "frame %s", tf)
	}
}

func TestResolveComparison_PreviousPeriod(t *testing.T) {
	t.Run("full June shifts onto early May", func(t *testing.T) {
		// June spans 30 days, so the window lands on May 2..May 31, not on
		// calendar May.
		primary := domain.NewDateRange("2024-06-01", "2024-06-30")
		got := ResolveComparison(primary, domain.ComparisonPreviousPeriod)
		assert.Equal(t, "2024-05-02", got.Start())
		assert.Equal(t, "2024-05-31", got.End())
	})

	t.Run("single day shifts back one day", func(t *testing.T) {
		primary := domain.NewDateRange("2024-03-15", "2024-03-15")
		got := ResolveComparison(primary, domain.ComparisonPreviousPeriod)
		assert.Equal(t, "2024-03-14", got.Start())
		assert.Equal(t, "2024-03-14", got.End())
	})

	t.Run("window length is preserved", func(t *testing.T) {
		primary := domain.NewDateRange("2024-02-01", "2024-02-29")
		got := ResolveComparison(primary, domain.ComparisonPreviousPeriod)
		require.True(t, got.IsResolved())
		start, _ := ParseDate(got.Start())
		end, _ := ParseDate(got.End())
		pStart, _ := ParseDate(primary.Start())
		assert.Equal(t, 28, daysBetween(start, end))
		assert.Equal(t, pStart.AddDate(0, 0, -1), end, "windows are contiguous")
	})
}

func TestResolveComparison_YearOverYear(t *testing.T) {
	t.Run("shifts both endpoints back one year", func(t *testing.T) {
		primary := domain.NewDateRange("2024-06-01", "2024-06-30")
		got := ResolveComparison(primary, domain.ComparisonYearOverYear)
		assert.Equal(t, "2023-06-01", got.Start())
		assert.Equal(t, "2023-06-30", got.End())
	})

	t.Run("leap day normalizes to March 1", func(t *testing.T) {
		primary := domain.NewDateRange("2024-02-29", "2024-02-29")
		got := ResolveComparison(primary, domain.ComparisonYearOverYear)
		assert.Equal(t, "2023-03-01", got.Start())
		assert.Equal(t, "2023-03-01", got.End())
	})

	t.Run("composes with a resolved frame", func(t *testing.T) {
		now := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)
		primary := Resolve(domain.TimeFrameCurrentMonth, now, nil)
		got := ResolveComparison(primary, domain.ComparisonYearOverYear)
		assert.Equal(t, "2023-02-01", got.Start())
		assert.Equal(t, "2023-03-01", got.End())
	})
}

func TestResolveComparison_Budget(t *testing.T) {
	primary := domain.NewDateRange("2024-04-01", "2024-04-30")
	got := ResolveComparison(primary, domain.ComparisonBudget)
	assert.Equal(t, primary.Start(), got.Start())
	assert.Equal(t, primary.End(), got.End())
}

func TestResolveComparison_Unresolved(t *testing.T) {
	tests := []struct {
		name    string
		primary domain.DateRange
		ct      domain.ComparisonType
	}{
		{"none comparison", domain.NewDateRange("2024-01-01", "2024-01-31"), domain.ComparisonNone},
		{"unknown comparison", domain.NewDateRange("2024-01-01", "2024-01-31"), domain.ComparisonType("sideways")},
		{"unresolved primary", domain.DateRange{}, domain.ComparisonPreviousPeriod},
		{"malformed start date", domain.NewDateRange("January 1", "2024-01-31"), domain.ComparisonYearOverYear},
		{"malformed end date", domain.NewDateRange("2024-01-01", "31/01/2024"), domain.ComparisonPreviousPeriod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveComparison(tt.primary, tt.ct)
			assert.False(t, got.IsResolved())
			assert.Nil(t, got.StartDate)
			assert.Nil(t, got.EndDate)
		})
	}
}

func TestParseDate(t *testing.T) {
	parsed, ok := ParseDate("2024-02-29")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), parsed)

	_, ok = ParseDate("2023-02-29")
	assert.False(t, ok, "non-leap February 29 must not parse")

	_, ok = ParseDate("20240229")
	assert.False(t, ok)
}

func TestFormatDate_DropsTimeOfDay(t *testing.T) {
	assert.Equal(t, "2024-12-31", FormatDate(time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC)))
}
