package domain

// TimeFrame is a symbolic, relative selector for a reporting period. It is
// resolved against a reference instant into a concrete DateRange.
type TimeFrame string

const (
	TimeFrameCurrentMonth    TimeFrame = "current_month"
	TimeFramePreviousMonth   TimeFrame = "previous_month"
	TimeFrameCurrentQuarter  TimeFrame = "current_quarter"
	TimeFramePreviousQuarter TimeFrame = "previous_quarter"
	TimeFrameCurrentYear     TimeFrame = "current_year"
	TimeFramePreviousYear    TimeFrame = "previous_year"
	TimeFrameLast30Days      TimeFrame = "last_30_days"
	TimeFrameLast60Days      TimeFrame = "last_60_days"
	TimeFrameLast90Days      TimeFrame = "last_90_days"
	TimeFrameCustom          TimeFrame = "custom"
)

// TimeFrames lists every declared time frame in display order.
var TimeFrames = []TimeFrame{
	TimeFrameCurrentMonth,
	TimeFramePreviousMonth,
	TimeFrameCurrentQuarter,
	TimeFramePreviousQuarter,
	TimeFrameCurrentYear,
	TimeFramePreviousYear,
	TimeFrameLast30Days,
	TimeFrameLast60Days,
	TimeFrameLast90Days,
	TimeFrameCustom,
}

var timeFrameLabels = map[TimeFrame]string{
	TimeFrameCurrentMonth:    "Current Month",
	TimeFramePreviousMonth:   "Previous Month",
	TimeFrameCurrentQuarter:  "Current Quarter",
	TimeFramePreviousQuarter: "Previous Quarter",
	TimeFrameCurrentYear:     "Current Year",
	TimeFramePreviousYear:    "Previous Year",
	TimeFrameLast30Days:      "Last 30 Days",
	TimeFrameLast60Days:      "Last 60 Days",
	TimeFrameLast90Days:      "Last 90 Days",
	TimeFrameCustom:          "Custom Range",
}

// Label returns the display name for the time frame.
func (tf TimeFrame) Label() string {
	if label, ok := timeFrameLabels[tf]; ok {
		return label
	}
	return string(tf)
}

// ComparisonType selects how a comparison range is derived from a primary range.
type ComparisonType string

const (
	ComparisonPreviousPeriod ComparisonType = "previous_period"
	ComparisonYearOverYear   ComparisonType = "year_over_year"
	ComparisonBudget         ComparisonType = "budget"
	ComparisonNone           ComparisonType = "none"
)

// ComparisonTypes lists every declared comparison type in display order.
var ComparisonTypes = []ComparisonType{
	ComparisonPreviousPeriod,
	ComparisonYearOverYear,
	ComparisonBudget,
	ComparisonNone,
}

var comparisonTypeLabels = map[ComparisonType]string{
	ComparisonPreviousPeriod: "Previous Period",
	ComparisonYearOverYear:   "Year Over Year",
	ComparisonBudget:         "Budget",
	ComparisonNone:           "None",
}

// Label returns the display name for the comparison type.
func (ct ComparisonType) Label() string {
	if label, ok := comparisonTypeLabels[ct]; ok {
		return label
	}
	return string(ct)
}

// DateRange is a pair of calendar dates in YYYY-MM-DD form. Both fields are
// nil when the range is unresolved; a range is never half-resolved.
type DateRange struct {
	StartDate *string
	EndDate   *string
}

// NewDateRange builds a resolved range from two calendar-date strings.
func NewDateRange(start, end string) DateRange {
	return DateRange{StartDate: &start, EndDate: &end}
}

// IsResolved reports whether both endpoints are present.
func (r DateRange) IsResolved() bool {
	return r.StartDate != nil && r.EndDate != nil
}

// Start returns the start date string, or "" for an unresolved range.
func (r DateRange) Start() string {
	if r.StartDate == nil {
		return ""
	}
	return *r.StartDate
}

// End returns the end date string, or "" for an unresolved range.
func (r DateRange) End() string {
	if r.EndDate == nil {
		return ""
	}
	return *r.EndDate
}
