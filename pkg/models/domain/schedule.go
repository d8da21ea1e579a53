package domain

import "time"

// ScheduleFrequency selects the recurrence rule for a schedule.
type ScheduleFrequency string

const (
	FrequencyDaily     ScheduleFrequency = "daily"
	FrequencyWeekly    ScheduleFrequency = "weekly"
	FrequencyMonthly   ScheduleFrequency = "monthly"
	FrequencyQuarterly ScheduleFrequency = "quarterly"
)

// ScheduleFrequencies lists every declared frequency in display order.
var ScheduleFrequencies = []ScheduleFrequency{
	FrequencyDaily,
	FrequencyWeekly,
	FrequencyMonthly,
	FrequencyQuarterly,
}

// Schedule describes recurring generation of a report definition. Fire times
// are computed in UTC; DayOfMonth is clamped to the target month's length.
type Schedule struct {
	ID           string
	DefinitionID string
	Frequency    ScheduleFrequency
	HourUTC      int
	Weekday      time.Weekday
	DayOfMonth   int
	Active       bool
	NextRunAt    time.Time
	LastRunAt    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RunStatus tracks a report run through its lifecycle.
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// ReportRun records one execution of a report, ad hoc or scheduled.
type ReportRun struct {
	ID          string
	Type        ReportType
	ScheduleID  string
	Parameters  ReportParameters
	Status      RunStatus
	Error       *string
	StartedAt   time.Time
	CompletedAt *time.Time
}
