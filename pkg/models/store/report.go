package store

import "time"

// ReportDefinitionRecord persists a saved report definition. Parameters is
// the JSON encoding of the full parameter set.
type ReportDefinitionRecord struct {
	ID          string
	Name        string
	Description string
	ReportType  string
	Parameters  string
	System      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type ScheduleRecord struct {
	ID           string
	DefinitionID string
	Frequency    string
	HourUTC      int
	Weekday      int
	DayOfMonth   int
	Active       bool
	NextRunAt    time.Time
	LastRunAt    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type ReportRunRecord struct {
	ID          string
	ReportType  string
	ScheduleID  string
	Parameters  string
	Status      string
	Error       *string
	StartedAt   time.Time
	CompletedAt *time.Time
}
