package api

import "time"

type ReportDefinition struct {
	Id          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	ReportType  string           `json:"report_type"`
	Parameters  ReportParameters `json:"parameters"`
	System      bool             `json:"system"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// SaveDefinitionRequest creates or updates a saved report definition. Omitted
// parameters fall back to the defaults of the report type.
type SaveDefinitionRequest struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	ReportType  string            `json:"report_type"`
	Parameters  *ReportParameters `json:"parameters,omitempty"`
}

type Schedule struct {
	Id           string     `json:"id"`
	DefinitionId string     `json:"definition_id"`
	Frequency    string     `json:"frequency"`
	HourUTC      int        `json:"hour_utc"`
	Weekday      int        `json:"weekday"`
	DayOfMonth   int        `json:"day_of_month"`
	Active       bool       `json:"active"`
	NextRunAt    time.Time  `json:"next_run_at"`
	LastRunAt    *time.Time `json:"last_run_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type SaveScheduleRequest struct {
	DefinitionId string `json:"definition_id"`
	Frequency    string `json:"frequency"`
	HourUTC      int    `json:"hour_utc"`
	Weekday      int    `json:"weekday"`
	DayOfMonth   int    `json:"day_of_month"`
	Active       *bool  `json:"active,omitempty"`
}

type ReportRun struct {
	Id          string           `json:"id"`
	ReportType  string           `json:"report_type"`
	ScheduleId  string           `json:"schedule_id,omitempty"`
	Parameters  ReportParameters `json:"parameters"`
	Status      string           `json:"status"`
	Error       *string          `json:"error,omitempty"`
	StartedAt   time.Time        `json:"started_at"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
}
