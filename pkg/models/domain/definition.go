package domain

import "time"

// ReportDefinition is a named, reusable template pairing a report type with
// saved parameters. Symbolic time frames stay symbolic in the definition;
// resolution happens when a report is generated from it.
type ReportDefinition struct {
	ID          string
	Name        string
	Description string
	Type        ReportType
	Parameters  ReportParameters
	System      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
