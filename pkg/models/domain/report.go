package domain

import "time"

// ReportType identifies one of the product's analytical report shapes.
type ReportType string

const (
	ReportTypeRevenueSummary     ReportType = "revenue_summary"
	ReportTypeAgingAR            ReportType = "aging_accounts_receivable"
	ReportTypePayerPerformance   ReportType = "payer_performance"
	ReportTypeDenialAnalysis     ReportType = "denial_analysis"
	ReportTypeProgramUtilization ReportType = "program_utilization"
	ReportTypeServiceLine        ReportType = "service_line_profitability"
	ReportTypeCollections        ReportType = "collections_summary"
	ReportTypeCustom             ReportType = "custom"
)

// ReportTypes lists every declared report type in display order.
var ReportTypes = []ReportType{
	ReportTypeRevenueSummary,
	ReportTypeAgingAR,
	ReportTypePayerPerformance,
	ReportTypeDenialAnalysis,
	ReportTypeProgramUtilization,
	ReportTypeServiceLine,
	ReportTypeCollections,
	ReportTypeCustom,
}

var reportTypeLabels = map[ReportType]string{
	ReportTypeRevenueSummary:     "Revenue Summary",
	ReportTypeAgingAR:            "Aging Accounts Receivable",
	ReportTypePayerPerformance:   "Payer Performance",
	ReportTypeDenialAnalysis:     "Denial Analysis",
	ReportTypeProgramUtilization: "Program Utilization",
	ReportTypeServiceLine:        "Service Line Profitability",
	ReportTypeCollections:        "Collections Summary",
	ReportTypeCustom:             "Custom Report",
}

// Label returns the display name for the report type.
func (rt ReportType) Label() string {
	if label, ok := reportTypeLabels[rt]; ok {
		return label
	}
	return string(rt)
}

// Report represents a complete generated report
type Report struct {
	Title       string
	Type        ReportType
	Period      TimePeriod
	Comparison  *TimePeriod
	Sections    []ReportSection
	TotalAmount float64
	Currency    string
	GeneratedAt time.Time
}

// TimePeriod represents a time range for the report
type TimePeriod struct {
	Start    time.Time
	End      time.Time
	Duration int // in days
}

// ReportSection represents a logical section in the report
type ReportSection struct {
	Title   string
	Summary map[string]interface{}
	Details []ReportDetail
}

// ReportDetail represents detailed information within a section
type ReportDetail struct {
	Name        string
	Value       interface{}
	Unit        string
	Description string
}
