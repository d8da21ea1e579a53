package api

import "time"

// Option is one selectable catalog entry: the wire value plus its display label.
type Option struct {
	Id    string `json:"id"`
	Label string `json:"label"`
}

// ReportTypeOption extends Option with the default grouping of the type, so
// the picker can preselect sensible dimensions.
type ReportTypeOption struct {
	Id      string `json:"id"`
	Label   string `json:"label"`
	GroupBy string `json:"group_by,omitempty"`
	SortBy  string `json:"sort_by,omitempty"`
}

// ReportCatalog lists everything the configuration UI needs to render the
// report picker.
type ReportCatalog struct {
	Types           []ReportTypeOption `json:"types"`
	TimeFrames      []Option           `json:"time_frames"`
	ComparisonTypes []Option           `json:"comparison_types"`
}

// DateRange is a pair of calendar dates in YYYY-MM-DD form. Both fields are
// null together when the range is unresolved.
type DateRange struct {
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
}

type ReportParameters struct {
	TimeFrame           string                 `json:"time_frame"`
	DateRange           DateRange              `json:"date_range"`
	ComparisonType      string                 `json:"comparison_type"`
	ComparisonDateRange DateRange              `json:"comparison_date_range"`
	ProgramIds          []string               `json:"program_ids"`
	PayerIds            []string               `json:"payer_ids"`
	FacilityIds         []string               `json:"facility_ids"`
	ServiceTypeIds      []string               `json:"service_type_ids"`
	GroupBy             string                 `json:"group_by"`
	SortBy              string                 `json:"sort_by"`
	Limit               int                    `json:"limit"`
	CustomParameters    map[string]interface{} `json:"custom_parameters"`
}

// ResolveParametersRequest asks for the default parameters of a report type,
// optionally overriding the time frame and comparison before resolution.
type ResolveParametersRequest struct {
	ReportType     string     `json:"report_type"`
	TimeFrame      *string    `json:"time_frame,omitempty"`
	ComparisonType *string    `json:"comparison_type,omitempty"`
	CustomRange    *DateRange `json:"custom_range,omitempty"`
}

type GenerateReportRequest struct {
	ReportType string            `json:"report_type"`
	Parameters *ReportParameters `json:"parameters,omitempty"`
}

type TimePeriod struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Duration int       `json:"duration_days"`
}

type ReportDetail struct {
	Name        string      `json:"name"`
	Value       interface{} `json:"value"`
	Unit        string      `json:"unit,omitempty"`
	Description string      `json:"description,omitempty"`
}

type ReportSection struct {
	Title   string                 `json:"title"`
	Summary map[string]interface{} `json:"summary"`
	Details []ReportDetail         `json:"details"`
}

type Report struct {
	Title       string          `json:"title"`
	ReportType  string          `json:"report_type"`
	Period      TimePeriod      `json:"period"`
	Comparison  *TimePeriod     `json:"comparison,omitempty"`
	Sections    []ReportSection `json:"sections"`
	TotalAmount float64         `json:"total_amount"`
	Currency    string          `json:"currency"`
	GeneratedAt time.Time       `json:"generated_at"`
}
