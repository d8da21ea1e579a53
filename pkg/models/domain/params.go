package domain

import "maps"

// ReportParameters carries everything needed to run a report: the reporting
// window, the comparison window, dimension filters, grouping and row limit.
// Instances returned by the defaulter are independent copies; callers may
// mutate them freely before handing them to the generation boundary.
type ReportParameters struct {
	TimeFrame           TimeFrame
	DateRange           DateRange
	ComparisonType      ComparisonType
	ComparisonDateRange DateRange
	ProgramIDs          []string
	PayerIDs            []string
	FacilityIDs         []string
	ServiceTypeIDs      []string
	GroupBy             string
	SortBy              string
	Limit               int
	CustomParameters    map[string]interface{}
}

// Clone returns an independent copy safe for the caller to mutate.
func (p ReportParameters) Clone() ReportParameters {
	out := p
	out.ProgramIDs = append([]string{}, p.ProgramIDs...)
	out.PayerIDs = append([]string{}, p.PayerIDs...)
	out.FacilityIDs = append([]string{}, p.FacilityIDs...)
	out.ServiceTypeIDs = append([]string{}, p.ServiceTypeIDs...)
	out.CustomParameters = maps.Clone(p.CustomParameters)
	return out
}
