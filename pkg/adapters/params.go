package adapters

import (
	"maps"

	"github.com/rcm-tools/revenue-atlas/pkg/models/api"
	"github.com/rcm-tools/revenue-atlas/pkg/models/domain"
)

func MapDateRangeDomainToApi(r domain.DateRange) api.DateRange {
	return api.DateRange{
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
	}
}

func MapDateRangeApiToDomain(r api.DateRange) domain.DateRange {
	return domain.DateRange{
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
	}
}

func MapReportParametersDomainToApi(p domain.ReportParameters) api.ReportParameters {
	return api.ReportParameters{
		TimeFrame:           string(p.TimeFrame),
		DateRange:           MapDateRangeDomainToApi(p.DateRange),
		ComparisonType:      string(p.ComparisonType),
		ComparisonDateRange: MapDateRangeDomainToApi(p.ComparisonDateRange),
		ProgramIds:          append([]string{}, p.ProgramIDs...),
		PayerIds:            append([]string{}, p.PayerIDs...),
		FacilityIds:         append([]string{}, p.FacilityIDs...),
		ServiceTypeIds:      append([]string{}, p.ServiceTypeIDs...),
		GroupBy:             p.GroupBy,
		SortBy:              p.SortBy,
		Limit:               p.Limit,
		CustomParameters:    maps.Clone(p.CustomParameters),
	}
}

func MapReportParametersApiToDomain(p api.ReportParameters) domain.ReportParameters {
	return domain.ReportParameters{
		TimeFrame:           domain.TimeFrame(p.TimeFrame),
		DateRange:           MapDateRangeApiToDomain(p.DateRange),
		ComparisonType:      domain.ComparisonType(p.ComparisonType),
		ComparisonDateRange: MapDateRangeApiToDomain(p.ComparisonDateRange),
		ProgramIDs:          append([]string{}, p.ProgramIds...),
		PayerIDs:            append([]string{}, p.PayerIds...),
		FacilityIDs:         append([]string{}, p.FacilityIds...),
		ServiceTypeIDs:      append([]string{}, p.ServiceTypeIds...),
		GroupBy:             p.GroupBy,
		SortBy:              p.SortBy,
		Limit:               p.Limit,
		CustomParameters:    maps.Clone(p.CustomParameters),
	}
}
