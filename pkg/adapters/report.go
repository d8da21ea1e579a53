package adapters

import (
	"github.com/rcm-tools/revenue-atlas/pkg/models/api"
	"github.com/rcm-tools/revenue-atlas/pkg/models/domain"
	"github.com/rcm-tools/revenue-atlas/pkg/services/params"
)

func MapTimePeriodDomainToApi(p domain.TimePeriod) api.TimePeriod {
	return api.TimePeriod{
		Start:    p.Start,
		End:      p.End,
		Duration: p.Duration,
	}
}

func MapReportDetailDomainToApi(d domain.ReportDetail) api.ReportDetail {
	return api.ReportDetail{
		Name:        d.Name,
		Value:       d.Value,
		Unit:        d.Unit,
		Description: d.Description,
	}
}

func MapReportSectionDomainToApi(s domain.ReportSection) api.ReportSection {
	res := api.ReportSection{
		Title:   s.Title,
		Summary: map[string]interface{}{},
		Details: make([]api.ReportDetail, 0, len(s.Details)),
	}
	for k, v := range s.Summary {
		res.Summary[k] = v
	}
	for _, d := range s.Details {
		res.Details = append(res.Details, MapReportDetailDomainToApi(d))
	}
	return res
}

func MapReportDomainToApi(r domain.Report) api.Report {
	res := api.Report{
		Title:       r.Title,
		ReportType:  string(r.Type),
		Period:      MapTimePeriodDomainToApi(r.Period),
		Sections:    make([]api.ReportSection, 0, len(r.Sections)),
		TotalAmount: r.TotalAmount,
		Currency:    r.Currency,
		GeneratedAt: r.GeneratedAt,
	}
	if r.Comparison != nil {
		period := MapTimePeriodDomainToApi(*r.Comparison)
		res.Comparison = &period
	}
	for _, s := range r.Sections {
		res.Sections = append(res.Sections, MapReportSectionDomainToApi(s))
	}
	return res
}

// MapReportCatalogToApi renders the closed enumerations with their display
// labels for the report picker.
func MapReportCatalogToApi() api.ReportCatalog {
	catalog := api.ReportCatalog{
		Types:           make([]api.ReportTypeOption, 0, len(domain.ReportTypes)),
		TimeFrames:      make([]api.Option, 0, len(domain.TimeFrames)),
		ComparisonTypes: make([]api.Option, 0, len(domain.ComparisonTypes)),
	}
	for _, rt := range domain.ReportTypes {
		groupBy, sortBy := params.DefaultGrouping(rt)
		catalog.Types = append(catalog.Types, api.ReportTypeOption{
			Id:      string(rt),
			Label:   rt.Label(),
			GroupBy: groupBy,
			SortBy:  sortBy,
		})
	}
	for _, tf := range domain.TimeFrames {
		catalog.TimeFrames = append(catalog.TimeFrames, api.Option{Id: string(tf), Label: tf.Label()})
	}
	for _, ct := range domain.ComparisonTypes {
		catalog.ComparisonTypes = append(catalog.ComparisonTypes, api.Option{Id: string(ct), Label: ct.Label()})
	}
	return catalog
}
