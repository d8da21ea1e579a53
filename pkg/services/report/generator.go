package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rcm-tools/revenue-atlas/pkg/models/domain"
	"github.com/rcm-tools/revenue-atlas/pkg/models/store"
	"github.com/rcm-tools/revenue-atlas/pkg/services/timeframe"
	"github.com/rcm-tools/revenue-atlas/pkg/store/duckdb/metrics"
)

const reportCurrency = "USD"

// ErrInvalidRange marks reports asked for over a window that never resolved
// to two parseable dates. Handlers turn it into a client error.
var ErrInvalidRange = errors.New("invalid date range")

// Generator aggregates claim metrics into a rendered report. It keeps no
// state between calls; every report is computed from the store at call time.
type Generator struct {
	metrics metrics.Store
}

func NewGenerator(metricStore metrics.Store) (*Generator, error) {
	if metricStore == nil {
		return nil, fmt.Errorf("metric store is nil")
	}
	return &Generator{
		metrics: metricStore,
	}, nil
}

var groupTitles = map[string]string{
	"program":       "By Program",
	"payer":         "By Payer",
	"facility":      "By Facility",
	"service_line":  "By Service Line",
	"service_type":  "By Service Type",
	"denial_reason": "By Denial Reason",
	"aging_bucket":  "Aging Buckets",
	"status":        "By Status",
}

// Generate builds the report for one parameter set. The primary date range
// must be resolved; an unresolved comparison range simply omits the
// comparison section.
func (g *Generator) Generate(
	ctx context.Context,
	rt domain.ReportType,
	params domain.ReportParameters,
	now time.Time,
) (*domain.Report, error) {
	start, end, err := periodBounds(params.DateRange)
	if err != nil {
		return nil, err
	}

	q := buildQuery(params, start, end)
	if rt == domain.ReportTypeDenialAnalysis {
		q.DeniedOnly = true
	}

	totals, err := g.metrics.PeriodTotals(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate period totals: %w", err)
	}

	report := &domain.Report{
		Title:       fmt.Sprintf("%s (%s to %s)", rt.Label(), params.DateRange.Start(), params.DateRange.End()),
		Type:        rt,
		Period:      domain.TimePeriod{Start: start, End: end, Duration: inclusiveDays(start, end)},
		Currency:    reportCurrency,
		GeneratedAt: now,
		TotalAmount: totals.PaidAmount,
	}
	if rt == domain.ReportTypeAgingAR {
		report.TotalAmount = totals.BilledAmount - totals.PaidAmount
	}

	report.Sections = append(report.Sections, summarySection(totals, params))

	if params.ComparisonDateRange.IsResolved() {
		section, period, err := g.comparisonSection(ctx, q, totals, params)
		if err != nil {
			return nil, err
		}
		report.Comparison = period
		report.Sections = append(report.Sections, section)
	}

	groups, err := g.metrics.GroupTotals(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate group totals: %w", err)
	}
	title, ok := groupTitles[params.GroupBy]
	if !ok {
		title = "Breakdown"
	}
	report.Sections = append(report.Sections, groupSection(title, rt, groups))

	extras, err := g.flagSections(ctx, rt, q, params)
	if err != nil {
		return nil, err
	}
	report.Sections = append(report.Sections, extras...)

	return report, nil
}

// flagSections renders the additional breakdowns a report type opts into
// through its custom parameter flags.
func (g *Generator) flagSections(
	ctx context.Context,
	rt domain.ReportType,
	q metrics.Query,
	params domain.ReportParameters,
) ([]domain.ReportSection, error) {
	type extra struct {
		flag    string
		title   string
		groupBy string
	}

	var candidates []extra
	switch rt {
	case domain.ReportTypeDenialAnalysis:
		candidates = []extra{
			{flag: "includePayerBreakdown", title: "Denials by Payer", groupBy: "payer"},
		}
	case domain.ReportTypeAgingAR:
		candidates = []extra{
			{flag: "includePayers", title: "Outstanding by Payer", groupBy: "payer"},
			{flag: "includePrograms", title: "Outstanding by Program", groupBy: "program"},
		}
	}

	var sections []domain.ReportSection
	for _, c := range candidates {
		if !flagEnabled(params.CustomParameters, c.flag) {
			continue
		}
		eq := q
		eq.GroupBy = c.groupBy
		groups, err := g.metrics.GroupTotals(ctx, eq)
		if err != nil {
			return nil, fmt.Errorf("failed to aggregate %q section: %w", c.title, err)
		}
		sections = append(sections, groupSection(c.title, rt, groups))
	}
	return sections, nil
}

func (g *Generator) comparisonSection(
	ctx context.Context,
	q metrics.Query,
	current store.PeriodAggregate,
	params domain.ReportParameters,
) (domain.ReportSection, *domain.TimePeriod, error) {
	compStart, compEnd, err := periodBounds(params.ComparisonDateRange)
	if err != nil {
		return domain.ReportSection{}, nil, err
	}

	cq := q
	cq.Start = compStart
	cq.End = compEnd
	cq.AsOf = compEnd

	previous, err := g.metrics.PeriodTotals(ctx, cq)
	if err != nil {
		return domain.ReportSection{}, nil, fmt.Errorf("failed to aggregate comparison totals: %w", err)
	}

	period := &domain.TimePeriod{Start: compStart, End: compEnd, Duration: inclusiveDays(compStart, compEnd)}
	section := domain.ReportSection{
		Title: fmt.Sprintf("Versus %s", params.ComparisonType.Label()),
		Summary: map[string]interface{}{
			"claim_count":          previous.ClaimCount,
			"billed_amount":        previous.BilledAmount,
			"paid_amount":          previous.PaidAmount,
			"denied_count":         previous.DeniedCount,
			"claim_count_change":   pctChange(float64(current.ClaimCount), float64(previous.ClaimCount)),
			"billed_amount_change": pctChange(current.BilledAmount, previous.BilledAmount),
			"paid_amount_change":   pctChange(current.PaidAmount, previous.PaidAmount),
		},
		Details: []domain.ReportDetail{},
	}
	return section, period, nil
}

func summarySection(totals store.PeriodAggregate, params domain.ReportParameters) domain.ReportSection {
	summary := map[string]interface{}{
		"claim_count":       totals.ClaimCount,
		"billed_amount":     totals.BilledAmount,
		"allowed_amount":    totals.AllowedAmount,
		"paid_amount":       totals.PaidAmount,
		"adjustment_amount": totals.AdjustmentAmount,
		"denied_count":      totals.DeniedCount,
		"collection_rate":   ratio(totals.PaidAmount, totals.BilledAmount),
	}

	if flagEnabled(params.CustomParameters, "includeProcessingTime") {
		summary["avg_processing_days"] = totals.AvgProcessingDays
	}
	if flagEnabled(params.CustomParameters, "includeDenialRate") {
		summary["denial_rate"] = ratio(float64(totals.DeniedCount), float64(totals.ClaimCount))
	}
	if flagEnabled(params.CustomParameters, "includePaymentRate") {
		summary["payment_rate"] = ratio(totals.PaidAmount, totals.AllowedAmount)
	}

	return domain.ReportSection{
		Title:   "Period Summary",
		Summary: summary,
		Details: []domain.ReportDetail{},
	}
}

func groupSection(title string, rt domain.ReportType, groups []store.GroupAggregate) domain.ReportSection {
	details := make([]domain.ReportDetail, 0, len(groups))
	for _, group := range groups {
		details = append(details, groupDetail(rt, group))
	}
	return domain.ReportSection{
		Title:   title,
		Summary: map[string]interface{}{"group_count": len(groups)},
		Details: details,
	}
}

// groupDetail picks the headline value for one aggregate row. Denial reports
// lead with counts, aging reports with the open balance, everything else
// with collected revenue.
func groupDetail(rt domain.ReportType, group store.GroupAggregate) domain.ReportDetail {
	detail := domain.ReportDetail{
		Name:        group.Key,
		Unit:        reportCurrency,
		Description: fmt.Sprintf("%d claims", group.ClaimCount),
	}

	switch rt {
	case domain.ReportTypeDenialAnalysis:
		detail.Value = group.DeniedCount
		detail.Unit = "claims"
		detail.Description = fmt.Sprintf("%.2f %s billed", group.BilledAmount, reportCurrency)
	case domain.ReportTypeAgingAR:
		detail.Value = group.BilledAmount - group.PaidAmount
	case domain.ReportTypeProgramUtilization:
		detail.Value = group.ClaimCount
		detail.Unit = "claims"
		detail.Description = fmt.Sprintf("%.2f %s collected", group.PaidAmount, reportCurrency)
	case domain.ReportTypeServiceLine:
		detail.Value = group.PaidAmount - group.AdjustmentAmount
	default:
		detail.Value = group.PaidAmount
	}
	return detail
}

func buildQuery(params domain.ReportParameters, start, end time.Time) metrics.Query {
	return metrics.Query{
		Start:          start,
		End:            end,
		ProgramIDs:     params.ProgramIDs,
		PayerIDs:       params.PayerIDs,
		FacilityIDs:    params.FacilityIDs,
		ServiceTypeIDs: params.ServiceTypeIDs,
		GroupBy:        params.GroupBy,
		SortBy:         params.SortBy,
		Limit:          params.Limit,
		AsOf:           end,
	}
}

func periodBounds(r domain.DateRange) (time.Time, time.Time, error) {
	if !r.IsResolved() {
		return time.Time{}, time.Time{}, fmt.Errorf("date range is not resolved: %w", ErrInvalidRange)
	}
	start, ok := timeframe.ParseDate(r.Start())
	if !ok {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start date %q: %w", r.Start(), ErrInvalidRange)
	}
	end, ok := timeframe.ParseDate(r.End())
	if !ok {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end date %q: %w", r.End(), ErrInvalidRange)
	}
	return start, end, nil
}

func inclusiveDays(start, end time.Time) int {
	return int(end.Sub(start)/(24*time.Hour)) + 1
}

func ratio(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

func pctChange(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return (current - previous) / previous * 100
}

func flagEnabled(custom map[string]interface{}, key string) bool {
	value, ok := custom[key]
	if !ok {
		return false
	}
	enabled, ok := value.(bool)
	return ok && enabled
}
