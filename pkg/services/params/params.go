// Package params owns the construction of default report parameters. Each
// report type maps to a partial override applied on top of a shared base, so
// a new type cannot ship without an explicit entry in the table.
package params

import (
	"time"

	"github.com/rcm-tools/revenue-atlas/pkg/models/domain"
	"github.com/rcm-tools/revenue-atlas/pkg/services/timeframe"
)

// DefaultLimit caps row-oriented report sections unless the caller overrides it.
const DefaultLimit = 10

// override is the partial record applied on top of the base parameters for
// one report type. Zero-value fields leave the base value in place.
type override struct {
	timeFrame domain.TimeFrame
	groupBy   string
	sortBy    string
	flags     map[string]interface{}
}

// overrides carries an entry for every declared report type, custom included.
// The coverage test in this package fails when a type is missing.
var overrides = map[domain.ReportType]override{
	domain.ReportTypeRevenueSummary: {
		groupBy: "program",
		sortBy:  "revenue",
	},
	domain.ReportTypeAgingAR: {
		timeFrame: domain.TimeFrameCurrentMonth,
		groupBy:   "aging_bucket",
		sortBy:    "balance",
		flags: map[string]interface{}{
			"includePayers":   true,
			"includePrograms": true,
		},
	},
	domain.ReportTypePayerPerformance: {
		groupBy: "payer",
		sortBy:  "collection_rate",
		flags: map[string]interface{}{
			"includeProcessingTime": true,
			"includeDenialRate":     true,
			"includePaymentRate":    true,
		},
	},
	domain.ReportTypeDenialAnalysis: {
		groupBy: "denial_reason",
		sortBy:  "count",
		flags: map[string]interface{}{
			"includePayerBreakdown": true,
		},
	},
	domain.ReportTypeProgramUtilization: {
		groupBy: "program",
		sortBy:  "utilization",
	},
	domain.ReportTypeServiceLine: {
		groupBy: "service_line",
		sortBy:  "margin",
	},
	domain.ReportTypeCollections: {
		groupBy: "facility",
		sortBy:  "collected",
	},
	domain.ReportTypeCustom: {},
}

// DefaultGrouping returns the default group and sort dimensions of a report
// type. Custom and unknown types have none.
func DefaultGrouping(rt domain.ReportType) (groupBy, sortBy string) {
	o := overrides[rt]
	return o.groupBy, o.sortBy
}

// Defaults builds the complete default parameter set for a report type,
// anchored at now. Every call returns an independent value with fresh slices
// and maps, safe for the caller to mutate. Unknown types get the base
// parameters, same as custom.
func Defaults(rt domain.ReportType, now time.Time) domain.ReportParameters {
	p := base(now)
	o, ok := overrides[rt]
	if !ok {
		return p
	}
	if o.timeFrame != "" {
		p.TimeFrame = o.timeFrame
		p.DateRange = timeframe.Resolve(o.timeFrame, now, nil)
		p.ComparisonDateRange = timeframe.ResolveComparison(p.DateRange, p.ComparisonType)
	}
	if o.groupBy != "" {
		p.GroupBy = o.groupBy
	}
	if o.sortBy != "" {
		p.SortBy = o.sortBy
	}
	for k, v := range o.flags {
		p.CustomParameters[k] = v
	}
	return p
}

func base(now time.Time) domain.ReportParameters {
	r := timeframe.Resolve(domain.TimeFrameCurrentMonth, now, nil)
	return domain.ReportParameters{
		TimeFrame:           domain.TimeFrameCurrentMonth,
		DateRange:           r,
		ComparisonType:      domain.ComparisonPreviousPeriod,
		ComparisonDateRange: timeframe.ResolveComparison(r, domain.ComparisonPreviousPeriod),
		ProgramIDs:          []string{},
		PayerIDs:            []string{},
		FacilityIDs:         []string{},
		ServiceTypeIDs:      []string{},
		Limit:               DefaultLimit,
		CustomParameters:    map[string]interface{}{},
	}
}
