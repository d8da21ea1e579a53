package store

import "time"

type MetricStats struct {
	RecordsCount     int64
	FirstServiceDate *time.Time
}

// ClaimRecord is one row of the claim_metrics table, the grain every report
// aggregates over. ClaimID is the primary key, so re-importing an overlapping
// window replaces rows instead of duplicating them.
type ClaimRecord struct {
	ClaimID          string
	ProgramID        string
	PayerID          string
	FacilityID       string
	ServiceTypeID    string
	ServiceDate      time.Time
	BilledAmount     float64
	AllowedAmount    float64
	PaidAmount       float64
	AdjustmentAmount float64
	Denied           bool
	DenialReason     string
	ProcessingDays   int
	Status           string
}

// GroupAggregate is one grouped row of an aggregation query. Key holds the
// value of the group_by column.
type GroupAggregate struct {
	Key               string
	ClaimCount        int64
	BilledAmount      float64
	AllowedAmount     float64
	PaidAmount        float64
	AdjustmentAmount  float64
	DeniedCount       int64
	AvgProcessingDays float64
}

// PeriodAggregate is the single-row rollup of a date window.
type PeriodAggregate struct {
	ClaimCount        int64
	BilledAmount      float64
	AllowedAmount     float64
	PaidAmount        float64
	AdjustmentAmount  float64
	DeniedCount       int64
	AvgProcessingDays float64
}
