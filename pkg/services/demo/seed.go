// Package demo generates a deterministic sample dataset so reports can be
// explored without a warehouse connection.
package demo

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/rcm-tools/revenue-atlas/pkg/models/domain"
	"github.com/rcm-tools/revenue-atlas/pkg/models/store"
	"github.com/rcm-tools/revenue-atlas/pkg/store/duckdb"
	"github.com/rcm-tools/revenue-atlas/pkg/store/duckdb/metrics"
)

const (
	defaultDays         = 90
	defaultClaimsPerDay = 6
)

// Options size the generated dataset. Zero values fall back to defaults;
// Anchor is the last service date of the generated window.
type Options struct {
	Days         int
	ClaimsPerDay int
	Anchor       time.Time
	Seed         int64
}

// Summary reports what was written.
type Summary struct {
	Claims   int
	Programs map[string]int
}

var (
	programs      = []string{"detox", "residential", "php", "iop", "outpatient"}
	payers        = []string{"aetna", "bcbs", "cigna", "medicaid", "united"}
	facilities    = []string{"lakeside", "main-campus", "north-clinic"}
	serviceTypes  = []string{"case_mgmt", "lab", "room_board", "therapy"}
	denialReasons = []string{"coordination_of_benefits", "missing_authorization", "non_covered_service", "untimely_filing"}
)

// Seed writes a synthetic claim history ending at the anchor date. Claim ids
// are derived from the record index, so reseeding with the same options
// replaces the previous dataset instead of growing it.
func Seed(ctx context.Context, db *sql.DB, metricStore metrics.Store, opts Options) (Summary, error) {
	if db == nil {
		return Summary{}, fmt.Errorf("database connection is nil")
	}
	if metricStore == nil {
		return Summary{}, fmt.Errorf("metric store is nil")
	}

	if opts.Days <= 0 {
		opts.Days = defaultDays
	}
	if opts.ClaimsPerDay <= 0 {
		opts.ClaimsPerDay = defaultClaimsPerDay
	}
	if opts.Anchor.IsZero() {
		opts.Anchor = time.Now().UTC()
	}
	anchor := time.Date(opts.Anchor.Year(), opts.Anchor.Month(), opts.Anchor.Day(), 0, 0, 0, 0, time.UTC)

	rng := rand.New(rand.NewSource(opts.Seed))
	summary := Summary{Programs: make(map[string]int)}
	records := make([]store.ClaimRecord, 0, opts.Days*opts.ClaimsPerDay)

	for day := 0; day < opts.Days; day++ {
		serviceDate := anchor.AddDate(0, 0, -(opts.Days - 1 - day))
		for i := 0; i < opts.ClaimsPerDay; i++ {
			record := makeClaim(rng, len(records), serviceDate)
			records = append(records, record)
			summary.Programs[record.ProgramID]++
		}
	}
	summary.Claims = len(records)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	txCtx := duckdb.WithTransaction(ctx, tx)
	if err := metricStore.Add(txCtx, records); err != nil {
		return Summary{}, fmt.Errorf("failed to store demo claims: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Summary{}, fmt.Errorf("failed to commit demo claims: %w", err)
	}
	return summary, nil
}

func makeClaim(rng *rand.Rand, index int, serviceDate time.Time) store.ClaimRecord {
	billed := roundCents(250 + rng.Float64()*1750)
	allowed := roundCents(billed * (0.55 + rng.Float64()*0.35))

	record := store.ClaimRecord{
		ClaimID:          fmt.Sprintf("demo-%05d", index),
		ProgramID:        programs[rng.Intn(len(programs))],
		PayerID:          payers[rng.Intn(len(payers))],
		FacilityID:       facilities[rng.Intn(len(facilities))],
		ServiceTypeID:    serviceTypes[rng.Intn(len(serviceTypes))],
		ServiceDate:      serviceDate,
		BilledAmount:     billed,
		AllowedAmount:    allowed,
		AdjustmentAmount: roundCents(billed - allowed),
		ProcessingDays:   5 + rng.Intn(40),
	}

	switch roll := rng.Float64(); {
	case roll < 0.12:
		record.Denied = true
		record.DenialReason = denialReasons[rng.Intn(len(denialReasons))]
		record.Status = string(domain.ClaimStatusDenied)
	case roll < 0.82:
		record.PaidAmount = roundCents(allowed * (0.7 + rng.Float64()*0.3))
		record.Status = string(domain.ClaimStatusPaid)
	default:
		record.Status = string(domain.ClaimStatusPending)
	}
	return record
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
