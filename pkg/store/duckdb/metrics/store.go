package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rcm-tools/revenue-atlas/pkg/models/store"
	"github.com/rcm-tools/revenue-atlas/pkg/store/duckdb"
)

// Query narrows an aggregation to a service-date window plus optional entity
// filters. GroupBy and SortBy are symbolic keys resolved against fixed
// expression tables, never raw SQL.
type Query struct {
	Start          time.Time
	End            time.Time
	ProgramIDs     []string
	PayerIDs       []string
	FacilityIDs    []string
	ServiceTypeIDs []string
	DeniedOnly     bool
	GroupBy        string
	SortBy         string
	Limit          int
	// AsOf anchors aging buckets; only consulted when GroupBy is aging_bucket.
	AsOf time.Time
}

type Store interface {
	Add(ctx context.Context, records []store.ClaimRecord) error
	GroupTotals(ctx context.Context, q Query) ([]store.GroupAggregate, error)
	PeriodTotals(ctx context.Context, q Query) (store.PeriodAggregate, error)
	GetStats(ctx context.Context, since *time.Time) (*store.MetricStats, error)
}

type metricStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &metricStore{
		db: db,
	}, nil
}

var groupExpressions = map[string]string{
	"program":       "program_id",
	"payer":         "payer_id",
	"facility":      "facility_id",
	"service_line":  "service_type_id",
	"service_type":  "service_type_id",
	"denial_reason": "denial_reason",
	"status":        "status",
}

// agingBucketExpr buckets claims by days outstanding relative to the as-of
// date. The same date parameter repeats once per branch.
const agingBucketExpr = `CASE
		WHEN date_diff('day', service_date, CAST(? AS DATE)) <= 30 THEN '0-30'
		WHEN date_diff('day', service_date, CAST(? AS DATE)) <= 60 THEN '31-60'
		WHEN date_diff('day', service_date, CAST(? AS DATE)) <= 90 THEN '61-90'
		ELSE '90+'
	END`

var sortExpressions = map[string]string{
	"revenue":         "SUM(paid_amount)",
	"collected":       "SUM(paid_amount)",
	"billed":          "SUM(billed_amount)",
	"balance":         "SUM(billed_amount) - SUM(paid_amount)",
	"collection_rate": "CASE WHEN SUM(billed_amount) > 0 THEN SUM(paid_amount) / SUM(billed_amount) ELSE 0 END",
	"margin":          "SUM(paid_amount) - SUM(adjustment_amount)",
	"count":           "COUNT(*)",
	"utilization":     "COUNT(*)",
}

func (m *metricStore) Add(ctx context.Context, records []store.ClaimRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx := duckdb.GetTransaction(ctx)
	query := `
		INSERT OR REPLACE INTO claim_metrics (
			claim_id, program_id, payer_id, facility_id, service_type_id,
			service_date, billed_amount, allowed_amount, paid_amount,
			adjustment_amount, denied, denial_reason, processing_days, status
		) VALUES (
			?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?
		)`

	var stmt *sql.Stmt
	var err error
	if tx == nil {
		stmt, err = m.db.PrepareContext(ctx, query)
	} else {
		stmt, err = tx.PrepareContext(ctx, query)
	}

	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, record := range records {
		_, err = stmt.ExecContext(ctx,
			record.ClaimID,
			record.ProgramID,
			record.PayerID,
			record.FacilityID,
			record.ServiceTypeID,
			record.ServiceDate,
			record.BilledAmount,
			record.AllowedAmount,
			record.PaidAmount,
			record.AdjustmentAmount,
			record.Denied,
			record.DenialReason,
			record.ProcessingDays,
			record.Status,
		)

		if err != nil {
			return fmt.Errorf("insert claim %s: %w", record.ClaimID, err)
		}
	}

	return nil
}

func (m *metricStore) GroupTotals(ctx context.Context, q Query) ([]store.GroupAggregate, error) {
	groupExpr, groupArgs := resolveGroupExpr(q)
	sortExpr := resolveSortExpr(q.SortBy)
	where, whereArgs := buildWhere(q)

	limit := q.Limit
	if limit <= 0 {
		limit = 10
	}

	query := fmt.Sprintf(`
		SELECT
			COALESCE(%s, 'unknown') AS group_key,
			COUNT(*) AS claim_count,
			COALESCE(SUM(billed_amount), 0) AS billed_amount,
			COALESCE(SUM(allowed_amount), 0) AS allowed_amount,
			COALESCE(SUM(paid_amount), 0) AS paid_amount,
			COALESCE(SUM(adjustment_amount), 0) AS adjustment_amount,
			SUM(CASE WHEN denied THEN 1 ELSE 0 END) AS denied_count,
			COALESCE(AVG(processing_days), 0) AS avg_processing_days
		FROM claim_metrics
		WHERE %s
		GROUP BY group_key
		ORDER BY %s DESC
		LIMIT ?
	`, groupExpr, where, sortExpr)

	args := append(groupArgs, whereArgs...)
	args = append(args, limit)

	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query group totals: %w", err)
	}
	defer rows.Close()

	aggregates := make([]store.GroupAggregate, 0)
	for rows.Next() {
		var agg store.GroupAggregate
		err := rows.Scan(
			&agg.Key,
			&agg.ClaimCount,
			&agg.BilledAmount,
			&agg.AllowedAmount,
			&agg.PaidAmount,
			&agg.AdjustmentAmount,
			&agg.DeniedCount,
			&agg.AvgProcessingDays,
		)
		if err != nil {
			return nil, fmt.Errorf("scan group totals: %w", err)
		}
		aggregates = append(aggregates, agg)
	}
	return aggregates, rows.Err()
}

func (m *metricStore) PeriodTotals(ctx context.Context, q Query) (store.PeriodAggregate, error) {
	where, args := buildWhere(q)

	query := fmt.Sprintf(`
		SELECT
			COUNT(*) AS claim_count,
			COALESCE(SUM(billed_amount), 0) AS billed_amount,
			COALESCE(SUM(allowed_amount), 0) AS allowed_amount,
			COALESCE(SUM(paid_amount), 0) AS paid_amount,
			COALESCE(SUM(adjustment_amount), 0) AS adjustment_amount,
			SUM(CASE WHEN denied THEN 1 ELSE 0 END) AS denied_count,
			COALESCE(AVG(processing_days), 0) AS avg_processing_days
		FROM claim_metrics
		WHERE %s
	`, where)

	var agg store.PeriodAggregate
	var deniedCount sql.NullInt64
	err := m.db.QueryRowContext(ctx, query, args...).Scan(
		&agg.ClaimCount,
		&agg.BilledAmount,
		&agg.AllowedAmount,
		&agg.PaidAmount,
		&agg.AdjustmentAmount,
		&deniedCount,
		&agg.AvgProcessingDays,
	)
	if err != nil {
		return store.PeriodAggregate{}, fmt.Errorf("query period totals: %w", err)
	}
	if deniedCount.Valid {
		agg.DeniedCount = deniedCount.Int64
	}
	return agg, nil
}

func (m *metricStore) GetStats(ctx context.Context, since *time.Time) (*store.MetricStats, error) {
	query := `SELECT COUNT(*) AS total_records, MIN(service_date) AS earliest_service FROM claim_metrics`
	args := []interface{}{}
	if since != nil {
		query += " WHERE service_date > ?"
		args = append(args, *since)
	}

	var total int64
	var earliest sql.NullTime
	if err := m.db.QueryRowContext(ctx, query, args...).Scan(&total, &earliest); err != nil {
		return nil, fmt.Errorf("get metric stats: %w", err)
	}

	var first *time.Time
	if earliest.Valid {
		t := earliest.Time
		first = &t
	}
	return &store.MetricStats{RecordsCount: total, FirstServiceDate: first}, nil
}

func resolveGroupExpr(q Query) (string, []interface{}) {
	if q.GroupBy == "aging_bucket" {
		asOf := q.AsOf
		if asOf.IsZero() {
			asOf = q.End
		}
		return agingBucketExpr, []interface{}{asOf, asOf, asOf}
	}
	expr, ok := groupExpressions[q.GroupBy]
	if !ok {
		expr = "program_id"
	}
	return expr, nil
}

func resolveSortExpr(sortBy string) string {
	if expr, ok := sortExpressions[sortBy]; ok {
		return expr
	}
	return "SUM(paid_amount)"
}

func buildWhere(q Query) (string, []interface{}) {
	clauses := []string{"service_date >= ?", "service_date <= ?"}
	args := []interface{}{q.Start, q.End}

	if q.DeniedOnly {
		clauses = append(clauses, "denied = TRUE")
	}

	filters := []struct {
		column string
		values []string
	}{
		{"program_id", q.ProgramIDs},
		{"payer_id", q.PayerIDs},
		{"facility_id", q.FacilityIDs},
		{"service_type_id", q.ServiceTypeIDs},
	}
	for _, f := range filters {
		if len(f.values) == 0 {
			continue
		}
		placeholders := make([]string, len(f.values))
		for i, v := range f.values {
			placeholders[i] = "?"
			args = append(args, v)
		}
		clauses = append(clauses, fmt.Sprintf("%s IN (%s)", f.column, strings.Join(placeholders, ",")))
	}

	return strings.Join(clauses, " AND "), args
}
