// Package warehouse reads claim metrics out of a remote analytics warehouse.
// The billing team publishes the claim_metrics view with the same column set
// on both supported platforms, so one query serves Snowflake and Databricks.
package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rcm-tools/revenue-atlas/pkg/models/store"
	"github.com/rs/zerolog"
)

type Store interface {
	GetClaims(ctx context.Context, startDate, endDate time.Time) ([]store.ClaimRecord, error)
	GetStats(ctx context.Context, since *time.Time) (*store.MetricStats, error)
}

type claimStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) Store {
	return &claimStore{
		db: db,
	}
}

func (c *claimStore) GetClaims(ctx context.Context, startDate, endDate time.Time) ([]store.ClaimRecord, error) {
	logger := zerolog.Ctx(ctx)

	query := `
		SELECT
			claim_id,
			program_id,
			payer_id,
			facility_id,
			service_type_id,
			service_date,
			billed_amount,
			allowed_amount,
			paid_amount,
			adjustment_amount,
			denied,
			denial_reason,
			processing_days,
			status
		FROM claim_metrics
		WHERE service_date >= ? AND service_date < ?
		ORDER BY service_date ASC
	`

	startFormatted := startDate.Format("2006-01-02")
	endFormatted := endDate.Format("2006-01-02")

	rows, err := c.db.QueryContext(ctx, query, startFormatted, endFormatted)
	if err != nil {
		return nil, fmt.Errorf("claims query failed: %w", err)
	}
	defer func(rows *sql.Rows) {
		err := rows.Close()
		if err != nil {
			logger.Warn().Err(err).Msg("failed to close claims query rows")
		}
	}(rows)

	var records []store.ClaimRecord
	for rows.Next() {
		var (
			rec          store.ClaimRecord
			programID    sql.NullString
			payerID      sql.NullString
			facilityID   sql.NullString
			serviceType  sql.NullString
			denialReason sql.NullString
			processing   sql.NullInt64
		)
		err := rows.Scan(
			&rec.ClaimID,
			&programID,
			&payerID,
			&facilityID,
			&serviceType,
			&rec.ServiceDate,
			&rec.BilledAmount,
			&rec.AllowedAmount,
			&rec.PaidAmount,
			&rec.AdjustmentAmount,
			&rec.Denied,
			&denialReason,
			&processing,
			&rec.Status,
		)
		if err != nil {
			return nil, err
		}

		rec.ProgramID = programID.String
		rec.PayerID = payerID.String
		rec.FacilityID = facilityID.String
		rec.ServiceTypeID = serviceType.String
		rec.DenialReason = denialReason.String
		rec.ProcessingDays = int(processing.Int64)
		records = append(records, rec)
	}

	return records, rows.Err()
}

func (c *claimStore) GetStats(ctx context.Context, since *time.Time) (*store.MetricStats, error) {
	logger := zerolog.Ctx(ctx)

	query := `
        SELECT
            COUNT(*) as total_records,
            MIN(service_date) as earliest_record
        FROM
            claim_metrics
        `

	var totalRecords int64
	var earliestRecord sql.NullTime
	var err error
	if since != nil {
		query += " WHERE service_date > ?"
		err = c.db.QueryRowContext(ctx, query, since.Format("2006-01-02")).Scan(&totalRecords, &earliestRecord)
	} else {
		err = c.db.QueryRowContext(ctx, query).Scan(&totalRecords, &earliestRecord)
	}

	if err != nil {
		return nil, fmt.Errorf("get claim stats failed: %w", err)
	}

	var earliestTime *time.Time
	if earliestRecord.Valid {
		t := earliestRecord.Time
		earliestTime = &t
	}

	logger.Debug().
		Int64("total_records", totalRecords).
		Msg("retrieved claim stats")

	return &store.MetricStats{
		RecordsCount:     totalRecords,
		FirstServiceDate: earliestTime,
	}, nil
}
