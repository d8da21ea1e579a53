package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/marcboeker/go-duckdb/v2"
)

const ClaimMetricsSchema = `
	CREATE TABLE IF NOT EXISTS claim_metrics (
		claim_id VARCHAR NOT NULL,
		program_id VARCHAR,
		payer_id VARCHAR,
		facility_id VARCHAR,
		service_type_id VARCHAR,
		service_date DATE NOT NULL,
		billed_amount DOUBLE,
		allowed_amount DOUBLE,
		paid_amount DOUBLE,
		adjustment_amount DOUBLE,
		denied BOOLEAN DEFAULT FALSE,
		denial_reason VARCHAR,
		processing_days INTEGER,
		status VARCHAR,
		PRIMARY KEY (claim_id)
	);
`

const ReportDefinitionsSchema = `
	CREATE TABLE IF NOT EXISTS report_definitions (
		id VARCHAR NOT NULL,
		name VARCHAR NOT NULL,
		description VARCHAR,
		report_type VARCHAR NOT NULL,
		parameters JSON NOT NULL,
		is_system BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id)
	);
`

const ReportSchedulesSchema = `
	CREATE TABLE IF NOT EXISTS report_schedules (
		id VARCHAR NOT NULL,
		definition_id VARCHAR NOT NULL,
		frequency VARCHAR NOT NULL,
		hour_utc INTEGER NOT NULL,
		weekday INTEGER NOT NULL DEFAULT 1,
		day_of_month INTEGER NOT NULL DEFAULT 1,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		next_run_at TIMESTAMP NOT NULL,
		last_run_at TIMESTAMP NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id)
	);
`

const ReportRunsSchema = `
	CREATE TABLE IF NOT EXISTS report_runs (
		id VARCHAR NOT NULL,
		report_type VARCHAR NOT NULL,
		schedule_id VARCHAR,
		parameters JSON NOT NULL,
		status VARCHAR NOT NULL,
		error VARCHAR NULL,
		started_at TIMESTAMP NOT NULL,
		completed_at TIMESTAMP NULL,
		PRIMARY KEY (id)
	);
`

const SyncStateSchema = `
	CREATE TABLE IF NOT EXISTS sync_state (
		profile VARCHAR NOT NULL,
		status VARCHAR NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		last_synced_date DATE NULL,
		error VARCHAR NULL,
		PRIMARY KEY (profile)
	);
`

var bootQueries = []string{
	ClaimMetricsSchema,
	ReportDefinitionsSchema,
	ReportSchedulesSchema,
	ReportRunsSchema,
	SyncStateSchema,
}

type Settings struct {
	DbPath string
}

func NewDB(settings Settings) (*sql.DB, error) {
	c, err := duckdb.NewConnector(fmt.Sprintf("%s?threads=4", settings.DbPath), func(exec driver.ExecerContext) error {
		for _, query := range bootQueries {
			_, err := exec.ExecContext(context.Background(), query, nil)
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	db := sql.OpenDB(c)
	return db, nil
}

type txKey struct{}

func WithTransaction(ctx context.Context, tx *sql.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

func GetTransaction(ctx context.Context) *sql.Tx {
	tx, _ := ctx.Value(txKey{}).(*sql.Tx)
	return tx
}
