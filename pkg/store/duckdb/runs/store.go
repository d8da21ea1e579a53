package runs

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rcm-tools/revenue-atlas/pkg/models/store"
	"github.com/rcm-tools/revenue-atlas/pkg/store/duckdb"
)

var ErrNotFound = fmt.Errorf("report run not found")

type Store interface {
	Create(ctx context.Context, rec store.ReportRunRecord) error
	// Complete closes out a run with its final status. A nil runErr marks
	// success.
	Complete(ctx context.Context, id string, status string, runErr *string, completedAt time.Time) error
	Get(ctx context.Context, id string) (store.ReportRunRecord, error)
	List(ctx context.Context, limit int) ([]store.ReportRunRecord, error)
}

type runStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &runStore{
		db: db,
	}, nil
}

func (s *runStore) Create(ctx context.Context, rec store.ReportRunRecord) error {
	query := `
		INSERT INTO report_runs (
			id, report_type, schedule_id, parameters, status, error, started_at, completed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	var exec execer = s.db
	if tx := duckdb.GetTransaction(ctx); tx != nil {
		exec = tx
	}

	_, err := exec.ExecContext(ctx, query,
		rec.ID,
		rec.ReportType,
		rec.ScheduleID,
		rec.Parameters,
		rec.Status,
		rec.Error,
		rec.StartedAt,
		rec.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", rec.ID, err)
	}
	return nil
}

func (s *runStore) Complete(ctx context.Context, id string, status string, runErr *string, completedAt time.Time) error {
	query := `
		UPDATE report_runs
		SET status = ?, error = ?, completed_at = ?
		WHERE id = ?`

	res, err := s.db.ExecContext(ctx, query, status, runErr, completedAt, id)
	if err != nil {
		return fmt.Errorf("complete run %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("complete run %s: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *runStore) Get(ctx context.Context, id string) (store.ReportRunRecord, error) {
	query := `
		SELECT id, report_type, schedule_id, parameters, status, error, started_at, completed_at
		FROM report_runs
		WHERE id = ?`

	rec, err := scanRun(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return store.ReportRunRecord{}, ErrNotFound
	}
	if err != nil {
		return store.ReportRunRecord{}, fmt.Errorf("get run %s: %w", id, err)
	}
	return rec, nil
}

func (s *runStore) List(ctx context.Context, limit int) ([]store.ReportRunRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, report_type, schedule_id, parameters, status, error, started_at, completed_at
		FROM report_runs
		ORDER BY started_at DESC
		LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	records := make([]store.ReportRunRecord, 0)
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (store.ReportRunRecord, error) {
	var rec store.ReportRunRecord
	var scheduleID, runErr sql.NullString
	var completed sql.NullTime
	err := row.Scan(
		&rec.ID,
		&rec.ReportType,
		&scheduleID,
		&rec.Parameters,
		&rec.Status,
		&runErr,
		&rec.StartedAt,
		&completed,
	)
	if err != nil {
		return store.ReportRunRecord{}, err
	}
	rec.ScheduleID = scheduleID.String
	if runErr.Valid {
		e := runErr.String
		rec.Error = &e
	}
	if completed.Valid {
		t := completed.Time
		rec.CompletedAt = &t
	}
	return rec, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}
