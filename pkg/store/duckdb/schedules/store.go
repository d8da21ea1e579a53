package schedules

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rcm-tools/revenue-atlas/pkg/models/store"
	"github.com/rcm-tools/revenue-atlas/pkg/store/duckdb"
)

var ErrNotFound = fmt.Errorf("schedule not found")

type Store interface {
	Create(ctx context.Context, rec store.ScheduleRecord) error
	Update(ctx context.Context, rec store.ScheduleRecord) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (store.ScheduleRecord, error)
	List(ctx context.Context) ([]store.ScheduleRecord, error)
	// ListDue returns active schedules whose next run is at or before asOf.
	ListDue(ctx context.Context, asOf time.Time) ([]store.ScheduleRecord, error)
	// MarkRun records a completed trigger and advances the next run time.
	MarkRun(ctx context.Context, id string, ranAt, nextRunAt time.Time) error
}

type scheduleStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &scheduleStore{
		db: db,
	}, nil
}

const scheduleColumns = `id, definition_id, frequency, hour_utc, weekday, day_of_month,
		active, next_run_at, last_run_at, created_at, updated_at`

func (s *scheduleStore) Create(ctx context.Context, rec store.ScheduleRecord) error {
	query := fmt.Sprintf(`
		INSERT INTO report_schedules (%s)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, scheduleColumns)

	_, err := s.execer(ctx).ExecContext(ctx, query,
		rec.ID,
		rec.DefinitionID,
		rec.Frequency,
		rec.HourUTC,
		rec.Weekday,
		rec.DayOfMonth,
		rec.Active,
		rec.NextRunAt,
		rec.LastRunAt,
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert schedule %s: %w", rec.ID, err)
	}
	return nil
}

func (s *scheduleStore) Update(ctx context.Context, rec store.ScheduleRecord) error {
	query := `
		UPDATE report_schedules
		SET definition_id = ?, frequency = ?, hour_utc = ?, weekday = ?, day_of_month = ?,
			active = ?, next_run_at = ?, updated_at = ?
		WHERE id = ?`

	res, err := s.execer(ctx).ExecContext(ctx, query,
		rec.DefinitionID,
		rec.Frequency,
		rec.HourUTC,
		rec.Weekday,
		rec.DayOfMonth,
		rec.Active,
		rec.NextRunAt,
		rec.UpdatedAt,
		rec.ID,
	)
	if err != nil {
		return fmt.Errorf("update schedule %s: %w", rec.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update schedule %s: %w", rec.ID, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *scheduleStore) Delete(ctx context.Context, id string) error {
	res, err := s.execer(ctx).ExecContext(ctx, `DELETE FROM report_schedules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete schedule %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete schedule %s: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *scheduleStore) Get(ctx context.Context, id string) (store.ScheduleRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM report_schedules WHERE id = ?`, scheduleColumns)

	rec, err := scanSchedule(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return store.ScheduleRecord{}, ErrNotFound
	}
	if err != nil {
		return store.ScheduleRecord{}, fmt.Errorf("get schedule %s: %w", id, err)
	}
	return rec, nil
}

func (s *scheduleStore) List(ctx context.Context) ([]store.ScheduleRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM report_schedules ORDER BY next_run_at ASC`, scheduleColumns)
	return s.querySchedules(ctx, query)
}

func (s *scheduleStore) ListDue(ctx context.Context, asOf time.Time) ([]store.ScheduleRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM report_schedules
		WHERE active AND next_run_at <= ?
		ORDER BY next_run_at ASC`, scheduleColumns)
	return s.querySchedules(ctx, query, asOf)
}

func (s *scheduleStore) MarkRun(ctx context.Context, id string, ranAt, nextRunAt time.Time) error {
	query := `
		UPDATE report_schedules
		SET last_run_at = ?, next_run_at = ?, updated_at = ?
		WHERE id = ?`

	res, err := s.execer(ctx).ExecContext(ctx, query, ranAt, nextRunAt, ranAt, id)
	if err != nil {
		return fmt.Errorf("mark schedule run %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark schedule run %s: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *scheduleStore) querySchedules(ctx context.Context, query string, args ...interface{}) ([]store.ScheduleRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query schedules: %w", err)
	}
	defer rows.Close()

	records := make([]store.ScheduleRecord, 0)
	for rows.Next() {
		rec, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSchedule(row rowScanner) (store.ScheduleRecord, error) {
	var rec store.ScheduleRecord
	var lastRun sql.NullTime
	err := row.Scan(
		&rec.ID,
		&rec.DefinitionID,
		&rec.Frequency,
		&rec.HourUTC,
		&rec.Weekday,
		&rec.DayOfMonth,
		&rec.Active,
		&rec.NextRunAt,
		&lastRun,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return store.ScheduleRecord{}, err
	}
	if lastRun.Valid {
		t := lastRun.Time
		rec.LastRunAt = &t
	}
	return rec, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func (s *scheduleStore) execer(ctx context.Context) execer {
	if tx := duckdb.GetTransaction(ctx); tx != nil {
		return tx
	}
	return s.db
}
