package syncstate

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rcm-tools/revenue-atlas/pkg/models/store"
	"github.com/rcm-tools/revenue-atlas/pkg/store/duckdb"
)

var ErrNotFound = fmt.Errorf("sync state not found")

type Store interface {
	Create(ctx context.Context, identity store.SyncIdentity) (*store.SyncRecord, error)
	Get(ctx context.Context, profile string) (*store.SyncRecord, error)
	List(ctx context.Context, statuses []string) ([]*store.SyncRecord, error)
	UpdateStatus(ctx context.Context, profile string, status string, syncErr *string) error
	Progress(ctx context.Context, profile string, lastSyncedDate time.Time) error
}

type defaultStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &defaultStore{
		db: db,
	}, nil
}

func (s *defaultStore) Create(ctx context.Context, identity store.SyncIdentity) (*store.SyncRecord, error) {
	now := time.Now().UTC()
	query := `
		INSERT INTO sync_state (profile, status, created_at, updated_at)
		VALUES (?, ?, ?, ?)`

	var exec execer = s.db
	if tx := duckdb.GetTransaction(ctx); tx != nil {
		exec = tx
	}

	_, err := exec.ExecContext(ctx, query, identity.Profile, "pending", now, now)
	if err != nil {
		return nil, fmt.Errorf("create sync state for %s: %w", identity.Profile, err)
	}

	return &store.SyncRecord{
		Profile:   identity.Profile,
		Status:    "pending",
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *defaultStore) Get(ctx context.Context, profile string) (*store.SyncRecord, error) {
	query := `
		SELECT profile, status, created_at, updated_at, last_synced_date, error
		FROM sync_state
		WHERE profile = ?`

	rec, err := scanSyncState(s.db.QueryRowContext(ctx, query, profile))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get sync state for %s: %w", profile, err)
	}
	return rec, nil
}

func (s *defaultStore) List(ctx context.Context, statuses []string) ([]*store.SyncRecord, error) {
	query := `
		SELECT profile, status, created_at, updated_at, last_synced_date, error
		FROM sync_state`
	args := []interface{}{}

	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, status := range statuses {
			placeholders[i] = "?"
			args = append(args, status)
		}
		query += fmt.Sprintf(" WHERE status IN (%s)", strings.Join(placeholders, ","))
	}
	query += " ORDER BY profile ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sync states: %w", err)
	}
	defer rows.Close()

	records := make([]*store.SyncRecord, 0)
	for rows.Next() {
		rec, err := scanSyncState(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sync state: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *defaultStore) UpdateStatus(ctx context.Context, profile string, status string, syncErr *string) error {
	query := `
		UPDATE sync_state
		SET status = ?, error = ?, updated_at = ?
		WHERE profile = ?`

	res, err := s.db.ExecContext(ctx, query, status, syncErr, time.Now().UTC(), profile)
	if err != nil {
		return fmt.Errorf("update sync status for %s: %w", profile, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update sync status for %s: %w", profile, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *defaultStore) Progress(ctx context.Context, profile string, lastSyncedDate time.Time) error {
	query := `
		UPDATE sync_state
		SET last_synced_date = ?, updated_at = ?
		WHERE profile = ?`

	var exec execer = s.db
	if tx := duckdb.GetTransaction(ctx); tx != nil {
		exec = tx
	}

	res, err := exec.ExecContext(ctx, query, lastSyncedDate, time.Now().UTC(), profile)
	if err != nil {
		return fmt.Errorf("progress sync for %s: %w", profile, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("progress sync for %s: %w", profile, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSyncState(row rowScanner) (*store.SyncRecord, error) {
	var rec store.SyncRecord
	var lastSynced sql.NullTime
	var syncErr sql.NullString
	err := row.Scan(
		&rec.Profile,
		&rec.Status,
		&rec.CreatedAt,
		&rec.UpdatedAt,
		&lastSynced,
		&syncErr,
	)
	if err != nil {
		return nil, err
	}
	if lastSynced.Valid {
		t := lastSynced.Time
		rec.LastSyncedDate = &t
	}
	if syncErr.Valid {
		e := syncErr.String
		rec.Error = &e
	}
	return &rec, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}
