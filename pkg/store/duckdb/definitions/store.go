package definitions

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rcm-tools/revenue-atlas/pkg/models/store"
	"github.com/rcm-tools/revenue-atlas/pkg/store/duckdb"
)

// ErrNotFound reports a lookup for a definition id that does not exist.
var ErrNotFound = fmt.Errorf("report definition not found")

type Store interface {
	Create(ctx context.Context, rec store.ReportDefinitionRecord) error
	Update(ctx context.Context, rec store.ReportDefinitionRecord) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (store.ReportDefinitionRecord, error)
	List(ctx context.Context) ([]store.ReportDefinitionRecord, error)
}

type definitionStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &definitionStore{
		db: db,
	}, nil
}

func (s *definitionStore) Create(ctx context.Context, rec store.ReportDefinitionRecord) error {
	query := `
		INSERT INTO report_definitions (
			id, name, description, report_type, parameters, is_system, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.execer(ctx).ExecContext(ctx, query,
		rec.ID,
		rec.Name,
		rec.Description,
		rec.ReportType,
		rec.Parameters,
		rec.System,
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert definition %s: %w", rec.ID, err)
	}
	return nil
}

func (s *definitionStore) Update(ctx context.Context, rec store.ReportDefinitionRecord) error {
	query := `
		UPDATE report_definitions
		SET name = ?, description = ?, report_type = ?, parameters = ?, updated_at = ?
		WHERE id = ?`

	res, err := s.execer(ctx).ExecContext(ctx, query,
		rec.Name,
		rec.Description,
		rec.ReportType,
		rec.Parameters,
		rec.UpdatedAt,
		rec.ID,
	)
	if err != nil {
		return fmt.Errorf("update definition %s: %w", rec.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update definition %s: %w", rec.ID, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *definitionStore) Delete(ctx context.Context, id string) error {
	res, err := s.execer(ctx).ExecContext(ctx, `DELETE FROM report_definitions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete definition %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete definition %s: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *definitionStore) Get(ctx context.Context, id string) (store.ReportDefinitionRecord, error) {
	query := `
		SELECT id, name, description, report_type, parameters, is_system, created_at, updated_at
		FROM report_definitions
		WHERE id = ?`

	var rec store.ReportDefinitionRecord
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&rec.ID,
		&rec.Name,
		&rec.Description,
		&rec.ReportType,
		&rec.Parameters,
		&rec.System,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return store.ReportDefinitionRecord{}, ErrNotFound
	}
	if err != nil {
		return store.ReportDefinitionRecord{}, fmt.Errorf("get definition %s: %w", id, err)
	}
	return rec, nil
}

func (s *definitionStore) List(ctx context.Context) ([]store.ReportDefinitionRecord, error) {
	query := `
		SELECT id, name, description, report_type, parameters, is_system, created_at, updated_at
		FROM report_definitions
		ORDER BY is_system DESC, name ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list definitions: %w", err)
	}
	defer rows.Close()

	records := make([]store.ReportDefinitionRecord, 0)
	for rows.Next() {
		var rec store.ReportDefinitionRecord
		err := rows.Scan(
			&rec.ID,
			&rec.Name,
			&rec.Description,
			&rec.ReportType,
			&rec.Parameters,
			&rec.System,
			&rec.CreatedAt,
			&rec.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan definition: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func (s *definitionStore) execer(ctx context.Context) execer {
	if tx := duckdb.GetTransaction(ctx); tx != nil {
		return tx
	}
	return s.db
}
