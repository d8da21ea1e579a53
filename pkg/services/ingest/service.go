// Package ingest imports clearinghouse remittance CSV files into the local
// claim metrics table.
package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rcm-tools/revenue-atlas/pkg/models/store"
	"github.com/rcm-tools/revenue-atlas/pkg/store/duckdb"
	"github.com/rcm-tools/revenue-atlas/pkg/store/duckdb/metrics"
)

// FileSource lists and opens remittance exports. Satisfied by filedrop.Store.
type FileSource interface {
	ListFiles(ctx context.Context) ([]string, error)
	Fetch(ctx context.Context, key string) (io.ReadCloser, error)
}

// Summary totals one Import call. Files counts files that were parsed and
// stored; files that could not be read at all are logged and left out.
type Summary struct {
	Files    int
	Imported int
	Skipped  int
}

type Service struct {
	source  FileSource
	db      *sql.DB
	metrics metrics.Store
}

func NewService(source FileSource, db *sql.DB, metricStore metrics.Store) (*Service, error) {
	if source == nil {
		return nil, fmt.Errorf("file source is nil")
	}
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	if metricStore == nil {
		return nil, fmt.Errorf("metric store is nil")
	}
	return &Service{
		source:  source,
		db:      db,
		metrics: metricStore,
	}, nil
}

// Import pulls every CSV under the drop prefix into claim_metrics. Each file
// loads in its own transaction, and claim_id is the primary key, so running
// Import twice over the same drop is safe.
func (s *Service) Import(ctx context.Context) (*Summary, error) {
	log := zerolog.Ctx(ctx)

	keys, err := s.source.ListFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list remittance files: %w", err)
	}

	summary := &Summary{}
	for _, key := range keys {
		if !strings.HasSuffix(key, ".csv") {
			continue
		}

		imported, skipped, err := s.importFile(ctx, key)
		if err != nil {
			log.Warn().Err(err).Str("file", key).Msg("skipping remittance file")
			continue
		}

		summary.Files++
		summary.Imported += imported
		summary.Skipped += skipped
		if skipped > 0 {
			log.Warn().Str("file", key).Int("skipped", skipped).Msg("dropped malformed remittance rows")
		}
		log.Info().Str("file", key).Int("imported", imported).Msg("remittance file imported")
	}

	return summary, nil
}

func (s *Service) importFile(ctx context.Context, key string) (int, int, error) {
	body, err := s.source.Fetch(ctx, key)
	if err != nil {
		return 0, 0, err
	}
	defer body.Close()

	records, skipped, err := parseRemittance(body)
	if err != nil {
		return 0, 0, err
	}
	if len(records) == 0 {
		return 0, skipped, nil
	}

	if err := s.storeRecords(ctx, records); err != nil {
		return 0, 0, err
	}
	return len(records), skipped, nil
}

func (s *Service) storeRecords(ctx context.Context, records []store.ClaimRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	txCtx := duckdb.WithTransaction(ctx, tx)
	if err := s.metrics.Add(txCtx, records); err != nil {
		return fmt.Errorf("failed to store records: %w", err)
	}
	return tx.Commit()
}
