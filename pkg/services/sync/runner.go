package sync

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rcm-tools/revenue-atlas/pkg/models/domain"
	"github.com/rcm-tools/revenue-atlas/pkg/models/store"
	"github.com/rcm-tools/revenue-atlas/pkg/store/duckdb"
	"github.com/rcm-tools/revenue-atlas/pkg/store/duckdb/metrics"
	"github.com/rcm-tools/revenue-atlas/pkg/store/duckdb/syncstate"
	"github.com/rcm-tools/revenue-atlas/pkg/store/warehouse"
	"github.com/rs/zerolog"
)

// Runner copies claim metrics for one profile from the remote warehouse into
// the local store, one service-date window at a time. Each window commits
// together with the watermark update, so an interrupted sync resumes from the
// last committed window.
type Runner struct {
	profile   string
	db        *sql.DB
	syncStore syncstate.Store
	claims    warehouse.Store
	metrics   metrics.Store
	done      chan struct{}
	progress  chan RunnerProgress
	config    RunnerConfig
	now       func() time.Time
}

type RunnerConfig struct {
	BatchInterval time.Duration
	SleepInterval time.Duration
}

type RunnerProgress struct {
	ProcessedRecords int64
	TotalRecords     int64
	LastSyncedDate   time.Time
}

func NewRunner(
	profile string,
	db *sql.DB,
	syncStore syncstate.Store,
	claims warehouse.Store,
	metricStore metrics.Store,
) *Runner {
	return &Runner{
		profile:   profile,
		db:        db,
		syncStore: syncStore,
		claims:    claims,
		metrics:   metricStore,
		done:      make(chan struct{}),
		progress:  make(chan RunnerProgress, 100),
		config: RunnerConfig{
			BatchInterval: 7 * 24 * time.Hour,
			SleepInterval: 10 * time.Second,
		},
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (r *Runner) Done() <-chan struct{} {
	return r.done
}

func (r *Runner) Progress() <-chan RunnerProgress {
	return r.progress
}

func (r *Runner) Run(ctx context.Context) {
	log := zerolog.Ctx(ctx).With().Str("profile", r.profile).Logger()
	defer close(r.done)
	defer close(r.progress)

	state, err := r.syncStore.Get(ctx, r.profile)
	if err != nil {
		log.Error().Err(err).Msg("failed to load sync state")
		return
	}

	stats, err := r.claims.GetStats(ctx, state.LastSyncedDate)
	if err != nil {
		r.fail(ctx, log, err, "failed to get warehouse stats")
		return
	}

	var start time.Time
	switch {
	case state.LastSyncedDate != nil:
		start = *state.LastSyncedDate
	case stats.FirstServiceDate != nil:
		start = *stats.FirstServiceDate
	default:
		// Empty warehouse, nothing to import.
		r.finish(ctx, log, 0)
		return
	}

	until := r.now()
	processed := int64(0)

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("warehouse sync stopped")
			return
		default:
			if !start.Before(until) {
				r.finish(ctx, log, processed)
				return
			}

			end := start.Add(r.config.BatchInterval)
			if end.After(until) {
				end = until
			}

			records, err := r.claims.GetClaims(ctx, start, end)
			if err != nil {
				log.Error().Err(err).Msg("failed to read claims batch")
				time.Sleep(r.config.SleepInterval)
				continue
			}

			if err := r.storeBatch(ctx, records, end); err != nil {
				log.Error().Err(err).Msg("failed to store claims batch")
				time.Sleep(r.config.SleepInterval)
				continue
			}

			processed += int64(len(records))

			// Progress is advisory; drop updates rather than stall the sync
			// when nobody is draining the channel.
			select {
			case r.progress <- RunnerProgress{
				ProcessedRecords: processed,
				TotalRecords:     stats.RecordsCount,
				LastSyncedDate:   end,
			}:
			default:
			}

			start = end
		}
	}
}

// storeBatch writes one window of claims and advances the watermark in a
// single transaction.
func (r *Runner) storeBatch(ctx context.Context, records []store.ClaimRecord, watermark time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	ctxWithTx := duckdb.WithTransaction(ctx, tx)
	if err := r.metrics.Add(ctxWithTx, records); err != nil {
		return err
	}
	if err := r.syncStore.Progress(ctxWithTx, r.profile, watermark); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *Runner) finish(ctx context.Context, log zerolog.Logger, processed int64) {
	if err := r.syncStore.UpdateStatus(ctx, r.profile, string(domain.SyncStatusFinished), nil); err != nil {
		log.Error().Err(err).Msg("failed to mark sync finished")
		return
	}
	log.Info().Int64("records", processed).Msg("warehouse sync finished")
}

func (r *Runner) fail(ctx context.Context, log zerolog.Logger, cause error, msg string) {
	log.Error().Err(cause).Msg(msg)
	message := cause.Error()
	if err := r.syncStore.UpdateStatus(ctx, r.profile, string(domain.SyncStatusFailed), &message); err != nil {
		log.Error().Err(err).Msg("failed to mark sync failed")
	}
}
