package sync

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/rcm-tools/revenue-atlas/pkg/adapters"
	"github.com/rcm-tools/revenue-atlas/pkg/models/domain"
	"github.com/rcm-tools/revenue-atlas/pkg/models/store"
	"github.com/rcm-tools/revenue-atlas/pkg/services/config"
	"github.com/rcm-tools/revenue-atlas/pkg/store/duckdb/metrics"
	"github.com/rcm-tools/revenue-atlas/pkg/store/duckdb/syncstate"
	"github.com/rcm-tools/revenue-atlas/pkg/store/warehouse"
	"github.com/rs/zerolog"
)

var (
	ErrAlreadyRunning = errors.New("sync already running")
	ErrNotRunning     = errors.New("sync not running")
)

type Controller interface {
	Start(ctx context.Context, profile string) error
	Cancel(ctx context.Context, profile string) error
	Status(ctx context.Context) ([]domain.SyncState, error)
}

type syncDescriptor struct {
	cancelFunc context.CancelFunc
	runner     *Runner
}

type DefaultController struct {
	db        *sql.DB
	registry  config.Registry
	syncStore syncstate.Store
	metrics   metrics.Store

	mu    sync.Mutex
	syncs map[string]syncDescriptor

	// openWarehouse is swapped out in tests.
	openWarehouse func(profile *config.Profile) (*sql.DB, error)
}

func NewController(
	db *sql.DB,
	registry config.Registry,
	syncStore syncstate.Store,
	metricStore metrics.Store,
) *DefaultController {
	return &DefaultController{
		db:            db,
		registry:      registry,
		syncStore:     syncStore,
		metrics:       metricStore,
		syncs:         make(map[string]syncDescriptor),
		openWarehouse: warehouse.Open,
	}
}

// Resume restarts the import for every profile that was mid-sync when the
// process last stopped.
func (ctrl *DefaultController) Resume(ctx context.Context) error {
	states, err := ctrl.syncStore.List(ctx, []string{string(domain.SyncStatusPending)})
	if err != nil {
		return err
	}

	for _, state := range states {
		if err := ctrl.Start(ctx, state.Profile); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("profile", state.Profile).Msg("failed to resume sync")
		}
	}
	return nil
}

func (ctrl *DefaultController) Start(ctx context.Context, profile string) error {
	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()

	if _, ok := ctrl.syncs[profile]; ok {
		return fmt.Errorf("%w for profile %s", ErrAlreadyRunning, profile)
	}

	cfg, err := ctrl.registry.GetProfile(ctx, profile)
	if err != nil {
		return err
	}

	if _, err := ctrl.syncStore.Get(ctx, profile); err != nil {
		if !errors.Is(err, syncstate.ErrNotFound) {
			return err
		}
		if _, err := ctrl.syncStore.Create(ctx, store.SyncIdentity{Profile: profile}); err != nil {
			return err
		}
	} else {
		if err := ctrl.syncStore.UpdateStatus(ctx, profile, string(domain.SyncStatusPending), nil); err != nil {
			return err
		}
	}

	remote, err := ctrl.openWarehouse(cfg)
	if err != nil {
		return err
	}

	// The sync outlives the request that started it.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	runner := NewRunner(profile, ctrl.db, ctrl.syncStore, warehouse.NewStore(remote), ctrl.metrics)
	ctrl.syncs[profile] = syncDescriptor{
		cancelFunc: cancel,
		runner:     runner,
	}

	go func() {
		runner.Run(runCtx)
		if err := remote.Close(); err != nil {
			zerolog.Ctx(runCtx).Warn().Err(err).Str("profile", profile).Msg("failed to close warehouse connection")
		}

		ctrl.mu.Lock()
		if desc, ok := ctrl.syncs[profile]; ok && desc.runner == runner {
			delete(ctrl.syncs, profile)
		}
		ctrl.mu.Unlock()
	}()

	return nil
}

func (ctrl *DefaultController) Cancel(ctx context.Context, profile string) error {
	ctrl.mu.Lock()
	desc, ok := ctrl.syncs[profile]
	if !ok {
		ctrl.mu.Unlock()
		return fmt.Errorf("%w for profile %s", ErrNotRunning, profile)
	}
	delete(ctrl.syncs, profile)
	ctrl.mu.Unlock()

	desc.cancelFunc()
	<-desc.runner.Done()

	if err := ctrl.syncStore.UpdateStatus(ctx, profile, string(domain.SyncStatusCancelled), nil); err != nil {
		return err
	}
	return nil
}

func (ctrl *DefaultController) Status(ctx context.Context) ([]domain.SyncState, error) {
	records, err := ctrl.syncStore.List(ctx, nil)
	if err != nil {
		return nil, err
	}

	states := make([]domain.SyncState, 0, len(records))
	for _, rec := range records {
		if state := adapters.MapStoreSyncToDomain(rec); state != nil {
			states = append(states, *state)
		}
	}
	return states, nil
}
