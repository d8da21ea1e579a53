package adapters

import (
	"github.com/rcm-tools/revenue-atlas/pkg/models/api"
	"github.com/rcm-tools/revenue-atlas/pkg/models/domain"
	"github.com/rcm-tools/revenue-atlas/pkg/models/store"
)

func MapStoreSyncToDomain(rec *store.SyncRecord) *domain.SyncState {
	if rec == nil {
		return nil
	}

	state := domain.SyncState{
		Profile:   rec.Profile,
		Status:    domain.SyncStatus(rec.Status),
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
		Error:     rec.Error,
	}
	if rec.LastSyncedDate != nil {
		state.LastSyncedDate = *rec.LastSyncedDate
	}
	return &state
}

func MapDomainSyncToStore(state *domain.SyncState) *store.SyncRecord {
	rec := store.SyncRecord{
		Profile:   state.Profile,
		Status:    string(state.Status),
		CreatedAt: state.CreatedAt,
		UpdatedAt: state.UpdatedAt,
		Error:     state.Error,
	}
	if !state.LastSyncedDate.IsZero() {
		d := state.LastSyncedDate
		rec.LastSyncedDate = &d
	}
	return &rec
}

func MapSyncStateDomainToApi(state domain.SyncState) api.SyncState {
	res := api.SyncState{
		Profile:   state.Profile,
		Status:    string(state.Status),
		UpdatedAt: state.UpdatedAt,
		Error:     state.Error,
	}
	if !state.LastSyncedDate.IsZero() {
		d := state.LastSyncedDate
		res.LastSyncedDate = &d
	}
	return res
}
