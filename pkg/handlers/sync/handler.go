package sync

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/rcm-tools/revenue-atlas/pkg/adapters"
	"github.com/rcm-tools/revenue-atlas/pkg/models/api"
	"github.com/rcm-tools/revenue-atlas/pkg/services/config"
	syncservice "github.com/rcm-tools/revenue-atlas/pkg/services/sync"
)

type Handler struct {
	syncs syncservice.Controller
}

func NewHandler(syncs syncservice.Controller) *Handler {
	return &Handler{
		syncs: syncs,
	}
}

// Start kicks off a background import for the profile and returns 202; the
// sync keeps running after the response.
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)
	profile := chi.URLParam(r, "profile")

	if err := h.syncs.Start(ctx, profile); err != nil {
		switch {
		case errors.Is(err, config.ErrProfileNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, syncservice.ErrAlreadyRunning):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			logger.Error().Err(err).Str("profile", profile).Msg("failed to start sync")
			http.Error(w, "failed to start sync", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	response := map[string]string{"profile": profile, "status": "pending"}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error().Err(err).Msg("failed to encode response")
	}
}

func (h *Handler) Stop(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)
	profile := chi.URLParam(r, "profile")

	if err := h.syncs.Cancel(ctx, profile); err != nil {
		if errors.Is(err, syncservice.ErrNotRunning) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		logger.Error().Err(err).Str("profile", profile).Msg("failed to stop sync")
		http.Error(w, "failed to stop sync", http.StatusInternalServerError)
		return
	}

	writeJSON(w, logger, map[string]string{"profile": profile, "status": "cancelled"})
}

func (h *Handler) ListStates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	states, err := h.syncs.Status(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to list sync states")
		http.Error(w, "failed to list sync states", http.StatusInternalServerError)
		return
	}

	response := make([]api.SyncState, 0, len(states))
	for _, state := range states {
		response = append(response, adapters.MapSyncStateDomainToApi(state))
	}
	writeJSON(w, logger, response)
}

func writeJSON(w http.ResponseWriter, logger *zerolog.Logger, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error().
			Err(err).
			Msg("failed to encode response")
	}
}
