package schedules

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/rcm-tools/revenue-atlas/pkg/adapters"
	"github.com/rcm-tools/revenue-atlas/pkg/models/api"
	"github.com/rcm-tools/revenue-atlas/pkg/models/domain"
	"github.com/rcm-tools/revenue-atlas/pkg/services/schedule"
	definitionstore "github.com/rcm-tools/revenue-atlas/pkg/store/duckdb/definitions"
	schedulestore "github.com/rcm-tools/revenue-atlas/pkg/store/duckdb/schedules"
)

type Handler struct {
	schedules schedule.Controller
}

func NewHandler(schedules schedule.Controller) *Handler {
	return &Handler{
		schedules: schedules,
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	items, err := h.schedules.List(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to list schedules")
		http.Error(w, "failed to list schedules", http.StatusInternalServerError)
		return
	}

	response := make([]api.Schedule, 0, len(items))
	for _, s := range items {
		response = append(response, adapters.MapScheduleDomainToApi(s))
	}
	writeJSON(w, logger, response)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)
	id := chi.URLParam(r, "id")

	s, err := h.schedules.Get(ctx, id)
	if err != nil {
		h.writeError(w, logger, id, err, "failed to fetch schedule")
		return
	}
	writeJSON(w, logger, adapters.MapScheduleDomainToApi(s))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	s, ok := decodeSchedule(w, r)
	if !ok {
		return
	}

	created, err := h.schedules.Create(ctx, s)
	if err != nil {
		h.writeError(w, logger, "", err, "failed to create schedule")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(adapters.MapScheduleDomainToApi(created)); err != nil {
		logger.Error().Err(err).Msg("failed to encode response")
	}
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)
	id := chi.URLParam(r, "id")

	s, ok := decodeSchedule(w, r)
	if !ok {
		return
	}
	s.ID = id

	updated, err := h.schedules.Update(ctx, s)
	if err != nil {
		h.writeError(w, logger, id, err, "failed to update schedule")
		return
	}
	writeJSON(w, logger, adapters.MapScheduleDomainToApi(updated))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)
	id := chi.URLParam(r, "id")

	if err := h.schedules.Delete(ctx, id); err != nil {
		h.writeError(w, logger, id, err, "failed to delete schedule")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodeSchedule reads a save request into a domain schedule. Active defaults
// to true when the field is omitted.
func decodeSchedule(w http.ResponseWriter, r *http.Request) (domain.Schedule, bool) {
	var req api.SaveScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return domain.Schedule{}, false
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	return domain.Schedule{
		DefinitionID: req.DefinitionId,
		Frequency:    domain.ScheduleFrequency(req.Frequency),
		HourUTC:      req.HourUTC,
		Weekday:      time.Weekday(req.Weekday),
		DayOfMonth:   req.DayOfMonth,
		Active:       active,
	}, true
}

func (h *Handler) writeError(w http.ResponseWriter, logger *zerolog.Logger, id string, err error, msg string) {
	switch {
	case errors.Is(err, schedulestore.ErrNotFound):
		http.Error(w, "schedule not found", http.StatusNotFound)
	case errors.Is(err, schedule.ErrInvalid):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, definitionstore.ErrNotFound):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		logger.Error().Err(err).Str("schedule_id", id).Msg(msg)
		http.Error(w, msg, http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, logger *zerolog.Logger, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error().
			Err(err).
			Msg("failed to encode response")
	}
}
