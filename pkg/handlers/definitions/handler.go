package definitions

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
	"github.com/rcm-tools/revenue-atlas/pkg/services/definition"
	"github.com/rcm-tools/revenue-atlas/pkg/services/params"
	definitionstore "github.com/rcm-tools/revenue-atlas/pkg/store/duckdb/definitions"
)

type Handler struct {
	definitions definition.Service
}

func NewHandler(definitions definition.Service) *Handler {
	return &Handler{
		definitions: definitions,
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	defs, err := h.definitions.List(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to list definitions")
		http.Error(w, "failed to list definitions", http.StatusInternalServerError)
		return
	}

	response := make([]api.ReportDefinition, 0, len(defs))
	for _, def := range defs {
		response = append(response, adapters.MapDefinitionDomainToApi(def))
	}
	writeJSON(w, logger, response)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)
	id := chi.URLParam(r, "id")

	def, err := h.definitions.Get(ctx, id)
	if err != nil {
		h.writeError(w, logger, id, err, "failed to fetch definition")
		return
	}
	writeJSON(w, logger, adapters.MapDefinitionDomainToApi(def))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	def, ok := decodeDefinition(w, r)
	if !ok {
		return
	}

	created, err := h.definitions.Create(ctx, def)
	if err != nil {
		h.writeError(w, logger, "", err, "failed to create definition")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(adapters.MapDefinitionDomainToApi(created)); err != nil {
		logger.Error().Err(err).Msg("failed to encode response")
	}
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)
	id := chi.URLParam(r, "id")

	def, ok := decodeDefinition(w, r)
	if !ok {
		return
	}
	def.ID = id

	updated, err := h.definitions.Update(ctx, def)
	if err != nil {
		h.writeError(w, logger, id, err, "failed to update definition")
		return
	}
	writeJSON(w, logger, adapters.MapDefinitionDomainToApi(updated))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)
	id := chi.URLParam(r, "id")

	if err := h.definitions.Delete(ctx, id); err != nil {
		h.writeError(w, logger, id, err, "failed to delete definition")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodeDefinition reads a save request into a domain definition. Omitted
// parameters fall back to the report type's defaults.
func decodeDefinition(w http.ResponseWriter, r *http.Request) (domain.ReportDefinition, bool) {
	var req api.SaveDefinitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return domain.ReportDefinition{}, false
	}

	rt := domain.ReportType(req.ReportType)
	var reportParams domain.ReportParameters
	if req.Parameters != nil {
		reportParams = adapters.MapReportParametersApiToDomain(*req.Parameters)
	} else {
		reportParams = params.Defaults(rt, time.Now().UTC())
	}

	return domain.ReportDefinition{
		Name:        req.Name,
		Description: req.Description,
		Type:        rt,
		Parameters:  reportParams,
	}, true
}

func (h *Handler) writeError(w http.ResponseWriter, logger *zerolog.Logger, id string, err error, msg string) {
	switch {
	case errors.Is(err, definitionstore.ErrNotFound):
		http.Error(w, "definition not found", http.StatusNotFound)
	case errors.Is(err, definition.ErrReadOnly):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, definition.ErrNameRequired):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		logger.Error().Err(err).Str("definition_id", id).Msg(msg)
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
