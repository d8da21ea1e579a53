package reports

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/rcm-tools/revenue-atlas/pkg/adapters"
	"github.com/rcm-tools/revenue-atlas/pkg/models/api"
	"github.com/rcm-tools/revenue-atlas/pkg/models/domain"
	"github.com/rcm-tools/revenue-atlas/pkg/services/report"
	"github.com/rcm-tools/revenue-atlas/pkg/store/duckdb/runs"
)

const defaultRunLimit = 20

type Handler struct {
	reports report.Service
}

func NewHandler(reports report.Service) *Handler {
	return &Handler{
		reports: reports,
	}
}

func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())
	writeJSON(w, logger, adapters.MapReportCatalogToApi())
}

func (h *Handler) GetDefaultParameters(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)
	rt := domain.ReportType(chi.URLParam(r, "type"))

	defaults := h.reports.DefaultParameters(ctx, rt)
	writeJSON(w, logger, adapters.MapReportParametersDomainToApi(defaults))
}

func (h *Handler) ResolveParameters(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	var req api.ResolveParametersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	resolveReq := report.ResolveRequest{Type: domain.ReportType(req.ReportType)}
	if req.TimeFrame != nil {
		tf := domain.TimeFrame(*req.TimeFrame)
		resolveReq.TimeFrame = &tf
	}
	if req.ComparisonType != nil {
		ct := domain.ComparisonType(*req.ComparisonType)
		resolveReq.ComparisonType = &ct
	}
	if req.CustomRange != nil {
		cr := adapters.MapDateRangeApiToDomain(*req.CustomRange)
		resolveReq.CustomRange = &cr
	}

	resolved := h.reports.ResolveParameters(ctx, resolveReq)
	writeJSON(w, logger, adapters.MapReportParametersDomainToApi(resolved))
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	var req api.GenerateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	rt := domain.ReportType(req.ReportType)
	var reportParams domain.ReportParameters
	if req.Parameters != nil {
		reportParams = adapters.MapReportParametersApiToDomain(*req.Parameters)
	} else {
		reportParams = h.reports.DefaultParameters(ctx, rt)
	}

	generated, err := h.reports.Generate(ctx, report.GenerateRequest{
		Type:       rt,
		Parameters: reportParams,
	})
	if err != nil {
		if errors.Is(err, report.ErrInvalidRange) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.Error().
			Err(err).
			Str("report_type", string(rt)).
			Msg("failed to generate report")
		http.Error(w, "failed to generate report", http.StatusInternalServerError)
		return
	}

	writeJSON(w, logger, adapters.MapReportDomainToApi(*generated))
}

func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	limit := defaultRunLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			http.Error(w, "invalid 'limit' value. Expected a positive integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	reportRuns, err := h.reports.ListRuns(ctx, limit)
	if err != nil {
		logger.Error().Err(err).Msg("failed to list report runs")
		http.Error(w, "failed to list report runs", http.StatusInternalServerError)
		return
	}

	response := make([]api.ReportRun, 0, len(reportRuns))
	for _, run := range reportRuns {
		response = append(response, adapters.MapRunDomainToApi(run))
	}
	writeJSON(w, logger, response)
}

func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)
	id := chi.URLParam(r, "id")

	run, err := h.reports.GetRun(ctx, id)
	if err != nil {
		if errors.Is(err, runs.ErrNotFound) {
			http.Error(w, "report run not found", http.StatusNotFound)
			return
		}
		logger.Error().Err(err).Str("run_id", id).Msg("failed to fetch report run")
		http.Error(w, "failed to fetch report run", http.StatusInternalServerError)
		return
	}

	writeJSON(w, logger, adapters.MapRunDomainToApi(*run))
}

func writeJSON(w http.ResponseWriter, logger *zerolog.Logger, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error().
			Err(err).
			Msg("failed to encode response")
	}
}
