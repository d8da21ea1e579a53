package report

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rcm-tools/revenue-atlas/pkg/adapters"
	"github.com/rcm-tools/revenue-atlas/pkg/models/domain"
	"github.com/rcm-tools/revenue-atlas/pkg/services/params"
	"github.com/rcm-tools/revenue-atlas/pkg/services/timeframe"
	"github.com/rcm-tools/revenue-atlas/pkg/store/duckdb/runs"
	"github.com/rs/zerolog"
)

// ResolveRequest carries the optional overrides applied on top of a report
// type's default parameters.
type ResolveRequest struct {
	Type           domain.ReportType
	TimeFrame      *domain.TimeFrame
	ComparisonType *domain.ComparisonType
	CustomRange    *domain.DateRange
}

// GenerateRequest asks for one report run. ScheduleID is empty for ad hoc
// requests.
type GenerateRequest struct {
	Type       domain.ReportType
	Parameters domain.ReportParameters
	ScheduleID string
}

type Service interface {
	DefaultParameters(ctx context.Context, rt domain.ReportType) domain.ReportParameters
	ResolveParameters(ctx context.Context, req ResolveRequest) domain.ReportParameters
	Generate(ctx context.Context, req GenerateRequest) (*domain.Report, error)
	ListRuns(ctx context.Context, limit int) ([]domain.ReportRun, error)
	GetRun(ctx context.Context, id string) (*domain.ReportRun, error)
}

type reportService struct {
	generator *Generator
	runs      runs.Store
	now       func() time.Time
}

func NewService(generator *Generator, runStore runs.Store) (Service, error) {
	if generator == nil {
		return nil, fmt.Errorf("generator is nil")
	}
	if runStore == nil {
		return nil, fmt.Errorf("run store is nil")
	}
	return &reportService{
		generator: generator,
		runs:      runStore,
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *reportService) DefaultParameters(_ context.Context, rt domain.ReportType) domain.ReportParameters {
	return params.Defaults(rt, s.now())
}

// Resolve starts from the type's defaults and layers the requested time frame
// and comparison on top. Both ranges are anchored to the same instant.
func Resolve(req ResolveRequest, now time.Time) domain.ReportParameters {
	resolved := params.Defaults(req.Type, now)

	if req.TimeFrame != nil {
		resolved.TimeFrame = *req.TimeFrame
		resolved.DateRange = timeframe.Resolve(*req.TimeFrame, now, req.CustomRange)
		resolved.ComparisonDateRange = timeframe.ResolveComparison(resolved.DateRange, resolved.ComparisonType)
	}
	if req.ComparisonType != nil {
		resolved.ComparisonType = *req.ComparisonType
		resolved.ComparisonDateRange = timeframe.ResolveComparison(resolved.DateRange, *req.ComparisonType)
	}
	return resolved
}

func (s *reportService) ResolveParameters(_ context.Context, req ResolveRequest) domain.ReportParameters {
	return Resolve(req, s.now())
}

func (s *reportService) Generate(ctx context.Context, req GenerateRequest) (*domain.Report, error) {
	now := s.now()

	reportParams := req.Parameters
	if !reportParams.DateRange.IsResolved() {
		reportParams.DateRange = timeframe.Resolve(reportParams.TimeFrame, now, nil)
	}
	if !reportParams.ComparisonDateRange.IsResolved() {
		reportParams.ComparisonDateRange = timeframe.ResolveComparison(reportParams.DateRange, reportParams.ComparisonType)
	}

	run := domain.ReportRun{
		ID:         uuid.New().String(),
		Type:       req.Type,
		ScheduleID: req.ScheduleID,
		Parameters: reportParams,
		Status:     domain.RunStatusPending,
		StartedAt:  now,
	}
	rec, err := adapters.MapRunDomainToStore(run)
	if err != nil {
		return nil, err
	}
	if err := s.runs.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to record report run: %w", err)
	}

	generated, genErr := s.generator.Generate(ctx, req.Type, reportParams, now)
	if genErr != nil {
		message := genErr.Error()
		if err := s.runs.Complete(ctx, run.ID, string(domain.RunStatusFailed), &message, s.now()); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("run_id", run.ID).Msg("failed to mark report run failed")
		}
		return nil, genErr
	}

	if err := s.runs.Complete(ctx, run.ID, string(domain.RunStatusCompleted), nil, s.now()); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("run_id", run.ID).Msg("failed to mark report run completed")
	}
	return generated, nil
}

func (s *reportService) ListRuns(ctx context.Context, limit int) ([]domain.ReportRun, error) {
	records, err := s.runs.List(ctx, limit)
	if err != nil {
		return nil, err
	}

	result := make([]domain.ReportRun, 0, len(records))
	for _, rec := range records {
		run, err := adapters.MapRunStoreToDomain(rec)
		if err != nil {
			return nil, err
		}
		result = append(result, run)
	}
	return result, nil
}

func (s *reportService) GetRun(ctx context.Context, id string) (*domain.ReportRun, error) {
	rec, err := s.runs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	run, err := adapters.MapRunStoreToDomain(rec)
	if err != nil {
		return nil, err
	}
	return &run, nil
}
