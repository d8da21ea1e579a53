package schedule

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rcm-tools/revenue-atlas/pkg/adapters"
	"github.com/rcm-tools/revenue-atlas/pkg/models/domain"
	"github.com/rcm-tools/revenue-atlas/pkg/services/report"
	"github.com/rcm-tools/revenue-atlas/pkg/services/timeframe"
	"github.com/rcm-tools/revenue-atlas/pkg/store/duckdb/definitions"
	"github.com/rcm-tools/revenue-atlas/pkg/store/duckdb/schedules"
	"github.com/rs/zerolog"
)

const defaultPollInterval = 30 * time.Second

// ErrInvalid rejects schedules whose frequency fields do not line up.
var ErrInvalid = errors.New("invalid schedule")

type Settings struct {
	PollInterval time.Duration
}

type Controller interface {
	Create(ctx context.Context, s domain.Schedule) (domain.Schedule, error)
	Update(ctx context.Context, s domain.Schedule) (domain.Schedule, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (domain.Schedule, error)
	List(ctx context.Context) ([]domain.Schedule, error)
}

// DefaultController owns schedule CRUD plus the background runner that fires
// due schedules. A fired schedule re-resolves its definition's symbolic time
// frame at fire time, so "current month" means the month the report runs in.
type DefaultController struct {
	schedules   schedules.Store
	definitions definitions.Store
	reports     report.Service
	interval    time.Duration
	now         func() time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

func NewController(
	settings Settings,
	scheduleStore schedules.Store,
	definitionStore definitions.Store,
	reportService report.Service,
) *DefaultController {
	interval := settings.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &DefaultController{
		schedules:   scheduleStore,
		definitions: definitionStore,
		reports:     reportService,
		interval:    interval,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (ctrl *DefaultController) Create(ctx context.Context, s domain.Schedule) (domain.Schedule, error) {
	if err := ctrl.validate(ctx, s); err != nil {
		return domain.Schedule{}, err
	}

	now := ctrl.now()
	s.ID = uuid.New().String()
	s.NextRunAt = NextRun(s, now)
	s.LastRunAt = nil
	s.CreatedAt = now
	s.UpdatedAt = now

	if err := ctrl.schedules.Create(ctx, adapters.MapScheduleDomainToStore(s)); err != nil {
		return domain.Schedule{}, err
	}
	return s, nil
}

func (ctrl *DefaultController) Update(ctx context.Context, s domain.Schedule) (domain.Schedule, error) {
	if err := ctrl.validate(ctx, s); err != nil {
		return domain.Schedule{}, err
	}

	existing, err := ctrl.Get(ctx, s.ID)
	if err != nil {
		return domain.Schedule{}, err
	}

	now := ctrl.now()
	s.NextRunAt = NextRun(s, now)
	s.LastRunAt = existing.LastRunAt
	s.CreatedAt = existing.CreatedAt
	s.UpdatedAt = now

	if err := ctrl.schedules.Update(ctx, adapters.MapScheduleDomainToStore(s)); err != nil {
		return domain.Schedule{}, err
	}
	return s, nil
}

func (ctrl *DefaultController) Delete(ctx context.Context, id string) error {
	return ctrl.schedules.Delete(ctx, id)
}

func (ctrl *DefaultController) Get(ctx context.Context, id string) (domain.Schedule, error) {
	rec, err := ctrl.schedules.Get(ctx, id)
	if err != nil {
		return domain.Schedule{}, err
	}
	return adapters.MapScheduleStoreToDomain(rec), nil
}

func (ctrl *DefaultController) List(ctx context.Context) ([]domain.Schedule, error) {
	records, err := ctrl.schedules.List(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]domain.Schedule, 0, len(records))
	for _, rec := range records {
		result = append(result, adapters.MapScheduleStoreToDomain(rec))
	}
	return result, nil
}

func (ctrl *DefaultController) validate(ctx context.Context, s domain.Schedule) error {
	if !slices.Contains(domain.ScheduleFrequencies, s.Frequency) {
		return fmt.Errorf("%w: unknown frequency %q", ErrInvalid, s.Frequency)
	}
	if s.HourUTC < 0 || s.HourUTC > 23 {
		return fmt.Errorf("%w: hour %d out of range", ErrInvalid, s.HourUTC)
	}
	if s.Frequency == domain.FrequencyWeekly && (s.Weekday < 0 || s.Weekday > 6) {
		return fmt.Errorf("%w: weekday %d out of range", ErrInvalid, s.Weekday)
	}
	if (s.Frequency == domain.FrequencyMonthly || s.Frequency == domain.FrequencyQuarterly) &&
		(s.DayOfMonth < 1 || s.DayOfMonth > 31) {
		return fmt.Errorf("%w: day of month %d out of range", ErrInvalid, s.DayOfMonth)
	}

	if _, err := ctrl.definitions.Get(ctx, s.DefinitionID); err != nil {
		return fmt.Errorf("definition %s: %w", s.DefinitionID, err)
	}
	return nil
}

// Start launches the poll loop. Stop cancels it and waits for the loop to
// drain.
func (ctrl *DefaultController) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	ctrl.cancel = cancel
	ctrl.done = make(chan struct{})

	go func() {
		defer close(ctrl.done)

		ticker := time.NewTicker(ctrl.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				zerolog.Ctx(ctx).Info().Msg("schedule runner stopped")
				return
			case <-ticker.C:
				ctrl.fireDue(ctx)
			}
		}
	}()
}

func (ctrl *DefaultController) Stop() {
	if ctrl.cancel == nil {
		return
	}
	ctrl.cancel()
	<-ctrl.done
}

func (ctrl *DefaultController) fireDue(ctx context.Context) {
	now := ctrl.now()
	due, err := ctrl.schedules.ListDue(ctx, now)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to list due schedules")
		return
	}

	for _, rec := range due {
		ctrl.fire(ctx, adapters.MapScheduleStoreToDomain(rec), now)
	}
}

func (ctrl *DefaultController) fire(ctx context.Context, s domain.Schedule, now time.Time) {
	log := zerolog.Ctx(ctx).With().Str("schedule_id", s.ID).Str("definition_id", s.DefinitionID).Logger()

	// Advance the schedule first so a failing definition cannot refire on
	// every poll.
	next := NextRun(s, now)
	if err := ctrl.schedules.MarkRun(ctx, s.ID, now, next); err != nil {
		log.Error().Err(err).Msg("failed to advance schedule")
		return
	}

	defRec, err := ctrl.definitions.Get(ctx, s.DefinitionID)
	if err != nil {
		log.Error().Err(err).Msg("failed to load definition for schedule")
		return
	}
	def, err := adapters.MapDefinitionStoreToDomain(defRec)
	if err != nil {
		log.Error().Err(err).Msg("failed to decode definition for schedule")
		return
	}

	fireParams := def.Parameters.Clone()
	fireParams.DateRange = timeframe.Resolve(fireParams.TimeFrame, now, &def.Parameters.DateRange)
	fireParams.ComparisonDateRange = timeframe.ResolveComparison(fireParams.DateRange, fireParams.ComparisonType)

	if _, err := ctrl.reports.Generate(ctx, report.GenerateRequest{
		Type:       def.Type,
		Parameters: fireParams,
		ScheduleID: s.ID,
	}); err != nil {
		log.Error().Err(err).Msg("scheduled report failed")
		return
	}

	log.Info().Time("next_run_at", next).Msg("scheduled report generated")
}
