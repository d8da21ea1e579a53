package definition

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rcm-tools/revenue-atlas/pkg/adapters"
	"github.com/rcm-tools/revenue-atlas/pkg/models/domain"
	"github.com/rcm-tools/revenue-atlas/pkg/store/duckdb/definitions"
)

// ErrReadOnly rejects updates and deletes against seeded system definitions.
var ErrReadOnly = errors.New("read only")

var ErrNameRequired = errors.New("definition name is required")

type Service interface {
	List(ctx context.Context) ([]domain.ReportDefinition, error)
	Get(ctx context.Context, id string) (domain.ReportDefinition, error)
	Create(ctx context.Context, d domain.ReportDefinition) (domain.ReportDefinition, error)
	Update(ctx context.Context, d domain.ReportDefinition) (domain.ReportDefinition, error)
	Delete(ctx context.Context, id string) error
}

type definitionService struct {
	store definitions.Store
	now   func() time.Time
}

func NewService(store definitions.Store) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("definition store is nil")
	}
	return &definitionService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *definitionService) List(ctx context.Context) ([]domain.ReportDefinition, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]domain.ReportDefinition, 0, len(records))
	for _, rec := range records {
		def, err := adapters.MapDefinitionStoreToDomain(rec)
		if err != nil {
			return nil, err
		}
		result = append(result, def)
	}
	return result, nil
}

func (s *definitionService) Get(ctx context.Context, id string) (domain.ReportDefinition, error) {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return domain.ReportDefinition{}, err
	}
	return adapters.MapDefinitionStoreToDomain(rec)
}

func (s *definitionService) Create(ctx context.Context, d domain.ReportDefinition) (domain.ReportDefinition, error) {
	if d.Name == "" {
		return domain.ReportDefinition{}, ErrNameRequired
	}

	now := s.now()
	d.ID = uuid.New().String()
	d.System = false
	d.CreatedAt = now
	d.UpdatedAt = now

	rec, err := adapters.MapDefinitionDomainToStore(d)
	if err != nil {
		return domain.ReportDefinition{}, err
	}
	if err := s.store.Create(ctx, rec); err != nil {
		return domain.ReportDefinition{}, err
	}
	return d, nil
}

func (s *definitionService) Update(ctx context.Context, d domain.ReportDefinition) (domain.ReportDefinition, error) {
	if d.Name == "" {
		return domain.ReportDefinition{}, ErrNameRequired
	}

	existing, err := s.Get(ctx, d.ID)
	if err != nil {
		return domain.ReportDefinition{}, err
	}
	if existing.System {
		return domain.ReportDefinition{}, fmt.Errorf("system definition %s: %w", d.ID, ErrReadOnly)
	}

	d.System = false
	d.CreatedAt = existing.CreatedAt
	d.UpdatedAt = s.now()

	rec, err := adapters.MapDefinitionDomainToStore(d)
	if err != nil {
		return domain.ReportDefinition{}, err
	}
	if err := s.store.Update(ctx, rec); err != nil {
		return domain.ReportDefinition{}, err
	}
	return d, nil
}

func (s *definitionService) Delete(ctx context.Context, id string) error {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if existing.System {
		return fmt.Errorf("system definition %s: %w", id, ErrReadOnly)
	}
	return s.store.Delete(ctx, id)
}
