package definition

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/rcm-tools/revenue-atlas/pkg/adapters"
	"github.com/rcm-tools/revenue-atlas/pkg/models/domain"
	"github.com/rcm-tools/revenue-atlas/pkg/store/duckdb/definitions"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

//go:embed system_definitions.yaml
var systemCatalog []byte

type seedFile struct {
	Definitions []seedDefinition `yaml:"definitions"`
}

type seedDefinition struct {
	ID          string         `yaml:"id"`
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	ReportType  string         `yaml:"report_type"`
	Parameters  seedParameters `yaml:"parameters"`
}

type seedParameters struct {
	TimeFrame        string                 `yaml:"time_frame"`
	ComparisonType   string                 `yaml:"comparison_type"`
	GroupBy          string                 `yaml:"group_by"`
	SortBy           string                 `yaml:"sort_by"`
	Limit            int                    `yaml:"limit"`
	CustomParameters map[string]interface{} `yaml:"custom_parameters"`
}

// Seed installs the shipped system templates, skipping any that already
// exist. Safe to run on every boot.
func Seed(ctx context.Context, store definitions.Store, now time.Time) error {
	var catalog seedFile
	if err := yaml.Unmarshal(systemCatalog, &catalog); err != nil {
		return fmt.Errorf("failed to parse system definitions: %w", err)
	}

	log := zerolog.Ctx(ctx)
	seeded := 0
	for _, seed := range catalog.Definitions {
		if _, err := store.Get(ctx, seed.ID); err == nil {
			continue
		} else if !errors.Is(err, definitions.ErrNotFound) {
			return err
		}

		rec, err := adapters.MapDefinitionDomainToStore(seed.toDomain(now))
		if err != nil {
			return err
		}
		if err := store.Create(ctx, rec); err != nil {
			return fmt.Errorf("failed to seed definition %s: %w", seed.ID, err)
		}
		seeded++
	}

	if seeded > 0 {
		log.Info().Int("definitions", seeded).Msg("seeded system report definitions")
	}
	return nil
}

func (s seedDefinition) toDomain(now time.Time) domain.ReportDefinition {
	custom := s.Parameters.CustomParameters
	if custom == nil {
		custom = map[string]interface{}{}
	}

	return domain.ReportDefinition{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		Type:        domain.ReportType(s.ReportType),
		Parameters: domain.ReportParameters{
			TimeFrame:        domain.TimeFrame(s.Parameters.TimeFrame),
			ComparisonType:   domain.ComparisonType(s.Parameters.ComparisonType),
			ProgramIDs:       []string{},
			PayerIDs:         []string{},
			FacilityIDs:      []string{},
			ServiceTypeIDs:   []string{},
			GroupBy:          s.Parameters.GroupBy,
			SortBy:           s.Parameters.SortBy,
			Limit:            s.Parameters.Limit,
			CustomParameters: custom,
		},
		System:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
