package adapters

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rcm-tools/revenue-atlas/pkg/models/api"
	"github.com/rcm-tools/revenue-atlas/pkg/models/domain"
	"github.com/rcm-tools/revenue-atlas/pkg/models/store"
)

func MapDefinitionDomainToApi(d domain.ReportDefinition) api.ReportDefinition {
	return api.ReportDefinition{
		Id:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		ReportType:  string(d.Type),
		Parameters:  MapReportParametersDomainToApi(d.Parameters),
		System:      d.System,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func MapDefinitionDomainToStore(d domain.ReportDefinition) (store.ReportDefinitionRecord, error) {
	params, err := json.Marshal(MapReportParametersDomainToApi(d.Parameters))
	if err != nil {
		return store.ReportDefinitionRecord{}, fmt.Errorf("failed to encode parameters: %w", err)
	}

	return store.ReportDefinitionRecord{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		ReportType:  string(d.Type),
		Parameters:  string(params),
		System:      d.System,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}, nil
}

func MapDefinitionStoreToDomain(rec store.ReportDefinitionRecord) (domain.ReportDefinition, error) {
	var params api.ReportParameters
	if err := json.Unmarshal([]byte(rec.Parameters), &params); err != nil {
		return domain.ReportDefinition{}, fmt.Errorf("failed to decode parameters for definition %s: %w", rec.ID, err)
	}

	return domain.ReportDefinition{
		ID:          rec.ID,
		Name:        rec.Name,
		Description: rec.Description,
		Type:        domain.ReportType(rec.ReportType),
		Parameters:  MapReportParametersApiToDomain(params),
		System:      rec.System,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}, nil
}

func MapScheduleDomainToApi(s domain.Schedule) api.Schedule {
	return api.Schedule{
		Id:           s.ID,
		DefinitionId: s.DefinitionID,
		Frequency:    string(s.Frequency),
		HourUTC:      s.HourUTC,
		Weekday:      int(s.Weekday),
		DayOfMonth:   s.DayOfMonth,
		Active:       s.Active,
		NextRunAt:    s.NextRunAt,
		LastRunAt:    s.LastRunAt,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

func MapScheduleDomainToStore(s domain.Schedule) store.ScheduleRecord {
	return store.ScheduleRecord{
		ID:           s.ID,
		DefinitionID: s.DefinitionID,
		Frequency:    string(s.Frequency),
		HourUTC:      s.HourUTC,
		Weekday:      int(s.Weekday),
		DayOfMonth:   s.DayOfMonth,
		Active:       s.Active,
		NextRunAt:    s.NextRunAt,
		LastRunAt:    s.LastRunAt,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

func MapScheduleStoreToDomain(rec store.ScheduleRecord) domain.Schedule {
	return domain.Schedule{
		ID:           rec.ID,
		DefinitionID: rec.DefinitionID,
		Frequency:    domain.ScheduleFrequency(rec.Frequency),
		HourUTC:      rec.HourUTC,
		Weekday:      time.Weekday(rec.Weekday),
		DayOfMonth:   rec.DayOfMonth,
		Active:       rec.Active,
		NextRunAt:    rec.NextRunAt,
		LastRunAt:    rec.LastRunAt,
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
	}
}

func MapRunDomainToApi(r domain.ReportRun) api.ReportRun {
	return api.ReportRun{
		Id:          r.ID,
		ReportType:  string(r.Type),
		ScheduleId:  r.ScheduleID,
		Parameters:  MapReportParametersDomainToApi(r.Parameters),
		Status:      string(r.Status),
		Error:       r.Error,
		StartedAt:   r.StartedAt,
		CompletedAt: r.CompletedAt,
	}
}

func MapRunDomainToStore(r domain.ReportRun) (store.ReportRunRecord, error) {
	params, err := json.Marshal(MapReportParametersDomainToApi(r.Parameters))
	if err != nil {
		return store.ReportRunRecord{}, fmt.Errorf("failed to encode parameters: %w", err)
	}

	return store.ReportRunRecord{
		ID:          r.ID,
		ReportType:  string(r.Type),
		ScheduleID:  r.ScheduleID,
		Parameters:  string(params),
		Status:      string(r.Status),
		Error:       r.Error,
		StartedAt:   r.StartedAt,
		CompletedAt: r.CompletedAt,
	}, nil
}

func MapRunStoreToDomain(rec store.ReportRunRecord) (domain.ReportRun, error) {
	var params api.ReportParameters
	if err := json.Unmarshal([]byte(rec.Parameters), &params); err != nil {
		return domain.ReportRun{}, fmt.Errorf("failed to decode parameters for run %s: %w", rec.ID, err)
	}

	return domain.ReportRun{
		ID:          rec.ID,
		Type:        domain.ReportType(rec.ReportType),
		ScheduleID:  rec.ScheduleID,
		Parameters:  MapReportParametersApiToDomain(params),
		Status:      domain.RunStatus(rec.Status),
		Error:       rec.Error,
		StartedAt:   rec.StartedAt,
		CompletedAt: rec.CompletedAt,
	}, nil
}
