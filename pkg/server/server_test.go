package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rcm-tools/revenue-atlas/pkg/adapters"
	"github.com/rcm-tools/revenue-atlas/pkg/models/api"
	"github.com/rcm-tools/revenue-atlas/pkg/models/domain"
	"github.com/rcm-tools/revenue-atlas/pkg/services/definition"
	"github.com/rcm-tools/revenue-atlas/pkg/services/report"
	"github.com/rcm-tools/revenue-atlas/pkg/services/schedule"
	syncservice "github.com/rcm-tools/revenue-atlas/pkg/services/sync"
	"github.com/rcm-tools/revenue-atlas/pkg/store/duckdb/runs"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockReportService struct {
	mock.Mock
}

func (m *mockReportService) DefaultParameters(ctx context.Context, rt domain.ReportType) domain.ReportParameters {
	args := m.Called(ctx, rt)
	return args.Get(0).(domain.ReportParameters)
}

func (m *mockReportService) ResolveParameters(ctx context.Context, req report.ResolveRequest) domain.ReportParameters {
	args := m.Called(ctx, req)
	return args.Get(0).(domain.ReportParameters)
}

func (m *mockReportService) Generate(ctx context.Context, req report.GenerateRequest) (*domain.Report, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Report), args.Error(1)
}

func (m *mockReportService) ListRuns(ctx context.Context, limit int) ([]domain.ReportRun, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.ReportRun), args.Error(1)
}

func (m *mockReportService) GetRun(ctx context.Context, id string) (*domain.ReportRun, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReportRun), args.Error(1)
}

type mockDefinitionService struct {
	mock.Mock
}

func (m *mockDefinitionService) List(ctx context.Context) ([]domain.ReportDefinition, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.ReportDefinition), args.Error(1)
}

func (m *mockDefinitionService) Get(ctx context.Context, id string) (domain.ReportDefinition, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.ReportDefinition), args.Error(1)
}

func (m *mockDefinitionService) Create(ctx context.Context, d domain.ReportDefinition) (domain.ReportDefinition, error) {
	args := m.Called(ctx, d)
	return args.Get(0).(domain.ReportDefinition), args.Error(1)
}

func (m *mockDefinitionService) Update(ctx context.Context, d domain.ReportDefinition) (domain.ReportDefinition, error) {
	args := m.Called(ctx, d)
	return args.Get(0).(domain.ReportDefinition), args.Error(1)
}

func (m *mockDefinitionService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockScheduleController struct {
	mock.Mock
}

func (m *mockScheduleController) Create(ctx context.Context, s domain.Schedule) (domain.Schedule, error) {
	args := m.Called(ctx, s)
	return args.Get(0).(domain.Schedule), args.Error(1)
}

func (m *mockScheduleController) Update(ctx context.Context, s domain.Schedule) (domain.Schedule, error) {
	args := m.Called(ctx, s)
	return args.Get(0).(domain.Schedule), args.Error(1)
}

func (m *mockScheduleController) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockScheduleController) Get(ctx context.Context, id string) (domain.Schedule, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Schedule), args.Error(1)
}

func (m *mockScheduleController) List(ctx context.Context) ([]domain.Schedule, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Schedule), args.Error(1)
}

type mockSyncController struct {
	mock.Mock
}

func (m *mockSyncController) Start(ctx context.Context, profile string) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *mockSyncController) Cancel(ctx context.Context, profile string) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *mockSyncController) Status(ctx context.Context) ([]domain.SyncState, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.SyncState), args.Error(1)
}

func strPtr(s string) *string {
	return &s
}

func paramsFixture() domain.ReportParameters {
	return domain.ReportParameters{
		TimeFrame:           domain.TimeFrameCurrentMonth,
		DateRange:           domain.NewDateRange("2024-06-01", "2024-06-30"),
		ComparisonType:      domain.ComparisonPreviousPeriod,
		ComparisonDateRange: domain.NewDateRange("2024-05-02", "2024-05-31"),
		ProgramIDs:          []string{},
		PayerIDs:            []string{},
		FacilityIDs:         []string{},
		ServiceTypeIDs:      []string{},
		GroupBy:             "program",
		SortBy:              "revenue",
		Limit:               10,
		CustomParameters:    map[string]interface{}{},
	}
}

func apiParamsFixture() api.ReportParameters {
	return api.ReportParameters{
		TimeFrame:           "current_month",
		DateRange:           api.DateRange{StartDate: strPtr("2024-06-01"), EndDate: strPtr("2024-06-30")},
		ComparisonType:      "previous_period",
		ComparisonDateRange: api.DateRange{StartDate: strPtr("2024-05-02"), EndDate: strPtr("2024-05-31")},
		ProgramIds:          []string{},
		PayerIds:            []string{},
		FacilityIds:         []string{},
		ServiceTypeIds:      []string{},
		GroupBy:             "program",
		SortBy:              "revenue",
		Limit:               10,
		CustomParameters:    map[string]interface{}{},
	}
}

func TestWebAPI_Endpoints(t *testing.T) {
	logger := zerolog.New(zerolog.NewTestWriter(t))

	mockReports := new(mockReportService)
	mockDefinitions := new(mockDefinitionService)
	mockSchedules := new(mockScheduleController)
	mockSyncs := new(mockSyncController)

	webAPI := NewWebAPI(logger, Config{
		Addr: ":8080",
		Dependencies: Dependencies{
			Reports:     mockReports,
			Definitions: mockDefinitions,
			Schedules:   mockSchedules,
			Syncs:       mockSyncs,
		},
	})
	testServer := httptest.NewServer(webAPI.Router())
	defer testServer.Close()

	generatedAt := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)
	periodStart := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		setupMocks     func()
		expectedStatus int
		expected       interface{}
		parseResponse  func([]byte) (interface{}, error)
	}{
		{
			name:           "GetCatalog",
			method:         http.MethodGet,
			path:           "/api/v1/reports/types",
			setupMocks:     func() {},
			expectedStatus: http.StatusOK,
			expected:       adapters.MapReportCatalogToApi(),
			parseResponse:  unmarshalResponse[api.ReportCatalog](),
		},
		{
			name:   "GetDefaultParameters",
			method: http.MethodGet,
			path:   "/api/v1/reports/types/revenue_summary/parameters",
			setupMocks: func() {
				mockReports.On("DefaultParameters", mock.Anything, domain.ReportTypeRevenueSummary).
					Return(paramsFixture())
			},
			expectedStatus: http.StatusOK,
			expected:       apiParamsFixture(),
			parseResponse:  unmarshalResponse[api.ReportParameters](),
		},
		{
			name:   "ResolveParameters",
			method: http.MethodPost,
			path:   "/api/v1/reports/parameters/resolve",
			body:   `{"report_type":"revenue_summary","time_frame":"current_month"}`,
			setupMocks: func() {
				tf := domain.TimeFrameCurrentMonth
				mockReports.On("ResolveParameters", mock.Anything, report.ResolveRequest{
					Type:      domain.ReportTypeRevenueSummary,
					TimeFrame: &tf,
				}).Return(paramsFixture())
			},
			expectedStatus: http.StatusOK,
			expected:       apiParamsFixture(),
			parseResponse:  unmarshalResponse[api.ReportParameters](),
		},
		{
			name:   "ResolveParameters_MalformedBody",
			method: http.MethodPost,
			path:   "/api/v1/reports/parameters/resolve",
			body:   `{"report_type":`,
			setupMocks: func() {
			},
			expectedStatus: http.StatusBadRequest,
			expected:       "invalid request body\n",
			parseResponse:  textResponse(),
		},
		{
			name:   "GenerateReport",
			method: http.MethodPost,
			path:   "/api/v1/reports/generate",
			body:   `{"report_type":"revenue_summary"}`,
			setupMocks: func() {
				mockReports.On("DefaultParameters", mock.Anything, domain.ReportTypeRevenueSummary).
					Return(paramsFixture())
				mockReports.On("Generate", mock.Anything, report.GenerateRequest{
					Type:       domain.ReportTypeRevenueSummary,
					Parameters: paramsFixture(),
				}).Return(&domain.Report{
					Title:       "Revenue Summary (2024-06-01 to 2024-06-30)",
					Type:        domain.ReportTypeRevenueSummary,
					Period:      domain.TimePeriod{Start: periodStart, End: periodEnd, Duration: 30},
					Sections:    []domain.ReportSection{},
					TotalAmount: 1100,
					Currency:    "USD",
					GeneratedAt: generatedAt,
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expected: api.Report{
				Title:       "Revenue Summary (2024-06-01 to 2024-06-30)",
				ReportType:  "revenue_summary",
				Period:      api.TimePeriod{Start: periodStart, End: periodEnd, Duration: 30},
				Sections:    []api.ReportSection{},
				TotalAmount: 1100,
				Currency:    "USD",
				GeneratedAt: generatedAt,
			},
			parseResponse: unmarshalResponse[api.Report](),
		},
		{
			name:   "GenerateReport_InvalidRange",
			method: http.MethodPost,
			path:   "/api/v1/reports/generate",
			body:   `{"report_type":"custom","parameters":` + mustMarshal(t, customRangeParams("junk", "2024-06-30")) + `}`,
			setupMocks: func() {
				mockReports.On("Generate", mock.Anything, mock.MatchedBy(func(req report.GenerateRequest) bool {
					return req.Type == domain.ReportTypeCustom
				})).Return(nil, fmt.Errorf("invalid start date %q: %w", "junk", report.ErrInvalidRange))
			},
			expectedStatus: http.StatusBadRequest,
			expected:       "invalid start date \"junk\": invalid date range\n",
			parseResponse:  textResponse(),
		},
		{
			name:   "ListRuns",
			method: http.MethodGet,
			path:   "/api/v1/reports/runs",
			setupMocks: func() {
				mockReports.On("ListRuns", mock.Anything, 20).
					Return([]domain.ReportRun{{
						ID:         "run-1",
						Type:       domain.ReportTypeRevenueSummary,
						Parameters: paramsFixture(),
						Status:     domain.RunStatusCompleted,
						StartedAt:  generatedAt,
					}}, nil)
			},
			expectedStatus: http.StatusOK,
			expected: []api.ReportRun{{
				Id:         "run-1",
				ReportType: "revenue_summary",
				Parameters: apiParamsFixture(),
				Status:     "completed",
				StartedAt:  generatedAt,
			}},
			parseResponse: unmarshalResponse[[]api.ReportRun](),
		},
		{
			name:   "ListRuns_InvalidLimit",
			method: http.MethodGet,
			path:   "/api/v1/reports/runs?limit=zero",
			setupMocks: func() {
			},
			expectedStatus: http.StatusBadRequest,
			expected:       "invalid 'limit' value. Expected a positive integer\n",
			parseResponse:  textResponse(),
		},
		{
			name:   "GetRun_NotFound",
			method: http.MethodGet,
			path:   "/api/v1/reports/runs/ghost",
			setupMocks: func() {
				mockReports.On("GetRun", mock.Anything, "ghost").
					Return(nil, runs.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expected:       "report run not found\n",
			parseResponse:  textResponse(),
		},
		{
			name:   "CreateDefinition",
			method: http.MethodPost,
			path:   "/api/v1/definitions",
			body:   `{"name":"Monthly Revenue","report_type":"revenue_summary","parameters":` + mustMarshal(t, apiParamsFixture()) + `}`,
			setupMocks: func() {
				mockDefinitions.On("Create", mock.Anything, mock.MatchedBy(func(d domain.ReportDefinition) bool {
					return d.Name == "Monthly Revenue" && d.Type == domain.ReportTypeRevenueSummary
				})).Return(domain.ReportDefinition{
					ID:         "def-1",
					Name:       "Monthly Revenue",
					Type:       domain.ReportTypeRevenueSummary,
					Parameters: paramsFixture(),
					CreatedAt:  generatedAt,
					UpdatedAt:  generatedAt,
				}, nil)
			},
			expectedStatus: http.StatusCreated,
			expected: api.ReportDefinition{
				Id:         "def-1",
				Name:       "Monthly Revenue",
				ReportType: "revenue_summary",
				Parameters: apiParamsFixture(),
				CreatedAt:  generatedAt,
				UpdatedAt:  generatedAt,
			},
			parseResponse: unmarshalResponse[api.ReportDefinition](),
		},
		{
			name:   "CreateDefinition_MissingName",
			method: http.MethodPost,
			path:   "/api/v1/definitions",
			body:   `{"name":"","report_type":"revenue_summary","parameters":` + mustMarshal(t, apiParamsFixture()) + `}`,
			setupMocks: func() {
				mockDefinitions.On("Create", mock.Anything, mock.MatchedBy(func(d domain.ReportDefinition) bool {
					return d.Name == ""
				})).Return(domain.ReportDefinition{}, definition.ErrNameRequired)
			},
			expectedStatus: http.StatusBadRequest,
			expected:       "definition name is required\n",
			parseResponse:  textResponse(),
		},
		{
			name:   "UpdateSystemDefinition",
			method: http.MethodPut,
			path:   "/api/v1/definitions/system-monthly-revenue",
			body:   `{"name":"Hijacked","report_type":"revenue_summary","parameters":` + mustMarshal(t, apiParamsFixture()) + `}`,
			setupMocks: func() {
				mockDefinitions.On("Update", mock.Anything, mock.MatchedBy(func(d domain.ReportDefinition) bool {
					return d.ID == "system-monthly-revenue"
				})).Return(domain.ReportDefinition{}, fmt.Errorf("system definition %s: %w", "system-monthly-revenue", definition.ErrReadOnly))
			},
			expectedStatus: http.StatusForbidden,
			expected:       "system definition system-monthly-revenue: read only\n",
			parseResponse:  textResponse(),
		},
		{
			name:   "CreateSchedule_InvalidFrequency",
			method: http.MethodPost,
			path:   "/api/v1/schedules",
			body:   `{"definition_id":"def-1","frequency":"hourly","hour_utc":9}`,
			setupMocks: func() {
				mockSchedules.On("Create", mock.Anything, mock.MatchedBy(func(s domain.Schedule) bool {
					return s.Frequency == domain.ScheduleFrequency("hourly")
				})).Return(domain.Schedule{}, fmt.Errorf("%w: unknown frequency %q", schedule.ErrInvalid, "hourly"))
			},
			expectedStatus: http.StatusBadRequest,
			expected:       "invalid schedule: unknown frequency \"hourly\"\n",
			parseResponse:  textResponse(),
		},
		{
			name:   "StartSync",
			method: http.MethodPost,
			path:   "/api/v1/sync/prod/start",
			setupMocks: func() {
				mockSyncs.On("Start", mock.Anything, "prod").Return(nil)
			},
			expectedStatus: http.StatusAccepted,
			expected:       map[string]string{"profile": "prod", "status": "pending"},
			parseResponse:  unmarshalResponse[map[string]string](),
		},
		{
			name:   "StartSync_AlreadyRunning",
			method: http.MethodPost,
			path:   "/api/v1/sync/busy/start",
			setupMocks: func() {
				mockSyncs.On("Start", mock.Anything, "busy").
					Return(fmt.Errorf("%w for profile %s", syncservice.ErrAlreadyRunning, "busy"))
			},
			expectedStatus: http.StatusConflict,
			expected:       "sync already running for profile busy\n",
			parseResponse:  textResponse(),
		},
		{
			name:   "StopSync_NotRunning",
			method: http.MethodPost,
			path:   "/api/v1/sync/idle/stop",
			setupMocks: func() {
				mockSyncs.On("Cancel", mock.Anything, "idle").
					Return(fmt.Errorf("%w for profile %s", syncservice.ErrNotRunning, "idle"))
			},
			expectedStatus: http.StatusNotFound,
			expected:       "sync not running for profile idle\n",
			parseResponse:  textResponse(),
		},
		{
			name:   "ListSyncStates",
			method: http.MethodGet,
			path:   "/api/v1/sync",
			setupMocks: func() {
				mockSyncs.On("Status", mock.Anything).
					Return([]domain.SyncState{{
						Profile:   "prod",
						Status:    domain.SyncStatusFinished,
						UpdatedAt: generatedAt,
					}}, nil)
			},
			expectedStatus: http.StatusOK,
			expected: []api.SyncState{{
				Profile:   "prod",
				Status:    "finished",
				UpdatedAt: generatedAt,
			}},
			parseResponse: unmarshalResponse[[]api.SyncState](),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.setupMocks()

			req, err := http.NewRequest(tc.method, testServer.URL+tc.path, strings.NewReader(tc.body))
			require.NoError(t, err, "Failed to build request")
			if tc.body != "" {
				req.Header.Set("Content-Type", "application/json")
			}

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err, "Failed to send request")
			defer resp.Body.Close()

			assert.Equal(t, tc.expectedStatus, resp.StatusCode, "Status code mismatch")

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err, "Failed to read response body")

			actual, err := tc.parseResponse(body)
			require.NoError(t, err, "Failed to parse response")

			assert.Equal(t, tc.expected, actual)
		})
	}
}

func TestWebAPI_DeleteDefinition(t *testing.T) {
	logger := zerolog.New(zerolog.NewTestWriter(t))

	mockDefinitions := new(mockDefinitionService)
	mockDefinitions.On("Delete", mock.Anything, "def-1").Return(nil)

	webAPI := NewWebAPI(logger, Config{
		Dependencies: Dependencies{Definitions: mockDefinitions},
	})
	testServer := httptest.NewServer(webAPI.Router())
	defer testServer.Close()

	req, err := http.NewRequest(http.MethodDelete, testServer.URL+"/api/v1/definitions/def-1", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	mockDefinitions.AssertExpectations(t)
}

func customRangeParams(start, end string) api.ReportParameters {
	p := apiParamsFixture()
	p.TimeFrame = "custom"
	p.DateRange = api.DateRange{StartDate: &start, EndDate: &end}
	return p
}

func mustMarshal(t *testing.T, v interface{}) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

func textResponse() func([]byte) (interface{}, error) {
	return func(data []byte) (interface{}, error) {
		return string(data), nil
	}
}

func unmarshalResponse[T any]() func([]byte) (interface{}, error) {
	return func(data []byte) (interface{}, error) {
		var response T
		err := json.Unmarshal(data, &response)
		return response, err
	}
}
