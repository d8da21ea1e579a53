package ingest

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcm-tools/revenue-atlas/pkg/store/duckdb"
	"github.com/rcm-tools/revenue-atlas/pkg/store/duckdb/metrics"
)

type fakeSource struct {
	files   map[string]string
	listErr error
}

func (f *fakeSource) ListFiles(_ context.Context) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var keys []string
	for key := range f.files {
		keys = append(keys, key)
	}
	return keys, nil
}

func (f *fakeSource) Fetch(_ context.Context, key string) (io.ReadCloser, error) {
	body, ok := f.files[key]
	if !ok {
		return nil, fmt.Errorf("no such key %s", key)
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

type ingestFixture struct {
	metrics metrics.Store
}

func setupService(t *testing.T, source FileSource) (*Service, *ingestFixture) {
	t.Helper()

	db, err := duckdb.NewDB(duckdb.Settings{DbPath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})

	metricStore, err := metrics.NewStore(db)
	require.NoError(t, err)

	service, err := NewService(source, db, metricStore)
	require.NoError(t, err)

	return service, &ingestFixture{metrics: metricStore}
}

func TestService_Import(t *testing.T) {
	source := &fakeSource{
		files: map[string]string{
			"drops/2024-06-01.csv": strings.Join([]string{
				"claim_id,program_id,payer_id,service_date,billed_amount,paid_amount,status",
				"c-100,residential,medicaid,2024-06-03,1000,700,paid",
				"c-101,residential,aetna,2024-06-10,500,400,paid",
				"c-bad,residential,aetna,not-a-date,100,100,paid",
			}, "\n"),
			"drops/2024-06-02.csv": strings.Join([]string{
				"claim_id,service_date,billed_amount,status",
				"c-102,2024-06-20,300,denied",
			}, "\n"),
			"drops/broken.csv": "program_id,service_date\nresidential,2024-06-01\n",
			"drops/README.txt": "not a remittance export",
		},
	}

	service, fixture := setupService(t, source)

	summary, err := service.Import(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Files)
	assert.Equal(t, 3, summary.Imported)
	assert.Equal(t, 1, summary.Skipped)

	totals, err := fixture.metrics.PeriodTotals(context.Background(), metrics.Query{
		Start: time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), totals.ClaimCount)
	assert.Equal(t, 1800.0, totals.BilledAmount)
	assert.Equal(t, int64(1), totals.DeniedCount)
}

func TestService_Import_IsIdempotent(t *testing.T) {
	source := &fakeSource{
		files: map[string]string{
			"drops/batch.csv": strings.Join([]string{
				"claim_id,service_date,billed_amount",
				"c-1,2024-06-01,100",
				"c-2,2024-06-02,200",
			}, "\n"),
		},
	}

	service, fixture := setupService(t, source)

	_, err := service.Import(context.Background())
	require.NoError(t, err)
	summary, err := service.Import(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Imported)

	stats, err := fixture.metrics.GetStats(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.RecordsCount, "reimported claims replace rather than duplicate")
}

func TestService_Import_ListError(t *testing.T) {
	source := &fakeSource{listErr: fmt.Errorf("bucket unreachable")}
	service, _ := setupService(t, source)

	_, err := service.Import(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list remittance files")
}

func TestNewService_Validation(t *testing.T) {
	db, err := duckdb.NewDB(duckdb.Settings{DbPath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	metricStore, err := metrics.NewStore(db)
	require.NoError(t, err)

	_, err = NewService(nil, db, metricStore)
	assert.Error(t, err)
	_, err = NewService(&fakeSource{}, nil, metricStore)
	assert.Error(t, err)
	_, err = NewService(&fakeSource{}, db, nil)
	assert.Error(t, err)
}
