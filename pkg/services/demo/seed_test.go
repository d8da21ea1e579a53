package demo

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/rcm-tools/revenue-atlas/pkg/store/duckdb"
	"github.com/rcm-tools/revenue-atlas/pkg/store/duckdb/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) (*sql.DB, metrics.Store) {
	t.Helper()

	db, err := duckdb.NewDB(duckdb.Settings{DbPath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	metricStore, err := metrics.NewStore(db)
	require.NoError(t, err)
	return db, metricStore
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	db, metricStore := setupStore(t)

	anchor := time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC)
	summary, err := Seed(ctx, db, metricStore, Options{
		Days:         30,
		ClaimsPerDay: 4,
		Anchor:       anchor,
	})
	require.NoError(t, err)

	assert.Equal(t, 120, summary.Claims)
	total := 0
	for _, count := range summary.Programs {
		total += count
	}
	assert.Equal(t, summary.Claims, total)

	agg, err := metricStore.PeriodTotals(ctx, metrics.Query{
		Start: anchor.AddDate(0, 0, -29),
		End:   anchor,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(120), agg.ClaimCount)
	assert.Greater(t, agg.BilledAmount, 0.0)
	assert.Greater(t, agg.DeniedCount, int64(0), "expected some denied claims in the mix")
}

func TestSeed_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	db, metricStore := setupStore(t)

	opts := Options{
		Days:         10,
		ClaimsPerDay: 3,
		Anchor:       time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC),
	}

	first, err := Seed(ctx, db, metricStore, opts)
	require.NoError(t, err)
	second, err := Seed(ctx, db, metricStore, opts)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	stats, err := metricStore.GetStats(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(30), stats.RecordsCount)
}

func TestSeed_Validation(t *testing.T) {
	db, metricStore := setupStore(t)

	_, err := Seed(context.Background(), nil, metricStore, Options{})
	require.Error(t, err)

	_, err = Seed(context.Background(), db, nil, Options{})
	require.Error(t, err)
}
