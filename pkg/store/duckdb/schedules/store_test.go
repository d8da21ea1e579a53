package schedules

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/rcm-tools/revenue-atlas/pkg/models/store"
	"github.com/rcm-tools/revenue-atlas/pkg/store/duckdb"
	_ "github.com/marcboeker/go-duckdb/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	db    *sql.DB
	store Store
}

func setupFixture(t *testing.T) *fixture {
	db, err := duckdb.NewDB(duckdb.Settings{DbPath: ":memory:"})
	require.NoError(t, err)

	s, err := NewStore(db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return &fixture{
		db:    db,
		store: s,
	}
}

func schedule(id string, nextRun time.Time, active bool) store.ScheduleRecord {
	created := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	return store.ScheduleRecord{
		ID:           id,
		DefinitionID: "def-1",
		Frequency:    "daily",
		HourUTC:      6,
		Weekday:      1,
		DayOfMonth:   1,
		Active:       active,
		NextRunAt:    nextRun,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
}

func TestScheduleStore_CreateAndGet(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	next := time.Date(2024, 6, 2, 6, 0, 0, 0, time.UTC)
	require.NoError(t, f.store.Create(ctx, schedule("sch-1", next, true)))

	got, err := f.store.Get(ctx, "sch-1")
	require.NoError(t, err)
	assert.Equal(t, "def-1", got.DefinitionID)
	assert.Equal(t, "daily", got.Frequency)
	assert.Equal(t, next, got.NextRunAt.UTC())
	assert.Nil(t, got.LastRunAt)

	_, err = f.store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestScheduleStore_ListDue(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	asOf := time.Date(2024, 6, 2, 12, 0, 0, 0, time.UTC)
	require.NoError(t, f.store.Create(ctx, schedule("due", asOf.Add(-time.Hour), true)))
	require.NoError(t, f.store.Create(ctx, schedule("future", asOf.Add(time.Hour), true)))
	require.NoError(t, f.store.Create(ctx, schedule("paused", asOf.Add(-time.Hour), false)))

	due, err := f.store.ListDue(ctx, asOf)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "due", due[0].ID)
}

func TestScheduleStore_MarkRun(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	next := time.Date(2024, 6, 2, 6, 0, 0, 0, time.UTC)
	require.NoError(t, f.store.Create(ctx, schedule("sch-1", next, true)))

	ranAt := next.Add(time.Minute)
	newNext := next.AddDate(0, 0, 1)
	require.NoError(t, f.store.MarkRun(ctx, "sch-1", ranAt, newNext))

	got, err := f.store.Get(ctx, "sch-1")
	require.NoError(t, err)
	require.NotNil(t, got.LastRunAt)
	assert.Equal(t, ranAt, got.LastRunAt.UTC())
	assert.Equal(t, newNext, got.NextRunAt.UTC())

	assert.ErrorIs(t, f.store.MarkRun(ctx, "missing", ranAt, newNext), ErrNotFound)
}

func TestScheduleStore_UpdateAndDelete(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	next := time.Date(2024, 6, 2, 6, 0, 0, 0, time.UTC)
	rec := schedule("sch-1", next, true)
	require.NoError(t, f.store.Create(ctx, rec))

	rec.Frequency = "weekly"
	rec.Active = false
	require.NoError(t, f.store.Update(ctx, rec))

	got, err := f.store.Get(ctx, "sch-1")
	require.NoError(t, err)
	assert.Equal(t, "weekly", got.Frequency)
	assert.False(t, got.Active)

	require.NoError(t, f.store.Delete(ctx, "sch-1"))
	assert.ErrorIs(t, f.store.Delete(ctx, "sch-1"), ErrNotFound)

	list, err := f.store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
