package syncstate

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

func TestNewStore(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := setupFixture(t)
		assert.NotNil(t, f.store)
	})

	t.Run("nil db", func(t *testing.T) {
		s, err := NewStore(nil)
		assert.Error(t, err)
		assert.Nil(t, s)
	})
}

func TestStore_Create(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	rec, err := f.store.Create(ctx, store.SyncIdentity{Profile: "snowflake:prod"})
	require.NoError(t, err)
	assert.Equal(t, "snowflake:prod", rec.Profile)
	assert.Equal(t, "pending", rec.Status)
	assert.Nil(t, rec.LastSyncedDate)

	t.Run("duplicate profile", func(t *testing.T) {
		_, err := f.store.Create(ctx, store.SyncIdentity{Profile: "snowflake:prod"})
		assert.Error(t, err)
	})
}

func TestStore_List(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	_, err := f.store.Create(ctx, store.SyncIdentity{Profile: "databricks:dev"})
	require.NoError(t, err)
	_, err = f.store.Create(ctx, store.SyncIdentity{Profile: "snowflake:prod"})
	require.NoError(t, err)

	require.NoError(t, f.store.UpdateStatus(ctx, "snowflake:prod", "finished", nil))

	t.Run("list all", func(t *testing.T) {
		records, err := f.store.List(ctx, nil)
		require.NoError(t, err)
		assert.Len(t, records, 2)
	})

	t.Run("list by status", func(t *testing.T) {
		records, err := f.store.List(ctx, []string{"pending"})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "databricks:dev", records[0].Profile)
	})
}

func TestStore_UpdateStatusAndProgress(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	_, err := f.store.Create(ctx, store.SyncIdentity{Profile: "snowflake:prod"})
	require.NoError(t, err)

	msg := "connection refused"
	require.NoError(t, f.store.UpdateStatus(ctx, "snowflake:prod", "failed", &msg))

	rec, err := f.store.Get(ctx, "snowflake:prod")
	require.NoError(t, err)
	assert.Equal(t, "failed", rec.Status)
	require.NotNil(t, rec.Error)
	assert.Equal(t, msg, *rec.Error)

	watermark := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	require.NoError(t, f.store.Progress(ctx, "snowflake:prod", watermark))

	rec, err = f.store.Get(ctx, "snowflake:prod")
	require.NoError(t, err)
	require.NotNil(t, rec.LastSyncedDate)
	assert.Equal(t, watermark, rec.LastSyncedDate.UTC())

	t.Run("unknown profile", func(t *testing.T) {
		assert.ErrorIs(t, f.store.UpdateStatus(ctx, "nope", "failed", nil), ErrNotFound)
		assert.ErrorIs(t, f.store.Progress(ctx, "nope", watermark), ErrNotFound)
		_, err := f.store.Get(ctx, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
