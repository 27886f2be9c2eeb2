package snapshot

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/Amadeus750/spend-streamlet/pkg/models/store"
	"github.com/Amadeus750/spend-streamlet/pkg/store/duckdb"
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
	store, err := NewStore(db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return &fixture{
		db:    db,
		store: store,
	}
}

func TestSnapshotStore_Put(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	t.Run("success - insert and read back", func(t *testing.T) {
		loadedAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
		err := f.store.Put(ctx, store.DatasetSnapshot{
			Dataset:     "procurement",
			SnapshotID:  "9f2c1d7e-8c1b-4f6e-9f0a-0d9b8f3a1c2e",
			SourcePath:  "/data/spend.parquet",
			Format:      "parquet",
			RowCount:    1200,
			AttrColumns: []string{"Cost Center", "PO Number"},
			LoadedAt:    loadedAt,
		})
		require.NoError(t, err)

		snapshot, err := f.store.Get(ctx, "procurement")
		require.NoError(t, err)
		require.NotNil(t, snapshot)
		assert.Equal(t, "procurement", snapshot.Dataset)
		assert.Equal(t, "9f2c1d7e-8c1b-4f6e-9f0a-0d9b8f3a1c2e", snapshot.SnapshotID)
		assert.Equal(t, "/data/spend.parquet", snapshot.SourcePath)
		assert.Equal(t, int64(1200), snapshot.RowCount)
		assert.Equal(t, []string{"Cost Center", "PO Number"}, snapshot.AttrColumns)
		assert.Equal(t, loadedAt, snapshot.LoadedAt.UTC())
	})

	t.Run("success - put replaces existing snapshot", func(t *testing.T) {
		err := f.store.Put(ctx, store.DatasetSnapshot{
			Dataset:    "procurement",
			SnapshotID: "11111111-2222-3333-4444-555555555555",
			SourcePath: "/data/spend_v2.parquet",
			Format:     "parquet",
			RowCount:   1300,
		})
		require.NoError(t, err)

		snapshot, err := f.store.Get(ctx, "procurement")
		require.NoError(t, err)
		require.NotNil(t, snapshot)
		assert.Equal(t, "11111111-2222-3333-4444-555555555555", snapshot.SnapshotID)
		assert.Equal(t, int64(1300), snapshot.RowCount)
		assert.Empty(t, snapshot.AttrColumns)
		assert.False(t, snapshot.LoadedAt.IsZero())
	})
}

func TestSnapshotStore_Get(t *testing.T) {
	f := setupFixture(t)

	snapshot, err := f.store.Get(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Nil(t, snapshot)
}

func TestSnapshotStore_List(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	t.Run("success - empty store", func(t *testing.T) {
		snapshots, err := f.store.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, snapshots)
	})

	t.Run("success - ordered by dataset", func(t *testing.T) {
		for _, dataset := range []string{"travel", "procurement"} {
			err := f.store.Put(ctx, store.DatasetSnapshot{
				Dataset:    dataset,
				SnapshotID: "9f2c1d7e-8c1b-4f6e-9f0a-0d9b8f3a1c2e",
				SourcePath: "/data/" + dataset + ".csv",
				Format:     "csv",
				RowCount:   10,
			})
			require.NoError(t, err)
		}

		snapshots, err := f.store.List(ctx)
		require.NoError(t, err)
		require.Len(t, snapshots, 2)
		assert.Equal(t, "procurement", snapshots[0].Dataset)
		assert.Equal(t, "travel", snapshots[1].Dataset)
	})
}

func TestSnapshotStore_TransactionRollback(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	tx, err := f.db.BeginTx(ctx, nil)
	require.NoError(t, err)

	txCtx := duckdb.WithTransaction(ctx, tx)
	err = f.store.Put(txCtx, store.DatasetSnapshot{
		Dataset:    "procurement",
		SnapshotID: "9f2c1d7e-8c1b-4f6e-9f0a-0d9b8f3a1c2e",
		SourcePath: "/data/spend.csv",
		Format:     "csv",
		RowCount:   10,
	})
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	snapshot, err := f.store.Get(ctx, "procurement")
	require.NoError(t, err)
	assert.Nil(t, snapshot)
}
