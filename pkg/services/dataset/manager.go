package dataset

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Amadeus750/spend-streamlet/pkg/adapters"
	"github.com/Amadeus750/spend-streamlet/pkg/models/domain"
	"github.com/Amadeus750/spend-streamlet/pkg/models/store"
	"github.com/Amadeus750/spend-streamlet/pkg/store/duckdb"
	"github.com/Amadeus750/spend-streamlet/pkg/store/duckdb/snapshot"
	"github.com/Amadeus750/spend-streamlet/pkg/store/duckdb/spend"
)

// Manager owns the process-wide dataset cache. A dataset is ingested once,
// on the first Ensure for its name; every later call returns the same
// handle with the same snapshot id. Replacing the underlying file requires
// a restart.
type Manager interface {
	Ensure(ctx context.Context, ref domain.DatasetRef) (*domain.Dataset, error)
	Get(ctx context.Context, name string) (*domain.Dataset, error)
	List(ctx context.Context) ([]domain.Dataset, error)
}

type manager struct {
	db         *sql.DB
	spendStore spend.Store
	snapshots  snapshot.Store

	mu     sync.RWMutex
	loaded map[string]domain.Dataset
}

func NewManager(db *sql.DB, spendStore spend.Store, snapshots snapshot.Store) Manager {
	return &manager{
		db:         db,
		spendStore: spendStore,
		snapshots:  snapshots,
		loaded:     make(map[string]domain.Dataset),
	}
}

func (m *manager) Ensure(ctx context.Context, ref domain.DatasetRef) (*domain.Dataset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.loaded[ref.Name]; ok {
		if existing.SourcePath != ref.Path {
			return nil, fmt.Errorf("%w: %s is bound to %s", ErrAlreadyLoaded, ref.Name, existing.SourcePath)
		}
		return &existing, nil
	}

	if _, err := os.Stat(ref.Path); err != nil {
		return nil, &LoadError{Path: ref.Path, Reason: "file not readable", Err: err}
	}

	logger := zerolog.Ctx(ctx)
	logger.Info().
		Str("dataset", ref.Name).
		Str("path", ref.Path).
		Msg("loading dataset")

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin load transaction: %w", err)
	}

	txCtx := duckdb.WithTransaction(ctx, tx)
	result, err := m.spendStore.ImportFile(txCtx, ref.Name, ref.Path, spend.ImportOptions{
		FiscalYearStartMonth: ref.FiscalYearStartMonth,
	})
	if err != nil {
		_ = tx.Rollback()
		return nil, &LoadError{Path: ref.Path, Reason: loadReason(err), Err: err}
	}

	snap := store.DatasetSnapshot{
		Dataset:     ref.Name,
		SnapshotID:  uuid.NewString(),
		SourcePath:  ref.Path,
		Format:      result.Format,
		RowCount:    result.RowCount,
		AttrColumns: result.AttrColumns,
		LoadedAt:    time.Now().UTC(),
	}
	if err := m.snapshots.Put(txCtx, snap); err != nil {
		_ = tx.Rollback()
		return nil, &LoadError{Path: ref.Path, Reason: "record snapshot", Err: err}
	}
	if err := tx.Commit(); err != nil {
		return nil, &LoadError{Path: ref.Path, Reason: "commit load", Err: err}
	}

	stats, err := m.datasetStats(ctx, ref.Name)
	if err != nil {
		return nil, err
	}

	ds := adapters.MapStoreSnapshotToDomainDataset(snap, stats)
	ds.Currency = ref.Currency
	ds.FiscalYearStartMonth = ref.FiscalYearStartMonth
	m.loaded[ref.Name] = ds

	logger.Info().
		Str("dataset", ref.Name).
		Str("snapshot_id", snap.SnapshotID).
		Int64("rows", result.RowCount).
		Msg("dataset loaded")

	return &ds, nil
}

func (m *manager) Get(_ context.Context, name string) (*domain.Dataset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ds, ok := m.loaded[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotLoaded, name)
	}
	return &ds, nil
}

func (m *manager) List(_ context.Context) ([]domain.Dataset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	datasets := make([]domain.Dataset, 0, len(m.loaded))
	for _, ds := range m.loaded {
		datasets = append(datasets, ds)
	}
	sort.Slice(datasets, func(i, j int) bool {
		return datasets[i].Name < datasets[j].Name
	})
	return datasets, nil
}

func (m *manager) datasetStats(ctx context.Context, name string) (*store.DatasetStats, error) {
	bound, err := spend.NewDatasetStore(m.db, name)
	if err != nil {
		return nil, err
	}
	return bound.Stats(ctx, store.SpendFilter{})
}

func loadReason(err error) string {
	switch {
	case errors.Is(err, spend.ErrUnsupportedFormat):
		return "unsupported file format"
	case errors.Is(err, spend.ErrMissingColumn):
		return "missing required columns"
	case errors.Is(err, spend.ErrInvalidRecords):
		return "unusable records"
	default:
		return "ingest failed"
	}
}
