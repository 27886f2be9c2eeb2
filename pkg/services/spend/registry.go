package spend

import (
	"context"
	"database/sql"
	"sync"

	"github.com/Amadeus750/spend-streamlet/pkg/models/domain"
	"github.com/Amadeus750/spend-streamlet/pkg/services/dataset"
	spendstore "github.com/Amadeus750/spend-streamlet/pkg/store/duckdb/spend"
)

// Registry hands out explorers for loaded datasets.
type Registry interface {
	// GetExplorer returns the explorer for the named dataset. The dataset
	// must have been loaded through the manager first.
	GetExplorer(ctx context.Context, name string) (Explorer, error)
	// ResolveExplorer ingests the referenced file if needed and returns its
	// explorer. Terminal commands use this; the web API loads datasets at
	// startup and sticks to GetExplorer.
	ResolveExplorer(ctx context.Context, ref domain.DatasetRef) (Explorer, error)
}

type registry struct {
	db       *sql.DB
	datasets dataset.Manager

	mu        sync.RWMutex
	explorers map[string]Explorer
}

// NewRegistry creates a registry backed by the given database handle and
// dataset manager. Explorers are cached per dataset and rebuilt when the
// dataset's snapshot changes.
func NewRegistry(db *sql.DB, datasets dataset.Manager) Registry {
	return &registry{
		db:        db,
		datasets:  datasets,
		explorers: make(map[string]Explorer),
	}
}

func (r *registry) GetExplorer(ctx context.Context, name string) (Explorer, error) {
	ds, err := r.datasets.Get(ctx, name)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	explorer, ok := r.explorers[name]
	r.mu.RUnlock()
	if ok && explorer.Dataset().SnapshotID == ds.SnapshotID {
		return explorer, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if explorer, ok := r.explorers[name]; ok && explorer.Dataset().SnapshotID == ds.SnapshotID {
		return explorer, nil
	}

	store, err := spendstore.NewDatasetStore(r.db, name)
	if err != nil {
		return nil, err
	}
	explorer = NewExplorer(store, *ds)
	r.explorers[name] = explorer
	return explorer, nil
}

func (r *registry) ResolveExplorer(ctx context.Context, ref domain.DatasetRef) (Explorer, error) {
	if _, err := r.datasets.Ensure(ctx, ref); err != nil {
		return nil, err
	}
	return r.GetExplorer(ctx, ref.Name)
}
