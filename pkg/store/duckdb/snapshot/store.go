package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Amadeus750/spend-streamlet/pkg/store/duckdb"

	"github.com/Amadeus750/spend-streamlet/pkg/models/store"
)

// Store tracks one snapshot row per dataset: which file was loaded, when,
// and what shape it had. Put joins a transaction placed on the context so
// the snapshot commits together with the records it describes.
type Store interface {
	Put(ctx context.Context, snapshot store.DatasetSnapshot) error
	Get(ctx context.Context, dataset string) (*store.DatasetSnapshot, error)
	List(ctx context.Context) ([]store.DatasetSnapshot, error)
}

type defaultStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &defaultStore{
		db: db,
	}, nil
}

func (s *defaultStore) Put(ctx context.Context, snapshot store.DatasetSnapshot) error {
	attrColumns, err := json.Marshal(snapshot.AttrColumns)
	if err != nil {
		return fmt.Errorf("marshal attr columns: %w", err)
	}
	loadedAt := snapshot.LoadedAt
	if loadedAt.IsZero() {
		loadedAt = time.Now().UTC()
	}

	var conn interface {
		ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	} = s.db
	if tx := duckdb.GetTransaction(ctx); tx != nil {
		conn = tx
	}

	if _, err := conn.ExecContext(ctx, `DELETE FROM dataset_snapshots WHERE dataset = ?`, snapshot.Dataset); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}
	_, err = conn.ExecContext(ctx, `
		INSERT INTO dataset_snapshots (
			dataset, snapshot_id, source_path, format, row_count, attr_columns, loaded_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		snapshot.Dataset,
		snapshot.SnapshotID,
		snapshot.SourcePath,
		snapshot.Format,
		snapshot.RowCount,
		string(attrColumns),
		loadedAt,
	)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

// Get returns nil without error when the dataset has never been loaded.
func (s *defaultStore) Get(ctx context.Context, dataset string) (*store.DatasetSnapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT dataset, snapshot_id, source_path, format, row_count,
			COALESCE(CAST(attr_columns AS VARCHAR), ''), loaded_at
		FROM dataset_snapshots
		WHERE dataset = ?`, dataset)

	snapshot, err := scanSnapshot(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return snapshot, nil
}

func (s *defaultStore) List(ctx context.Context) ([]store.DatasetSnapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT dataset, snapshot_id, source_path, format, row_count,
			COALESCE(CAST(attr_columns AS VARCHAR), ''), loaded_at
		FROM dataset_snapshots
		ORDER BY dataset`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := make([]store.DatasetSnapshot, 0)
	for rows.Next() {
		snapshot, err := scanSnapshot(rows.Scan)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, *snapshot)
	}
	return snapshots, rows.Err()
}

func scanSnapshot(scan func(dest ...interface{}) error) (*store.DatasetSnapshot, error) {
	var (
		snapshot store.DatasetSnapshot
		attrsRaw string
	)
	err := scan(
		&snapshot.Dataset,
		&snapshot.SnapshotID,
		&snapshot.SourcePath,
		&snapshot.Format,
		&snapshot.RowCount,
		&attrsRaw,
		&snapshot.LoadedAt,
	)
	if err != nil {
		return nil, err
	}
	if attrsRaw != "" && attrsRaw != "null" {
		columns := make([]string, 0)
		if err := json.Unmarshal([]byte(attrsRaw), &columns); err == nil {
			snapshot.AttrColumns = columns
		}
	}
	return &snapshot, nil
}
