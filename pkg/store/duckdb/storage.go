package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/marcboeker/go-duckdb/v2"
)

// SpendRecordsSchema holds every loaded transaction row, keyed by the
// dataset it belongs to. attrs carries pass-through source columns that
// are not part of the canonical schema.
const SpendRecordsSchema = `
	CREATE TABLE IF NOT EXISTS spend_records (
		dataset VARCHAR NOT NULL,
		record_id BIGINT NOT NULL,
		txn_date DATE NOT NULL,
		fiscal_year INTEGER NOT NULL,
		amount DOUBLE NOT NULL,
		vendor VARCHAR NOT NULL,
		category VARCHAR NOT NULL,
		sub_category VARCHAR NOT NULL,
		description VARCHAR,
		attrs JSON,
		PRIMARY KEY (dataset, record_id)
	);
`

// DatasetSnapshotsSchema records one row per ingested dataset, written in
// the same transaction as its records.
const DatasetSnapshotsSchema = `
	CREATE TABLE IF NOT EXISTS dataset_snapshots (
		dataset VARCHAR NOT NULL,
		snapshot_id VARCHAR NOT NULL,
		source_path VARCHAR NOT NULL,
		format VARCHAR NOT NULL,
		row_count BIGINT NOT NULL,
		attr_columns JSON,
		loaded_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (dataset)
	);
`

var bootQueries = []string{
	SpendRecordsSchema,
	DatasetSnapshotsSchema,
}

type Settings struct {
	DbPath string // ":memory:" for a private in-process engine
}

// NewDB opens the embedded engine and applies the boot schema.
func NewDB(settings Settings) (*sql.DB, error) {
	c, err := duckdb.NewConnector(fmt.Sprintf("%s?threads=4", settings.DbPath), func(exec driver.ExecerContext) error {
		for _, query := range bootQueries {
			_, err := exec.ExecContext(context.Background(), query, nil)
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	db := sql.OpenDB(c)
	return db, nil
}

type txKey struct{}

// WithTransaction lets store calls made during an ingest join the ingest
// transaction instead of running against the bare connection.
func WithTransaction(ctx context.Context, tx *sql.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// GetTransaction returns the transaction carried by ctx, or nil.
func GetTransaction(ctx context.Context) *sql.Tx {
	tx, _ := ctx.Value(txKey{}).(*sql.Tx)
	return tx
}
