package domain

import (
	"time"

	"github.com/google/uuid"
)

// DatasetRef identifies a dataset to load: where the file lives and how
// its fiscal calendar is laid out.
type DatasetRef struct {
	Name                 string
	Path                 string
	FiscalYearStartMonth int // 1 = calendar years
	Currency             string
}

// Dataset is a loaded dataset handle. SnapshotID changes on every ingest,
// which only happens on process restart, so clients can use it to detect
// that the cached table behind them was rebuilt.
type Dataset struct {
	Name                 string
	SourcePath           string
	Format               string
	SnapshotID           uuid.UUID
	RowCount             int64
	FirstDate            *time.Time
	LastDate             *time.Time
	AttrColumns          []string
	Currency             string
	FiscalYearStartMonth int
	LoadedAt             time.Time
}
