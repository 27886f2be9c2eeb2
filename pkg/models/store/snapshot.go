package store

import "time"

type DatasetSnapshot struct {
	Dataset     string
	SnapshotID  string
	SourcePath  string
	Format      string
	RowCount    int64
	AttrColumns []string
	LoadedAt    time.Time
}
