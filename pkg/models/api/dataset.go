package api

import "time"

type Dataset struct {
	Name        string     `json:"name"`
	SourcePath  string     `json:"source_path"`
	Format      string     `json:"format"`
	SnapshotID  string     `json:"snapshot_id"`
	RowCount    int64      `json:"row_count"`
	FirstDate   *time.Time `json:"first_date,omitempty"`
	LastDate    *time.Time `json:"last_date,omitempty"`
	AttrColumns []string   `json:"attr_columns,omitempty"`
	Currency    string     `json:"currency"`
	LoadedAt    time.Time  `json:"loaded_at"`
}
