package domain

import "time"

// Summary is the metric strip above the charts. All four figures are
// computed from the same subset snapshot; an empty subset yields zeros.
type Summary struct {
	TotalSpend       float64
	VendorCount      int64
	TransactionCount int64
	CategoryCount    int64
	Currency         string
}

// CategorySpend is one bar/pie slice: spend summed per category, ordered
// by total descending with category name breaking ties.
type CategorySpend struct {
	Category     string
	Total        float64
	Transactions int64
}

// TrendBucket selects the time grain of the trend line.
type TrendBucket string

const (
	BucketMonth      TrendBucket = "month"
	BucketFiscalYear TrendBucket = "fiscal_year"
)

// TrendPoint is one bucket on the trend line. Labels are "2006-01" for
// month buckets and "FY2006" for fiscal-year buckets; both orders sort
// lexically, and points are always returned ascending. Buckets with no
// transactions inside the observed range appear with a zero total.
type TrendPoint struct {
	Label        string
	Total        float64
	Transactions int64
}

// SunburstNode is one top-level sunburst wedge. Its Total is the sum of
// its children's totals, so the two rings always agree.
type SunburstNode struct {
	Category     string
	Total        float64
	Transactions int64
	Children     []SunburstSlice
}

// SunburstSlice is one sub_category wedge under a category.
type SunburstSlice struct {
	SubCategory  string
	Total        float64
	Transactions int64
}

// Overview is one full dashboard recompute: everything a filter change
// redraws, derived from a single subset.
type Overview struct {
	Summary    Summary
	Categories []CategorySpend
	Trend      []TrendPoint
	Sunburst   []SunburstNode
}

// SpendRecord is one transaction row as shown in the grid.
type SpendRecord struct {
	ID          int64
	Date        time.Time
	FiscalYear  int
	Amount      float64
	Vendor      string
	Category    string
	SubCategory string
	Description string
	Attrs       map[string]string
}

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// RecordQuery describes one grid request: the active selection plus
// search, sort and paging. Sorting is stable (row identity breaks ties).
type RecordQuery struct {
	Selection Selection
	Search    string
	SortBy    string
	SortOrder SortOrder
	Page      int
	PageSize  int
}

// RecordPage is one page of the filtered grid along with the size of the
// whole subset.
type RecordPage struct {
	Records      []SpendRecord
	TotalRecords int64
	Page         int
	PageSize     int
}
