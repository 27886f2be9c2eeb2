package store

import "time"

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

// SpendFilter holds the allowed values per filterable dimension.
// An empty slice leaves that dimension unrestricted.
type SpendFilter struct {
	FiscalYears   []int
	Categories    []string
	SubCategories []string
	Vendors       []string
}

type SpendSummary struct {
	TotalSpend       float64
	VendorCount      int64
	TransactionCount int64
	CategoryCount    int64
}

type DimensionValue struct {
	Value        string
	Transactions int64
}

type FiscalYearValue struct {
	Year         int
	Transactions int64
}

type CategoryTotal struct {
	Category     string
	Total        float64
	Transactions int64
}

type SubCategoryTotal struct {
	Category     string
	SubCategory  string
	Total        float64
	Transactions int64
}

type MonthlyTotal struct {
	Year         int
	Month        time.Month
	Total        float64
	Transactions int64
}

type FiscalYearTotal struct {
	Year         int
	Total        float64
	Transactions int64
}

type RecordQuery struct {
	Filter   SpendFilter
	Search   string
	SortBy   string
	SortDesc bool
	Offset   int64
	Limit    int64
}

type RecordPage struct {
	Records []SpendRecord
	Total   int64
}

type DatasetStats struct {
	RecordsCount int64
	FirstDate    *time.Time
	LastDate     *time.Time
}
