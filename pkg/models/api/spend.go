package api

import "time"

type Summary struct {
	TotalSpend       float64 `json:"total_spend"`
	VendorCount      int64   `json:"vendor_count"`
	TransactionCount int64   `json:"transaction_count"`
	CategoryCount    int64   `json:"category_count"`
	Currency         string  `json:"currency"`
}

type FilterOption struct {
	Value        string `json:"value"`
	Transactions int64  `json:"transactions"`
}

type FiscalYearOption struct {
	Year         int   `json:"year"`
	Transactions int64 `json:"transactions"`
}

type FilterOptions struct {
	FiscalYears   []FiscalYearOption `json:"fiscal_years"`
	Categories    []FilterOption     `json:"categories"`
	SubCategories []FilterOption     `json:"sub_categories"`
	Vendors       []FilterOption     `json:"vendors"`
}

type CategorySpend struct {
	Category     string  `json:"category"`
	Total        float64 `json:"total"`
	Transactions int64   `json:"transactions"`
}

type TrendPoint struct {
	Label        string  `json:"label"`
	Total        float64 `json:"total"`
	Transactions int64   `json:"transactions"`
}

type SunburstSlice struct {
	SubCategory  string  `json:"sub_category"`
	Total        float64 `json:"total"`
	Transactions int64   `json:"transactions"`
}

type SunburstNode struct {
	Category     string          `json:"category"`
	Total        float64         `json:"total"`
	Transactions int64           `json:"transactions"`
	Children     []SunburstSlice `json:"children"`
}

type Overview struct {
	Summary    Summary         `json:"summary"`
	Categories []CategorySpend `json:"categories"`
	Trend      []TrendPoint    `json:"trend"`
	Sunburst   []SunburstNode  `json:"sunburst"`
}

type SpendRecord struct {
	ID          int64             `json:"id"`
	Date        time.Time         `json:"date"`
	FiscalYear  int               `json:"fiscal_year"`
	Amount      float64           `json:"amount"`
	Vendor      string            `json:"vendor"`
	Category    string            `json:"category"`
	SubCategory string            `json:"sub_category"`
	Description string            `json:"description,omitempty"`
	Attrs       map[string]string `json:"attrs,omitempty"`
}

type RecordPage struct {
	Records      []SpendRecord `json:"records"`
	TotalRecords int64         `json:"total_records"`
	Page         int           `json:"page"`
	PageSize     int           `json:"page_size"`
}

type Error struct {
	Error string `json:"error"`
}
