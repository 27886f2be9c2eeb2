package domain

// Selection is a set of allowed values per filterable dimension, built
// fresh from the request on every interaction. An empty slice means the
// dimension is unrestricted. Rows must match every restricted dimension
// (AND across dimensions) and any allowed value within it (OR within).
type Selection struct {
	FiscalYears   []int
	Categories    []string
	SubCategories []string
	Vendors       []string
}

// IsEmpty reports whether no dimension carries a restriction, in which
// case applying the selection returns the full table.
func (s Selection) IsEmpty() bool {
	return len(s.FiscalYears) == 0 &&
		len(s.Categories) == 0 &&
		len(s.SubCategories) == 0 &&
		len(s.Vendors) == 0
}

// Without returns a copy of the selection with one dimension cleared.
// Option lists for a dimension are computed against the other dimensions'
// constraints only, so picking a value never hides its sibling choices.
func (s Selection) Without(dim Dimension) Selection {
	switch dim {
	case DimensionFiscalYear:
		s.FiscalYears = nil
	case DimensionCategory:
		s.Categories = nil
	case DimensionSubCategory:
		s.SubCategories = nil
	case DimensionVendor:
		s.Vendors = nil
	}
	return s
}

type Dimension string

const (
	DimensionFiscalYear  Dimension = "fiscal_year"
	DimensionCategory    Dimension = "category"
	DimensionSubCategory Dimension = "sub_category"
	DimensionVendor      Dimension = "vendor"
)

// Dimensions lists the filter axes in display order.
func Dimensions() []Dimension {
	return []Dimension{DimensionFiscalYear, DimensionCategory, DimensionSubCategory, DimensionVendor}
}

// FilterOption is one selectable value with the number of subset rows
// carrying it.
type FilterOption struct {
	Value        string
	Transactions int64
}

// FiscalYearOption is one selectable fiscal year.
type FiscalYearOption struct {
	Year         int
	Transactions int64
}

// FilterOptions holds the cascading option lists for every dimension:
// each list reflects only rows consistent with the other dimensions'
// current selections.
type FilterOptions struct {
	FiscalYears   []FiscalYearOption
	Categories    []FilterOption
	SubCategories []FilterOption
	Vendors       []FilterOption
}
