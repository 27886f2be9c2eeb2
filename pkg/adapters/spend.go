package adapters

import (
	"maps"

	"github.com/Amadeus750/spend-streamlet/pkg/models/api"
	"github.com/Amadeus750/spend-streamlet/pkg/models/domain"
	"github.com/Amadeus750/spend-streamlet/pkg/models/store"
)

func MapDomainSelectionToStoreFilter(selection domain.Selection) store.SpendFilter {
	return store.SpendFilter{
		FiscalYears:   selection.FiscalYears,
		Categories:    selection.Categories,
		SubCategories: selection.SubCategories,
		Vendors:       selection.Vendors,
	}
}

func MapStoreSummaryToDomain(summary *store.SpendSummary, currency string) domain.Summary {
	if summary == nil {
		return domain.Summary{Currency: currency}
	}
	return domain.Summary{
		TotalSpend:       summary.TotalSpend,
		VendorCount:      summary.VendorCount,
		TransactionCount: summary.TransactionCount,
		CategoryCount:    summary.CategoryCount,
		Currency:         currency,
	}
}

func MapStoreValuesToDomainOptions(values []store.DimensionValue) []domain.FilterOption {
	options := make([]domain.FilterOption, 0, len(values))
	for _, v := range values {
		options = append(options, domain.FilterOption{
			Value:        v.Value,
			Transactions: v.Transactions,
		})
	}
	return options
}

func MapStoreFiscalYearsToDomainOptions(years []store.FiscalYearValue) []domain.FiscalYearOption {
	options := make([]domain.FiscalYearOption, 0, len(years))
	for _, y := range years {
		options = append(options, domain.FiscalYearOption{
			Year:         y.Year,
			Transactions: y.Transactions,
		})
	}
	return options
}

func MapStoreCategoryTotalsToDomain(totals []store.CategoryTotal) []domain.CategorySpend {
	categories := make([]domain.CategorySpend, 0, len(totals))
	for _, t := range totals {
		categories = append(categories, domain.CategorySpend{
			Category:     t.Category,
			Total:        t.Total,
			Transactions: t.Transactions,
		})
	}
	return categories
}

func MapStoreRecordToDomain(record store.SpendRecord) domain.SpendRecord {
	return domain.SpendRecord{
		ID:          record.ID,
		Date:        record.Date,
		FiscalYear:  record.FiscalYear,
		Amount:      record.Amount,
		Vendor:      record.Vendor,
		Category:    record.Category,
		SubCategory: record.SubCategory,
		Description: record.Description,
		Attrs:       maps.Clone(record.Attrs),
	}
}

func MapSummaryDomainToApi(summary domain.Summary) api.Summary {
	return api.Summary{
		TotalSpend:       summary.TotalSpend,
		VendorCount:      summary.VendorCount,
		TransactionCount: summary.TransactionCount,
		CategoryCount:    summary.CategoryCount,
		Currency:         summary.Currency,
	}
}

func MapFilterOptionsDomainToApi(options domain.FilterOptions) api.FilterOptions {
	mapped := api.FilterOptions{
		FiscalYears:   make([]api.FiscalYearOption, 0, len(options.FiscalYears)),
		Categories:    make([]api.FilterOption, 0, len(options.Categories)),
		SubCategories: make([]api.FilterOption, 0, len(options.SubCategories)),
		Vendors:       make([]api.FilterOption, 0, len(options.Vendors)),
	}
	for _, y := range options.FiscalYears {
		mapped.FiscalYears = append(mapped.FiscalYears, api.FiscalYearOption{Year: y.Year, Transactions: y.Transactions})
	}
	for _, o := range options.Categories {
		mapped.Categories = append(mapped.Categories, api.FilterOption(o))
	}
	for _, o := range options.SubCategories {
		mapped.SubCategories = append(mapped.SubCategories, api.FilterOption(o))
	}
	for _, o := range options.Vendors {
		mapped.Vendors = append(mapped.Vendors, api.FilterOption(o))
	}
	return mapped
}

func MapCategorySpendDomainToApi(categories []domain.CategorySpend) []api.CategorySpend {
	mapped := make([]api.CategorySpend, 0, len(categories))
	for _, c := range categories {
		mapped = append(mapped, api.CategorySpend(c))
	}
	return mapped
}

func MapTrendDomainToApi(points []domain.TrendPoint) []api.TrendPoint {
	mapped := make([]api.TrendPoint, 0, len(points))
	for _, p := range points {
		mapped = append(mapped, api.TrendPoint(p))
	}
	return mapped
}

func MapSunburstDomainToApi(nodes []domain.SunburstNode) []api.SunburstNode {
	mapped := make([]api.SunburstNode, 0, len(nodes))
	for _, n := range nodes {
		children := make([]api.SunburstSlice, 0, len(n.Children))
		for _, c := range n.Children {
			children = append(children, api.SunburstSlice(c))
		}
		mapped = append(mapped, api.SunburstNode{
			Category:     n.Category,
			Total:        n.Total,
			Transactions: n.Transactions,
			Children:     children,
		})
	}
	return mapped
}

func MapOverviewDomainToApi(overview domain.Overview) api.Overview {
	return api.Overview{
		Summary:    MapSummaryDomainToApi(overview.Summary),
		Categories: MapCategorySpendDomainToApi(overview.Categories),
		Trend:      MapTrendDomainToApi(overview.Trend),
		Sunburst:   MapSunburstDomainToApi(overview.Sunburst),
	}
}

func MapSpendRecordDomainToApi(record domain.SpendRecord) api.SpendRecord {
	return api.SpendRecord{
		ID:          record.ID,
		Date:        record.Date,
		FiscalYear:  record.FiscalYear,
		Amount:      record.Amount,
		Vendor:      record.Vendor,
		Category:    record.Category,
		SubCategory: record.SubCategory,
		Description: record.Description,
		Attrs:       record.Attrs,
	}
}

func MapRecordPageDomainToApi(page domain.RecordPage) api.RecordPage {
	records := make([]api.SpendRecord, 0, len(page.Records))
	for _, r := range page.Records {
		records = append(records, MapSpendRecordDomainToApi(r))
	}
	return api.RecordPage{
		Records:      records,
		TotalRecords: page.TotalRecords,
		Page:         page.Page,
		PageSize:     page.PageSize,
	}
}
