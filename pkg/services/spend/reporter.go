package spend

import (
	"context"
	"fmt"

	"github.com/Amadeus750/spend-streamlet/pkg/adapters"
	"github.com/Amadeus750/spend-streamlet/pkg/models/domain"
)

const defaultTopCategories = 10

// Report assembles the terminal-facing spend report for the current
// selection: overall figures, the largest categories with their share of
// total, and the per fiscal year breakdown.
func (e *spendExplorer) Report(ctx context.Context, selection domain.Selection, topCategories int) (*domain.Report, error) {
	filter := adapters.MapDomainSelectionToStoreFilter(selection)

	stats, err := e.store.Stats(ctx, filter)
	if err != nil {
		return nil, err
	}
	summary, err := e.Summary(ctx, selection)
	if err != nil {
		return nil, err
	}
	categories, err := e.Categories(ctx, selection)
	if err != nil {
		return nil, err
	}
	yearTotals, err := e.store.FiscalYearTotals(ctx, filter)
	if err != nil {
		return nil, err
	}

	report := &domain.Report{
		Title:       fmt.Sprintf("Spend report: %s", e.ds.Name),
		TotalAmount: summary.TotalSpend,
		Currency:    e.ds.Currency,
	}
	if stats.FirstDate != nil && stats.LastDate != nil {
		report.Period = domain.TimePeriod{
			Start:    *stats.FirstDate,
			End:      *stats.LastDate,
			Duration: int(stats.LastDate.Sub(*stats.FirstDate).Hours()/24) + 1,
		}
	}

	overview := domain.ReportSection{
		Title: "Overview",
		Summary: map[string]interface{}{
			"Total spend":  fmt.Sprintf("%s %.2f", e.ds.Currency, summary.TotalSpend),
			"Transactions": summary.TransactionCount,
			"Vendors":      summary.VendorCount,
			"Categories":   summary.CategoryCount,
		},
	}

	if topCategories <= 0 {
		topCategories = defaultTopCategories
	}
	top := categories
	if len(top) > topCategories {
		top = top[:topCategories]
	}
	categorySection := domain.ReportSection{
		Title:   "Top categories",
		Details: make([]domain.ReportDetail, 0, len(top)),
	}
	for _, c := range top {
		share := 0.0
		if summary.TotalSpend != 0 {
			share = c.Total / summary.TotalSpend * 100
		}
		categorySection.Details = append(categorySection.Details, domain.ReportDetail{
			Name:        c.Category,
			Value:       fmt.Sprintf("%.2f", c.Total),
			Unit:        e.ds.Currency,
			Description: fmt.Sprintf("%.1f%% of total, %d transactions", share, c.Transactions),
		})
	}

	yearSection := domain.ReportSection{
		Title:   "Fiscal years",
		Details: make([]domain.ReportDetail, 0, len(yearTotals)),
	}
	for _, t := range yearTotals {
		yearSection.Details = append(yearSection.Details, domain.ReportDetail{
			Name:        fiscalYearLabel(t.Year),
			Value:       fmt.Sprintf("%.2f", t.Total),
			Unit:        e.ds.Currency,
			Description: fmt.Sprintf("%d transactions", t.Transactions),
		})
	}

	report.Sections = []domain.ReportSection{overview, categorySection, yearSection}
	return report, nil
}
