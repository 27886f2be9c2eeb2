package spend

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/Amadeus750/spend-streamlet/pkg/adapters"
	"github.com/Amadeus750/spend-streamlet/pkg/models/domain"
	"github.com/Amadeus750/spend-streamlet/pkg/models/store"
	spendstore "github.com/Amadeus750/spend-streamlet/pkg/store/duckdb/spend"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// Explorer answers every dashboard question for one loaded dataset. Each
// method recomputes its answer from the full table under the given
// selection; nothing is cached between interactions, so a filter change is
// simply a new set of calls.
type Explorer interface {
	Dataset() domain.Dataset
	FilterOptions(ctx context.Context, selection domain.Selection) (*domain.FilterOptions, error)
	Summary(ctx context.Context, selection domain.Selection) (*domain.Summary, error)
	Categories(ctx context.Context, selection domain.Selection) ([]domain.CategorySpend, error)
	Trend(ctx context.Context, selection domain.Selection, bucket domain.TrendBucket) ([]domain.TrendPoint, error)
	Sunburst(ctx context.Context, selection domain.Selection) ([]domain.SunburstNode, error)
	Records(ctx context.Context, query domain.RecordQuery) (*domain.RecordPage, error)
	Overview(ctx context.Context, selection domain.Selection, bucket domain.TrendBucket) (*domain.Overview, error)
	Report(ctx context.Context, selection domain.Selection, topCategories int) (*domain.Report, error)
}

// canonicalSortColumns lists the sort keys every dataset accepts; a
// dataset's passthrough attribute names extend this set.
var canonicalSortColumns = map[string]bool{
	"date":         true,
	"txn_date":     true,
	"fiscal_year":  true,
	"amount":       true,
	"vendor":       true,
	"category":     true,
	"sub_category": true,
	"description":  true,
	"record_id":    true,
}

type spendExplorer struct {
	ds    domain.Dataset
	store spendstore.Store
}

func NewExplorer(store spendstore.Store, ds domain.Dataset) Explorer {
	return &spendExplorer{
		ds:    ds,
		store: store,
	}
}

func (e *spendExplorer) Dataset() domain.Dataset {
	return e.ds
}

// FilterOptions builds the cascading option lists. Each dimension is
// offered the distinct values of the subset restricted by every other
// dimension's selection; its own selection is left out so picking a value
// never hides its sibling choices.
func (e *spendExplorer) FilterOptions(ctx context.Context, selection domain.Selection) (*domain.FilterOptions, error) {
	without := func(dim domain.Dimension) store.SpendFilter {
		return adapters.MapDomainSelectionToStoreFilter(selection.Without(dim))
	}

	years, err := e.store.FiscalYears(ctx, without(domain.DimensionFiscalYear))
	if err != nil {
		return nil, err
	}
	categories, err := e.store.Values(ctx, "category", without(domain.DimensionCategory))
	if err != nil {
		return nil, err
	}
	subCategories, err := e.store.Values(ctx, "sub_category", without(domain.DimensionSubCategory))
	if err != nil {
		return nil, err
	}
	vendors, err := e.store.Values(ctx, "vendor", without(domain.DimensionVendor))
	if err != nil {
		return nil, err
	}

	return &domain.FilterOptions{
		FiscalYears:   adapters.MapStoreFiscalYearsToDomainOptions(years),
		Categories:    adapters.MapStoreValuesToDomainOptions(categories),
		SubCategories: adapters.MapStoreValuesToDomainOptions(subCategories),
		Vendors:       adapters.MapStoreValuesToDomainOptions(vendors),
	}, nil
}

func (e *spendExplorer) Summary(ctx context.Context, selection domain.Selection) (*domain.Summary, error) {
	summary, err := e.store.Summary(ctx, adapters.MapDomainSelectionToStoreFilter(selection))
	if err != nil {
		return nil, err
	}
	mapped := adapters.MapStoreSummaryToDomain(summary, e.ds.Currency)
	return &mapped, nil
}

func (e *spendExplorer) Categories(ctx context.Context, selection domain.Selection) ([]domain.CategorySpend, error) {
	totals, err := e.store.CategoryTotals(ctx, adapters.MapDomainSelectionToStoreFilter(selection))
	if err != nil {
		return nil, err
	}
	return adapters.MapStoreCategoryTotalsToDomain(totals), nil
}

func (e *spendExplorer) Trend(ctx context.Context, selection domain.Selection, bucket domain.TrendBucket) ([]domain.TrendPoint, error) {
	filter := adapters.MapDomainSelectionToStoreFilter(selection)

	switch bucket {
	case domain.BucketMonth:
		totals, err := e.store.MonthlyTotals(ctx, filter)
		if err != nil {
			return nil, err
		}
		return fillMonths(totals), nil
	case domain.BucketFiscalYear:
		totals, err := e.store.FiscalYearTotals(ctx, filter)
		if err != nil {
			return nil, err
		}
		return fillFiscalYears(totals), nil
	default:
		return nil, NewFilterError("unknown trend bucket %q", bucket)
	}
}

func (e *spendExplorer) Sunburst(ctx context.Context, selection domain.Selection) ([]domain.SunburstNode, error) {
	totals, err := e.store.SubCategoryTotals(ctx, adapters.MapDomainSelectionToStoreFilter(selection))
	if err != nil {
		return nil, err
	}
	return assembleSunburst(totals), nil
}

func (e *spendExplorer) Records(ctx context.Context, query domain.RecordQuery) (*domain.RecordPage, error) {
	sortBy := query.SortBy
	order := query.SortOrder
	if sortBy == "" {
		sortBy = "date"
		if order == "" {
			order = domain.SortDesc
		}
	} else if order == "" {
		order = domain.SortAsc
	}

	if err := e.validateSort(sortBy); err != nil {
		return nil, err
	}
	if order != domain.SortAsc && order != domain.SortDesc {
		return nil, NewFilterError("unknown sort order %q", order)
	}

	page := query.Page
	if page < 1 {
		page = 1
	}
	size := query.PageSize
	if size == 0 {
		size = defaultPageSize
	}
	if size < 1 {
		size = 1
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	result, err := e.store.Records(ctx, store.RecordQuery{
		Filter:   adapters.MapDomainSelectionToStoreFilter(query.Selection),
		Search:   query.Search,
		SortBy:   sortBy,
		SortDesc: order == domain.SortDesc,
		Offset:   int64(page-1) * int64(size),
		Limit:    int64(size),
	})
	if err != nil {
		return nil, err
	}

	records := make([]domain.SpendRecord, 0, len(result.Records))
	for _, record := range result.Records {
		records = append(records, adapters.MapStoreRecordToDomain(record))
	}
	return &domain.RecordPage{
		Records:      records,
		TotalRecords: result.Total,
		Page:         page,
		PageSize:     size,
	}, nil
}

// Overview recomputes the whole dashboard in one call. The four aggregates
// run concurrently; the table is immutable after load, so they all see the
// same data and the first failure cancels the rest.
func (e *spendExplorer) Overview(ctx context.Context, selection domain.Selection, bucket domain.TrendBucket) (*domain.Overview, error) {
	g, ctx := errgroup.WithContext(ctx)

	var (
		summary    *domain.Summary
		categories []domain.CategorySpend
		trend      []domain.TrendPoint
		sunburst   []domain.SunburstNode
	)

	g.Go(func() error {
		var err error
		summary, err = e.Summary(ctx, selection)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = e.Categories(ctx, selection)
		return err
	})
	g.Go(func() error {
		var err error
		trend, err = e.Trend(ctx, selection, bucket)
		return err
	})
	g.Go(func() error {
		var err error
		sunburst, err = e.Sunburst(ctx, selection)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &domain.Overview{
		Summary:    *summary,
		Categories: categories,
		Trend:      trend,
		Sunburst:   sunburst,
	}, nil
}

func (e *spendExplorer) validateSort(sortBy string) error {
	if canonicalSortColumns[sortBy] {
		return nil
	}
	for _, column := range e.ds.AttrColumns {
		if column == sortBy {
			return nil
		}
	}
	return NewFilterError("unknown sort column %q", sortBy)
}
