package dashboard

import (
	"net/http"
	"strconv"

	"github.com/Amadeus750/spend-streamlet/pkg/models/domain"
	"github.com/Amadeus750/spend-streamlet/pkg/services/spend"
)

// parseSelection reads the repeated filter parameters. A dimension absent
// from the query stays unrestricted; repeating a parameter widens the
// allowed set for its dimension.
func parseSelection(r *http.Request) (domain.Selection, error) {
	query := r.URL.Query()
	selection := domain.Selection{
		Categories:    query["category"],
		SubCategories: query["sub_category"],
		Vendors:       query["vendor"],
	}
	for _, raw := range query["fiscal_year"] {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return domain.Selection{}, spend.NewFilterError("invalid fiscal_year %q", raw)
		}
		selection.FiscalYears = append(selection.FiscalYears, year)
	}
	return selection, nil
}

func parseBucket(r *http.Request) domain.TrendBucket {
	bucket := r.URL.Query().Get("bucket")
	if bucket == "" {
		return defaultBucket
	}
	return domain.TrendBucket(bucket)
}

func parseRecordQuery(r *http.Request) (domain.RecordQuery, error) {
	selection, err := parseSelection(r)
	if err != nil {
		return domain.RecordQuery{}, err
	}

	query := domain.RecordQuery{
		Selection: selection,
		Search:    r.URL.Query().Get("search"),
		SortBy:    r.URL.Query().Get("sort"),
		SortOrder: domain.SortOrder(r.URL.Query().Get("order")),
	}
	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return domain.RecordQuery{}, spend.NewFilterError("invalid page %q", raw)
		}
		query.Page = page
	}
	if raw := r.URL.Query().Get("page_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			return domain.RecordQuery{}, spend.NewFilterError("invalid page_size %q", raw)
		}
		query.PageSize = size
	}
	return query, nil
}
