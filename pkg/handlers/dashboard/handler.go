package dashboard

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Amadeus750/spend-streamlet/pkg/adapters"
	"github.com/Amadeus750/spend-streamlet/pkg/models/api"
	"github.com/Amadeus750/spend-streamlet/pkg/models/domain"
	"github.com/Amadeus750/spend-streamlet/pkg/services/dataset"
	"github.com/Amadeus750/spend-streamlet/pkg/services/spend"
)

const defaultBucket = domain.BucketMonth

// Router serves the dashboard API. Every endpoint except the dataset
// listing resolves the {dataset} URL parameter to an explorer and
// recomputes its answer from the full table under the request's selection.
type Router struct {
	datasets dataset.Manager
	registry spend.Registry
}

func NewDashboardRouter(datasets dataset.Manager, registry spend.Registry) *Router {
	return &Router{
		datasets: datasets,
		registry: registry,
	}
}

func (router *Router) ListDatasets(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	datasets, err := router.datasets.List(ctx)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	response := make([]api.Dataset, 0, len(datasets))
	for _, ds := range datasets {
		response = append(response, adapters.MapDatasetDomainToApi(ds))
	}
	respondJSON(ctx, w, http.StatusOK, response)
}

func (router *Router) GetDataset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ds, err := router.datasets.Get(ctx, chi.URLParam(r, "dataset"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, adapters.MapDatasetDomainToApi(*ds))
}

func (router *Router) GetFilters(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	selection, err := parseSelection(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	explorer, err := router.explorer(ctx, r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	options, err := explorer.FilterOptions(ctx, selection)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, adapters.MapFilterOptionsDomainToApi(*options))
}

func (router *Router) GetSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	selection, err := parseSelection(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	explorer, err := router.explorer(ctx, r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	summary, err := explorer.Summary(ctx, selection)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, adapters.MapSummaryDomainToApi(*summary))
}

func (router *Router) GetCategoryChart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	selection, err := parseSelection(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	explorer, err := router.explorer(ctx, r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	categories, err := explorer.Categories(ctx, selection)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, adapters.MapCategorySpendDomainToApi(categories))
}

func (router *Router) GetTrendChart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	selection, err := parseSelection(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	explorer, err := router.explorer(ctx, r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	points, err := explorer.Trend(ctx, selection, parseBucket(r))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, adapters.MapTrendDomainToApi(points))
}

func (router *Router) GetSunburstChart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	selection, err := parseSelection(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	explorer, err := router.explorer(ctx, r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	nodes, err := explorer.Sunburst(ctx, selection)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, adapters.MapSunburstDomainToApi(nodes))
}

func (router *Router) ListRecords(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query, err := parseRecordQuery(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	explorer, err := router.explorer(ctx, r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	page, err := explorer.Records(ctx, query)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, adapters.MapRecordPageDomainToApi(*page))
}

func (router *Router) GetOverview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	selection, err := parseSelection(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	explorer, err := router.explorer(ctx, r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	overview, err := explorer.Overview(ctx, selection, parseBucket(r))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, adapters.MapOverviewDomainToApi(*overview))
}

func (router *Router) explorer(ctx context.Context, r *http.Request) (spend.Explorer, error) {
	return router.registry.GetExplorer(ctx, chi.URLParam(r, "dataset"))
}
