package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Amadeus750/spend-streamlet/pkg/models/api"
	"github.com/Amadeus750/spend-streamlet/pkg/models/domain"
	"github.com/Amadeus750/spend-streamlet/pkg/services/dataset"
	"github.com/Amadeus750/spend-streamlet/pkg/services/spend"
)

type mockManager struct {
	mock.Mock
}

func (m *mockManager) Ensure(ctx context.Context, ref domain.DatasetRef) (*domain.Dataset, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Dataset), args.Error(1)
}

func (m *mockManager) Get(ctx context.Context, name string) (*domain.Dataset, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Dataset), args.Error(1)
}

func (m *mockManager) List(ctx context.Context) ([]domain.Dataset, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Dataset), args.Error(1)
}

type mockRegistry struct {
	mock.Mock
}

func (m *mockRegistry) GetExplorer(ctx context.Context, name string) (spend.Explorer, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(spend.Explorer), args.Error(1)
}

func (m *mockRegistry) ResolveExplorer(ctx context.Context, ref domain.DatasetRef) (spend.Explorer, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(spend.Explorer), args.Error(1)
}

type mockExplorer struct {
	mock.Mock
}

func (m *mockExplorer) Dataset() domain.Dataset {
	args := m.Called()
	return args.Get(0).(domain.Dataset)
}

func (m *mockExplorer) FilterOptions(ctx context.Context, selection domain.Selection) (*domain.FilterOptions, error) {
	args := m.Called(ctx, selection)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FilterOptions), args.Error(1)
}

func (m *mockExplorer) Summary(ctx context.Context, selection domain.Selection) (*domain.Summary, error) {
	args := m.Called(ctx, selection)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Summary), args.Error(1)
}

func (m *mockExplorer) Categories(ctx context.Context, selection domain.Selection) ([]domain.CategorySpend, error) {
	args := m.Called(ctx, selection)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CategorySpend), args.Error(1)
}

func (m *mockExplorer) Trend(ctx context.Context, selection domain.Selection, bucket domain.TrendBucket) ([]domain.TrendPoint, error) {
	args := m.Called(ctx, selection, bucket)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TrendPoint), args.Error(1)
}

func (m *mockExplorer) Sunburst(ctx context.Context, selection domain.Selection) ([]domain.SunburstNode, error) {
	args := m.Called(ctx, selection)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SunburstNode), args.Error(1)
}

func (m *mockExplorer) Records(ctx context.Context, query domain.RecordQuery) (*domain.RecordPage, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RecordPage), args.Error(1)
}

func (m *mockExplorer) Overview(ctx context.Context, selection domain.Selection, bucket domain.TrendBucket) (*domain.Overview, error) {
	args := m.Called(ctx, selection, bucket)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Overview), args.Error(1)
}

func (m *mockExplorer) Report(ctx context.Context, selection domain.Selection, topCategories int) (*domain.Report, error) {
	args := m.Called(ctx, selection, topCategories)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Report), args.Error(1)
}

func setupRouter(manager *mockManager, registry *mockRegistry) *Router {
	return NewDashboardRouter(manager, registry)
}

func datasetRequest(method, target string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	ctx := chi.NewRouteContext()
	ctx.URLParams.Add("dataset", "procurement")
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, ctx))
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var response T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	return response
}

func TestListDatasets(t *testing.T) {
	loadedAt := time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC)
	snapshotID := uuid.New()

	tests := []struct {
		name           string
		setupMock      func(*mockManager)
		expectedStatus int
		expectedNames  []string
	}{
		{
			name: "successful response",
			setupMock: func(m *mockManager) {
				m.On("List", mock.Anything).Return([]domain.Dataset{
					{Name: "procurement", SourcePath: "spend.csv", Format: "csv", SnapshotID: snapshotID, RowCount: 5, Currency: "USD", LoadedAt: loadedAt},
					{Name: "travel", SourcePath: "travel.parquet", Format: "parquet", SnapshotID: snapshotID, RowCount: 2, Currency: "EUR", LoadedAt: loadedAt},
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedNames:  []string{"procurement", "travel"},
		},
		{
			name: "empty dataset list",
			setupMock: func(m *mockManager) {
				m.On("List", mock.Anything).Return([]domain.Dataset{}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedNames:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manager := new(mockManager)
			tt.setupMock(manager)
			router := setupRouter(manager, new(mockRegistry))

			req := httptest.NewRequest("GET", "/datasets", nil)
			rec := httptest.NewRecorder()

			router.ListDatasets(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			response := decodeBody[[]api.Dataset](t, rec)
			names := make([]string, 0, len(response))
			for _, ds := range response {
				names = append(names, ds.Name)
			}
			assert.Equal(t, tt.expectedNames, names)

			manager.AssertExpectations(t)
		})
	}
}

func TestGetDataset(t *testing.T) {
	t.Run("successful response", func(t *testing.T) {
		manager := new(mockManager)
		snapshotID := uuid.New()
		manager.On("Get", mock.Anything, "procurement").Return(&domain.Dataset{
			Name:        "procurement",
			SourcePath:  "spend.csv",
			Format:      "csv",
			SnapshotID:  snapshotID,
			RowCount:    5,
			AttrColumns: []string{"cost_center"},
			Currency:    "USD",
		}, nil)
		router := setupRouter(manager, new(mockRegistry))

		rec := httptest.NewRecorder()
		router.GetDataset(rec, datasetRequest("GET", "/datasets/procurement"))

		assert.Equal(t, http.StatusOK, rec.Code)
		response := decodeBody[api.Dataset](t, rec)
		assert.Equal(t, "procurement", response.Name)
		assert.Equal(t, snapshotID.String(), response.SnapshotID)
		assert.Equal(t, []string{"cost_center"}, response.AttrColumns)

		manager.AssertExpectations(t)
	})

	t.Run("unknown dataset", func(t *testing.T) {
		manager := new(mockManager)
		manager.On("Get", mock.Anything, "procurement").Return(nil, dataset.ErrNotLoaded)
		router := setupRouter(manager, new(mockRegistry))

		rec := httptest.NewRecorder()
		router.GetDataset(rec, datasetRequest("GET", "/datasets/procurement"))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		response := decodeBody[api.Error](t, rec)
		assert.NotEmpty(t, response.Error)
	})
}

func TestGetSummary(t *testing.T) {
	tests := []struct {
		name           string
		target         string
		setupMocks     func(*mockRegistry, *mockExplorer)
		expectedStatus int
		expectedBody   *api.Summary
	}{
		{
			name:   "successful response",
			target: "/datasets/procurement/summary?fiscal_year=2025&category=Office",
			setupMocks: func(r *mockRegistry, e *mockExplorer) {
				r.On("GetExplorer", mock.Anything, "procurement").Return(e, nil)
				e.On("Summary", mock.Anything, domain.Selection{
					FiscalYears: []int{2025},
					Categories:  []string{"Office"},
				}).Return(&domain.Summary{
					TotalSpend:       150,
					VendorCount:      2,
					TransactionCount: 2,
					CategoryCount:    1,
					Currency:         "USD",
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody: &api.Summary{
				TotalSpend:       150,
				VendorCount:      2,
				TransactionCount: 2,
				CategoryCount:    1,
				Currency:         "USD",
			},
		},
		{
			name:   "malformed fiscal year",
			target: "/datasets/procurement/summary?fiscal_year=twenty",
			setupMocks: func(r *mockRegistry, e *mockExplorer) {
				// Rejected before the registry is consulted.
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:   "unknown dataset",
			target: "/datasets/procurement/summary",
			setupMocks: func(r *mockRegistry, e *mockExplorer) {
				r.On("GetExplorer", mock.Anything, "procurement").Return(nil, dataset.ErrNotLoaded)
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := new(mockRegistry)
			explorer := new(mockExplorer)
			tt.setupMocks(registry, explorer)
			router := setupRouter(new(mockManager), registry)

			rec := httptest.NewRecorder()
			router.GetSummary(rec, datasetRequest("GET", tt.target))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedBody != nil {
				response := decodeBody[api.Summary](t, rec)
				assert.Equal(t, *tt.expectedBody, response)
			}

			registry.AssertExpectations(t)
			explorer.AssertExpectations(t)
		})
	}
}

func TestGetFilters(t *testing.T) {
	registry := new(mockRegistry)
	explorer := new(mockExplorer)
	registry.On("GetExplorer", mock.Anything, "procurement").Return(explorer, nil)
	explorer.On("FilterOptions", mock.Anything, domain.Selection{Categories: []string{"IT"}}).
		Return(&domain.FilterOptions{
			FiscalYears:   []domain.FiscalYearOption{{Year: 2025, Transactions: 2}},
			Categories:    []domain.FilterOption{{Value: "IT", Transactions: 2}, {Value: "Office", Transactions: 3}},
			SubCategories: []domain.FilterOption{{Value: "Cloud", Transactions: 1}, {Value: "Hardware", Transactions: 1}},
			Vendors:       []domain.FilterOption{{Value: "AWS", Transactions: 1}, {Value: "Dell", Transactions: 1}},
		}, nil)
	router := setupRouter(new(mockManager), registry)

	rec := httptest.NewRecorder()
	router.GetFilters(rec, datasetRequest("GET", "/datasets/procurement/filters?category=IT"))

	assert.Equal(t, http.StatusOK, rec.Code)
	response := decodeBody[api.FilterOptions](t, rec)
	assert.Equal(t, []api.FiscalYearOption{{Year: 2025, Transactions: 2}}, response.FiscalYears)
	assert.Len(t, response.Categories, 2)
	assert.Len(t, response.Vendors, 2)

	registry.AssertExpectations(t)
	explorer.AssertExpectations(t)
}

func TestGetTrendChart(t *testing.T) {
	t.Run("defaults to month buckets", func(t *testing.T) {
		registry := new(mockRegistry)
		explorer := new(mockExplorer)
		registry.On("GetExplorer", mock.Anything, "procurement").Return(explorer, nil)
		explorer.On("Trend", mock.Anything, domain.Selection{}, domain.BucketMonth).
			Return([]domain.TrendPoint{
				{Label: "2024-07", Total: 100, Transactions: 1},
				{Label: "2024-08"},
			}, nil)
		router := setupRouter(new(mockManager), registry)

		rec := httptest.NewRecorder()
		router.GetTrendChart(rec, datasetRequest("GET", "/datasets/procurement/charts/trend"))

		assert.Equal(t, http.StatusOK, rec.Code)
		response := decodeBody[[]api.TrendPoint](t, rec)
		assert.Equal(t, []api.TrendPoint{
			{Label: "2024-07", Total: 100, Transactions: 1},
			{Label: "2024-08"},
		}, response)

		registry.AssertExpectations(t)
		explorer.AssertExpectations(t)
	})

	t.Run("unknown bucket is a bad request", func(t *testing.T) {
		registry := new(mockRegistry)
		explorer := new(mockExplorer)
		registry.On("GetExplorer", mock.Anything, "procurement").Return(explorer, nil)
		explorer.On("Trend", mock.Anything, domain.Selection{}, domain.TrendBucket("week")).
			Return(nil, spend.NewFilterError("unknown trend bucket %q", "week"))
		router := setupRouter(new(mockManager), registry)

		rec := httptest.NewRecorder()
		router.GetTrendChart(rec, datasetRequest("GET", "/datasets/procurement/charts/trend?bucket=week"))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		response := decodeBody[api.Error](t, rec)
		assert.Contains(t, response.Error, "week")
	})
}

func TestGetSunburstChart(t *testing.T) {
	registry := new(mockRegistry)
	explorer := new(mockExplorer)
	registry.On("GetExplorer", mock.Anything, "procurement").Return(explorer, nil)
	explorer.On("Sunburst", mock.Anything, domain.Selection{}).
		Return([]domain.SunburstNode{
			{
				Category:     "IT",
				Total:        1500,
				Transactions: 2,
				Children: []domain.SunburstSlice{
					{SubCategory: "Hardware", Total: 1200, Transactions: 1},
					{SubCategory: "Cloud", Total: 300, Transactions: 1},
				},
			},
		}, nil)
	router := setupRouter(new(mockManager), registry)

	rec := httptest.NewRecorder()
	router.GetSunburstChart(rec, datasetRequest("GET", "/datasets/procurement/charts/sunburst"))

	assert.Equal(t, http.StatusOK, rec.Code)
	response := decodeBody[[]api.SunburstNode](t, rec)
	require.Len(t, response, 1)
	assert.Equal(t, "IT", response[0].Category)
	assert.Len(t, response[0].Children, 2)

	registry.AssertExpectations(t)
	explorer.AssertExpectations(t)
}

func TestListRecords(t *testing.T) {
	t.Run("successful response", func(t *testing.T) {
		registry := new(mockRegistry)
		explorer := new(mockExplorer)
		registry.On("GetExplorer", mock.Anything, "procurement").Return(explorer, nil)
		explorer.On("Records", mock.Anything, domain.RecordQuery{
			Selection: domain.Selection{Vendors: []string{"Staples"}},
			Search:    "desk",
			SortBy:    "amount",
			SortOrder: domain.SortDesc,
			Page:      2,
			PageSize:  25,
		}).Return(&domain.RecordPage{
			Records: []domain.SpendRecord{
				{ID: 2, Date: time.Date(2024, 8, 3, 0, 0, 0, 0, time.UTC), FiscalYear: 2025, Amount: 50, Vendor: "Amazon", Category: "Office", SubCategory: "Supplies", Description: "standing desk riser"},
			},
			TotalRecords: 26,
			Page:         2,
			PageSize:     25,
		}, nil)
		router := setupRouter(new(mockManager), registry)

		rec := httptest.NewRecorder()
		target := "/datasets/procurement/records?vendor=Staples&search=desk&sort=amount&order=desc&page=2&page_size=25"
		router.ListRecords(rec, datasetRequest("GET", target))

		assert.Equal(t, http.StatusOK, rec.Code)
		response := decodeBody[api.RecordPage](t, rec)
		assert.Equal(t, int64(26), response.TotalRecords)
		assert.Equal(t, 2, response.Page)
		require.Len(t, response.Records, 1)
		assert.Equal(t, "standing desk riser", response.Records[0].Description)

		registry.AssertExpectations(t)
		explorer.AssertExpectations(t)
	})

	t.Run("malformed page is a bad request", func(t *testing.T) {
		router := setupRouter(new(mockManager), new(mockRegistry))

		rec := httptest.NewRecorder()
		router.ListRecords(rec, datasetRequest("GET", "/datasets/procurement/records?page=first"))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		response := decodeBody[api.Error](t, rec)
		assert.Contains(t, response.Error, "page")
	})

	t.Run("unknown sort column is a bad request", func(t *testing.T) {
		registry := new(mockRegistry)
		explorer := new(mockExplorer)
		registry.On("GetExplorer", mock.Anything, "procurement").Return(explorer, nil)
		explorer.On("Records", mock.Anything, mock.Anything).
			Return(nil, spend.NewFilterError("unknown sort column %q", "unit_price"))
		router := setupRouter(new(mockManager), registry)

		rec := httptest.NewRecorder()
		router.ListRecords(rec, datasetRequest("GET", "/datasets/procurement/records?sort=unit_price"))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		response := decodeBody[api.Error](t, rec)
		assert.Contains(t, response.Error, "unit_price")
	})
}

func TestGetOverview(t *testing.T) {
	registry := new(mockRegistry)
	explorer := new(mockExplorer)
	registry.On("GetExplorer", mock.Anything, "procurement").Return(explorer, nil)
	explorer.On("Overview", mock.Anything, domain.Selection{FiscalYears: []int{2025}}, domain.BucketFiscalYear).
		Return(&domain.Overview{
			Summary: domain.Summary{TotalSpend: 1650, VendorCount: 4, TransactionCount: 4, CategoryCount: 2, Currency: "USD"},
			Categories: []domain.CategorySpend{
				{Category: "IT", Total: 1500, Transactions: 2},
				{Category: "Office", Total: 150, Transactions: 2},
			},
			Trend:    []domain.TrendPoint{{Label: "FY2025", Total: 1650, Transactions: 4}},
			Sunburst: []domain.SunburstNode{{Category: "IT", Total: 1500, Transactions: 2}},
		}, nil)
	router := setupRouter(new(mockManager), registry)

	rec := httptest.NewRecorder()
	router.GetOverview(rec, datasetRequest("GET", "/datasets/procurement/overview?fiscal_year=2025&bucket=fiscal_year"))

	assert.Equal(t, http.StatusOK, rec.Code)
	response := decodeBody[api.Overview](t, rec)
	assert.Equal(t, float64(1650), response.Summary.TotalSpend)
	assert.Len(t, response.Categories, 2)
	assert.Equal(t, []api.TrendPoint{{Label: "FY2025", Total: 1650, Transactions: 4}}, response.Trend)

	registry.AssertExpectations(t)
	explorer.AssertExpectations(t)
}
