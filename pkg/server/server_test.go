package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
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

func TestWebAPI_Endpoints(t *testing.T) {
	logger := zerolog.New(zerolog.NewTestWriter(t))

	mockDatasets := new(mockManager)
	mockSpend := new(mockRegistry)
	mockExp := new(mockExplorer)

	config := Config{
		Addr:            ":8080",
		ShutdownTimeout: 10 * time.Second,
		Dependencies: Dependencies{
			Datasets: mockDatasets,
			Spend:    mockSpend,
			Logger:   logger,
		},
	}
	router := ConfigureRouter(config)
	testServer := httptest.NewServer(router)
	defer testServer.Close()

	loadedAt := time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		path           string
		setupMocks     func()
		expectedStatus int
		expected       interface{}
		parseResponse  func([]byte) (interface{}, error)
	}{
		{
			name: "ListDatasets",
			path: "/api/v1/datasets",
			setupMocks: func() {
				mockDatasets.On("List", mock.Anything).
					Return([]domain.Dataset{{Name: "procurement", Format: "csv", RowCount: 5, Currency: "USD", LoadedAt: loadedAt}}, nil)
			},
			expectedStatus: http.StatusOK,
			expected: []api.Dataset{{
				Name:       "procurement",
				Format:     "csv",
				SnapshotID: "00000000-0000-0000-0000-000000000000",
				RowCount:   5,
				Currency:   "USD",
				LoadedAt:   loadedAt,
			}},
			parseResponse: unmarshalResponse[[]api.Dataset](),
		},
		{
			name: "GetSummary",
			path: "/api/v1/datasets/procurement/summary?fiscal_year=2025&category=Office",
			setupMocks: func() {
				mockSpend.On("GetExplorer", mock.Anything, "procurement").Return(mockExp, nil)
				mockExp.On("Summary", mock.Anything, domain.Selection{
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
			expected: api.Summary{
				TotalSpend:       150,
				VendorCount:      2,
				TransactionCount: 2,
				CategoryCount:    1,
				Currency:         "USD",
			},
			parseResponse: unmarshalResponse[api.Summary](),
		},
		{
			name: "GetSummary_UnknownDataset",
			path: "/api/v1/datasets/archive/summary",
			setupMocks: func() {
				mockSpend.On("GetExplorer", mock.Anything, "archive").
					Return(nil, dataset.ErrNotLoaded)
			},
			expectedStatus: http.StatusNotFound,
			expected:       api.Error{Error: dataset.ErrNotLoaded.Error()},
			parseResponse:  unmarshalResponse[api.Error](),
		},
		{
			name: "GetTrendChart_UnknownBucket",
			path: "/api/v1/datasets/procurement/charts/trend?bucket=week",
			setupMocks: func() {
				mockSpend.On("GetExplorer", mock.Anything, "procurement").Return(mockExp, nil)
				mockExp.On("Trend", mock.Anything, domain.Selection{}, domain.TrendBucket("week")).
					Return(nil, spend.NewFilterError("unknown trend bucket %q", "week"))
			},
			expectedStatus: http.StatusBadRequest,
			expected:       api.Error{Error: `unknown trend bucket "week"`},
			parseResponse:  unmarshalResponse[api.Error](),
		},
		{
			name: "GetSummary_MalformedFiscalYear",
			path: "/api/v1/datasets/procurement/summary?fiscal_year=twenty",
			setupMocks: func() {
			},
			expectedStatus: http.StatusBadRequest,
			expected:       api.Error{Error: `invalid fiscal_year "twenty"`},
			parseResponse:  unmarshalResponse[api.Error](),
		},
		{
			name: "ListRecords",
			path: "/api/v1/datasets/procurement/records?search=desk&page=1&page_size=10",
			setupMocks: func() {
				mockSpend.On("GetExplorer", mock.Anything, "procurement").Return(mockExp, nil)
				mockExp.On("Records", mock.Anything, domain.RecordQuery{
					Search:   "desk",
					Page:     1,
					PageSize: 10,
				}).Return(&domain.RecordPage{
					Records:      []domain.SpendRecord{},
					TotalRecords: 0,
					Page:         1,
					PageSize:     10,
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expected: api.RecordPage{
				Records:      []api.SpendRecord{},
				TotalRecords: 0,
				Page:         1,
				PageSize:     10,
			},
			parseResponse: unmarshalResponse[api.RecordPage](),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.setupMocks()
			resp, err := http.Get(testServer.URL + tc.path)
			require.NoError(t, err, "Failed to send request")
			defer resp.Body.Close()

			assert.Equal(t, tc.expectedStatus, resp.StatusCode, "Status code mismatch")

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err, "Failed to read response body")

			actual, err := tc.parseResponse(body)
			require.NoError(t, err, "Failed to parse response")

			assert.Equal(t, tc.expected, actual)
		})
	}
}

func unmarshalResponse[T any]() func([]byte) (interface{}, error) {
	return func(data []byte) (interface{}, error) {
		var response T
		err := json.Unmarshal(data, &response)
		return response, err
	}
}
