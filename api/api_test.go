package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"frontierbacktest/internal/calculator"
	"frontierbacktest/internal/domain"
	l3_service "frontierbacktest/internal/service/l3"
	mock_l3_service "frontierbacktest/internal/service/l3/mocks"
	"frontierbacktest/internal/util"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type apiMocks struct {
	optimizer  *mock_l3_service.MockOptimizerService
	comparison *mock_l3_service.MockComparisonService
}

func newTestServer(t *testing.T) (http.Handler, apiMocks) {
	ctrl := gomock.NewController(t)
	m := apiMocks{
		optimizer:  mock_l3_service.NewMockOptimizerService(ctrl),
		comparison: mock_l3_service.NewMockComparisonService(ctrl),
	}
	h := ApiHandler{
		Config:            util.DefaultConfig(),
		OptimizerService:  m.optimizer,
		ComparisonService: m.comparison,
	}
	return h.InitializeRouterEngine(), m
}

func doRequest(t *testing.T, server http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

func float64Ptr(f float64) *float64 {
	return &f
}

func boolPtr(b bool) *bool {
	return &b
}

func TestApiHandler_ping(t *testing.T) {
	server, _ := newTestServer(t)
	w := doRequest(t, server, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, w.Header().Get(requestIDHeader))
}

func TestApiHandler_optimize(t *testing.T) {
	start := time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	weights := domain.WeightVector{
		{Symbol: "AAA", Weight: 0.7},
		{Symbol: "BBB", Weight: 0.3},
	}
	result := &l3_service.OptimizeResult{
		RunID:     "run-1",
		Config:    util.DefaultConfig().Optimizer.OptimizerConfig,
		Start:     start,
		End:       end,
		Requested: []string{"AAA", "BBB", "GONE"},
		Prices: &domain.PriceMatrix{
			Dates:   []time.Time{start, end},
			Symbols: []string{"AAA", "BBB"},
			Columns: map[string][]float64{"AAA": {1, 2}, "BBB": {1, 1}},
		},
		Unconstrained: l3_service.ScenarioOptimization{
			Bounds: domain.UnconstrainedBounds,
			Result: &calculator.OptimizeResult{
				Bounds:       domain.UnconstrainedBounds,
				Weights:      weights,
				CleanWeights: weights,
				Performance:  domain.PerformanceMetrics{Return: 0.2, Volatility: 0.1, Sharpe: 1.55},
			},
		},
		Constrained: l3_service.ScenarioOptimization{
			Bounds: domain.Bounds{Lower: 0.05, Upper: 0.3},
			Error:  "infeasible",
			Hint:   "reduce the minimum allocation",
		},
	}

	t.Run("defaults and persist", func(t *testing.T) {
		server, m := newTestServer(t)
		m.optimizer.EXPECT().
			Optimize(gomock.Any(), l3_service.OptimizeInput{
				Config:         util.DefaultConfig().Optimizer.OptimizerConfig,
				RiskFreeSource: "fixed",
			}).
			Return(result, nil)
		m.optimizer.EXPECT().Persist(gomock.Any(), result).Return(nil)

		w := doRequest(t, server, http.MethodPost, "/optimize", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var response OptimizeResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		require.Equal(t, "run-1", response.RunID)
		require.Equal(t, "2020-06-01", response.Start)
		require.Equal(t, []string{"GONE"}, response.Dropped)
		require.Equal(t, "", cmp.Diff(weights, response.Unconstrained.Weights))
		require.Empty(t, response.Constrained.Weights)
		require.Equal(t, "reduce the minimum allocation", response.Constrained.Hint)
		require.True(t, response.Persisted)
	})

	t.Run("overrides without persist", func(t *testing.T) {
		server, m := newTestServer(t)
		expected := util.DefaultConfig().Optimizer.OptimizerConfig
		expected.MinAllocation = 0.1
		expected.MaxAllocation = 0.4
		m.optimizer.EXPECT().
			Optimize(gomock.Any(), l3_service.OptimizeInput{
				Config:         expected,
				RiskFreeSource: "fixed",
				Symbols:        []string{"AAA", "BBB"},
			}).
			Return(result, nil)

		w := doRequest(t, server, http.MethodPost, "/optimize", OptimizeRequest{
			MinAllocation: float64Ptr(0.1),
			MaxAllocation: float64Ptr(0.4),
			Symbols:       []string{"AAA", "BBB"},
			Persist:       boolPtr(false),
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	t.Run("invalid bounds", func(t *testing.T) {
		server, _ := newTestServer(t)
		w := doRequest(t, server, http.MethodPost, "/optimize", OptimizeRequest{
			MinAllocation: float64Ptr(0.5),
			MaxAllocation: float64Ptr(0.2),
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("fatal input", func(t *testing.T) {
		server, m := newTestServer(t)
		m.optimizer.EXPECT().
			Optimize(gomock.Any(), gomock.Any()).
			Return(nil, domain.NewFatalInputError("no usable price data", fmt.Errorf("empty")))

		w := doRequest(t, server, http.MethodPost, "/optimize", nil)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("persist failure", func(t *testing.T) {
		server, m := newTestServer(t)
		m.optimizer.EXPECT().Optimize(gomock.Any(), gomock.Any()).Return(result, nil)
		m.optimizer.EXPECT().Persist(gomock.Any(), result).Return(fmt.Errorf("disk full"))

		w := doRequest(t, server, http.MethodPost, "/optimize", nil)
		require.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestApiHandler_backtest(t *testing.T) {
	d := func(day int) time.Time { return time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC) }
	result := &l3_service.BacktestResult{
		RunID:          "run-2",
		Start:          d(2),
		End:            d(4),
		InitialCapital: 300,
		Scenarios: []domain.ScenarioResult{
			{
				Label:      l3_service.InitialPortfolioLabel,
				Series:     domain.CapitalSeries{Dates: []time.Time{d(2), d(3), d(4)}, Values: []float64{300, 300, 301}},
				FinalValue: 301,
			},
			{Label: l3_service.UnconstrainedLabel, Absent: true},
		},
	}

	t.Run("defaults and report", func(t *testing.T) {
		server, m := newTestServer(t)
		m.comparison.EXPECT().
			Backtest(gomock.Any(), l3_service.BacktestInput{
				InitialCapital:  10000,
				BenchmarkTicker: "QQQ",
				BenchmarkName:   "Benchmark (NASDAQ)",
				WindowDays:      365,
			}).
			Return(result, nil)
		m.comparison.EXPECT().Report(gomock.Any(), result).Return(nil)

		w := doRequest(t, server, http.MethodPost, "/backtest", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var response BacktestResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		require.Equal(t, "run-2", response.RunID)
		require.Len(t, response.Scenarios, 2)
		require.Equal(t, "", cmp.Diff(
			map[string]BacktestSnapshot{
				"2024-01-02": {Value: 300},
				"2024-01-03": {Value: 300},
				"2024-01-04": {Value: 301},
			},
			response.Scenarios[0].Series,
		))
		require.True(t, response.Scenarios[1].Absent)
	})

	t.Run("custom benchmark without report", func(t *testing.T) {
		server, m := newTestServer(t)
		ticker := "SPY"
		m.comparison.EXPECT().
			Backtest(gomock.Any(), l3_service.BacktestInput{
				InitialCapital:  300,
				BenchmarkTicker: "SPY",
				BenchmarkName:   "SPY",
				WindowDays:      365,
			}).
			Return(result, nil)

		w := doRequest(t, server, http.MethodPost, "/backtest", BacktestRequest{
			InitialCapital:  float64Ptr(300),
			BenchmarkTicker: &ticker,
			WriteReport:     boolPtr(false),
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	t.Run("invalid capital", func(t *testing.T) {
		server, _ := newTestServer(t)
		w := doRequest(t, server, http.MethodPost, "/backtest", BacktestRequest{
			InitialCapital: float64Ptr(-1),
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("fatal input", func(t *testing.T) {
		server, m := newTestServer(t)
		m.comparison.EXPECT().
			Backtest(gomock.Any(), gomock.Any()).
			Return(nil, domain.NewFatalInputError("no optimized portfolio available", fmt.Errorf("missing")))

		w := doRequest(t, server, http.MethodPost, "/backtest", nil)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}
