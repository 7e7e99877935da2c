package l3_service

import (
	"context"
	"fmt"
	"frontierbacktest/internal/calculator"
	"frontierbacktest/internal/domain"
	"frontierbacktest/internal/repository"
	mock_repository "frontierbacktest/internal/repository/mocks"
	l1_service "frontierbacktest/internal/service/l1"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"gonum.org/v1/gonum/mat"
)

var syntheticDrift = map[string]float64{
	"AAA": 0.0012,
	"BBB": 0.0006,
	"CCC": 0.0003,
	"DDD": 0.0001,
}

// syntheticPrices returns weekday closes in [start, end) following a
// deterministic drift plus a per-symbol oscillation.
func syntheticPrices(symbol string, start, end time.Time) []domain.AssetPrice {
	drift, ok := syntheticDrift[symbol]
	if !ok {
		return nil
	}
	k := float64(len(symbol) + int(symbol[0]-'A'))
	out := []domain.AssetPrice{}
	price := 100.0
	t := 0
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		price *= 1 + drift + 0.01*math.Sin(0.37*float64(t)*k+k)
		out = append(out, domain.AssetPrice{Symbol: symbol, Date: d, Price: price})
		t++
	}
	return out
}

type fakeRateProvider struct {
	rate float64
	err  error
}

func (f fakeRateProvider) LatestRate(ctx context.Context, date time.Time, monthsOut, maxDaysBack int) (float64, error) {
	return f.rate, f.err
}

type optimizerMocks struct {
	assetUniverse *mock_repository.MockAssetUniverseRepository
	prices        *mock_repository.MockPriceRepository
	recommended   *mock_repository.MockRecommendedPortfolioRepository
	report        *mock_repository.MockOptimizerReportRepository
	config        *mock_repository.MockOptimizerConfigRepository
	chart         *mock_repository.MockChartRepository
}

func newOptimizerHandler(t *testing.T, rates RiskFreeRateProvider) (optimizerServiceHandler, optimizerMocks) {
	ctrl := gomock.NewController(t)
	m := optimizerMocks{
		assetUniverse: mock_repository.NewMockAssetUniverseRepository(ctrl),
		prices:        mock_repository.NewMockPriceRepository(ctrl),
		recommended:   mock_repository.NewMockRecommendedPortfolioRepository(ctrl),
		report:        mock_repository.NewMockOptimizerReportRepository(ctrl),
		config:        mock_repository.NewMockOptimizerConfigRepository(ctrl),
		chart:         mock_repository.NewMockChartRepository(ctrl),
	}
	m.prices.EXPECT().
		List(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, symbol string, start, end time.Time) ([]domain.AssetPrice, error) {
			return syntheticPrices(symbol, start, end), nil
		}).
		AnyTimes()

	return optimizerServiceHandler{
		AssetUniverseRepository:        m.assetUniverse,
		PriceService:                   l1_service.NewPriceService(m.prices),
		RecommendedPortfolioRepository: m.recommended,
		OptimizerReportRepository:      m.report,
		OptimizerConfigRepository:      m.config,
		ChartRepository:                m.chart,
		RiskFreeRateProvider:           rates,
		FrontierChartPath:              "efficient_frontier.png",
	}, m
}

func testOptimizerConfig(lo, hi float64) domain.OptimizerConfig {
	return domain.OptimizerConfig{
		MinAllocation:      lo,
		MaxAllocation:      hi,
		RiskFreeRate:       0.01,
		LookbackYears:      1,
		TradingDaysPerYear: 252,
	}
}

var testEnd = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func requireValidWeights(t *testing.T, weights domain.WeightVector, bounds domain.Bounds) {
	t.Helper()
	require.InDelta(t, 1, weights.Sum(), 1e-6)
	for _, w := range weights {
		require.GreaterOrEqual(t, w.Weight, bounds.Lower-1e-9, w.Symbol)
		require.LessOrEqual(t, w.Weight, bounds.Upper+1e-9, w.Symbol)
	}
}

func Test_optimizerServiceHandler_Optimize(t *testing.T) {
	ctx := context.Background()

	t.Run("both scenarios from the asset list", func(t *testing.T) {
		handler, m := newOptimizerHandler(t, nil)
		m.assetUniverse.EXPECT().Get(gomock.Any()).Return(&repository.AssetList{
			Universe: domain.NewAssetUniverse([]string{"AAA", "BBB", "CCC", "DDD", "GONE"}),
		}, nil)

		result, err := handler.Optimize(ctx, OptimizeInput{
			Config:         testOptimizerConfig(0.1, 0.4),
			RiskFreeSource: RiskFreeSourceFixed,
			End:            testEnd,
		})
		require.NoError(t, err)

		require.Equal(t, []string{"AAA", "BBB", "CCC", "DDD"}, result.Prices.Symbols)
		require.NotNil(t, result.Unconstrained.Result)
		require.NotNil(t, result.Constrained.Result)
		requireValidWeights(t, result.Unconstrained.Result.Weights, domain.UnconstrainedBounds)
		requireValidWeights(t, result.Constrained.Result.Weights, domain.Bounds{Lower: 0.1, Upper: 0.4})
		require.GreaterOrEqual(t, result.Unconstrained.Result.Performance.Sharpe, result.Constrained.Result.Performance.Sharpe-1e-3)

		require.Equal(t, domain.Bounds{Lower: 0.1, Upper: 0.4}, result.Comparison.Bounds)
		require.Len(t, result.Comparison.Recommended, 4)
		require.InDelta(t, 1, result.Comparison.Recommended.Sum(), 1e-4)
		require.NotEmpty(t, result.Frontier)
		require.Equal(t, 0.01, result.Config.RiskFreeRate)
	})

	t.Run("infeasible constrained scenario keeps the run going", func(t *testing.T) {
		handler, _ := newOptimizerHandler(t, nil)

		result, err := handler.Optimize(ctx, OptimizeInput{
			Config:  testOptimizerConfig(0.3, 0.5),
			Symbols: []string{"aaa", "BBB ", "CCC", "DDD"},
			End:     testEnd,
		})
		require.NoError(t, err)

		require.NotNil(t, result.Unconstrained.Result)
		require.Nil(t, result.Constrained.Result)
		require.Contains(t, result.Constrained.Hint, "reduce the minimum allocation")
		require.Empty(t, result.Comparison.Recommended)
		require.NotEmpty(t, result.Comparison.Rows)
	})

	t.Run("treasury rate", func(t *testing.T) {
		handler, _ := newOptimizerHandler(t, fakeRateProvider{rate: 0.0523})
		result, err := handler.Optimize(ctx, OptimizeInput{
			Config:         testOptimizerConfig(0, 1),
			RiskFreeSource: RiskFreeSourceTreasury,
			Symbols:        []string{"AAA", "BBB"},
			End:            testEnd,
		})
		require.NoError(t, err)
		require.Equal(t, 0.0523, result.Config.RiskFreeRate)
	})

	t.Run("treasury unavailable falls back to configured rate", func(t *testing.T) {
		handler, _ := newOptimizerHandler(t, fakeRateProvider{err: fmt.Errorf("timeout")})
		result, err := handler.Optimize(ctx, OptimizeInput{
			Config:         testOptimizerConfig(0, 1),
			RiskFreeSource: RiskFreeSourceTreasury,
			Symbols:        []string{"AAA", "BBB"},
			End:            testEnd,
		})
		require.NoError(t, err)
		require.Equal(t, 0.01, result.Config.RiskFreeRate)
	})

	t.Run("no prices is fatal", func(t *testing.T) {
		handler, _ := newOptimizerHandler(t, nil)
		_, err := handler.Optimize(ctx, OptimizeInput{
			Config:  testOptimizerConfig(0.05, 0.3),
			Symbols: []string{"NOPE"},
			End:     testEnd,
		})
		require.Error(t, err)
		require.True(t, IsFatal(err))
	})

	t.Run("asset list failure is fatal", func(t *testing.T) {
		handler, m := newOptimizerHandler(t, nil)
		m.assetUniverse.EXPECT().Get(gomock.Any()).Return(nil, domain.NewFatalInputError("failed to read asset list", fmt.Errorf("missing")))
		_, err := handler.Optimize(ctx, OptimizeInput{Config: testOptimizerConfig(0.05, 0.3), End: testEnd})
		require.True(t, IsFatal(err))
	})
}

func Test_optimizerServiceHandler_Persist(t *testing.T) {
	ctx := context.Background()
	handler, m := newOptimizerHandler(t, nil)

	result, err := handler.Optimize(ctx, OptimizeInput{
		Config:  testOptimizerConfig(0.1, 0.4),
		Symbols: []string{"AAA", "BBB", "CCC", "DDD"},
		End:     testEnd,
	})
	require.NoError(t, err)

	m.recommended.EXPECT().Save(gomock.Any(), result.Comparison.Recommended).Return(nil)
	m.report.EXPECT().
		Save(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, report repository.OptimizerReport) error {
			require.Equal(t, result.Comparison, report.Comparison)
			require.Equal(t, result.Constrained.Result.Performance, report.Constrained)
			require.Len(t, report.Frontier, len(result.Frontier))
			return nil
		})
	m.config.EXPECT().
		Save(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, record repository.OptimizerConfigRecord) error {
			require.Equal(t, result.RunID, record.RunID)
			bounds, ok := record.Bounds()
			require.True(t, ok)
			require.Equal(t, domain.Bounds{Lower: 0.1, Upper: 0.4}, *bounds)
			return nil
		})
	m.chart.EXPECT().
		SaveEfficientFrontier(gomock.Any(), "efficient_frontier.png", gomock.Any()).
		DoAndReturn(func(ctx context.Context, path string, chart repository.FrontierChart) error {
			require.Len(t, chart.Frontier, len(result.Frontier))
			require.Len(t, chart.Assets, 4)
			require.Equal(t, "AAA", chart.Assets[0].Label)
			require.Equal(t, result.Moments.Mu[0], chart.Assets[0].Return)
			require.Equal(t, result.Moments.Volatility(0), chart.Assets[0].Volatility)
			require.Equal(t, "", cmp.Diff(
				[]repository.ChartPoint{
					{
						Label:      "Max Sharpe 0%-100%",
						Return:     result.Unconstrained.Result.Performance.Return,
						Volatility: result.Unconstrained.Result.Performance.Volatility,
					},
					{
						Label:      "Max Sharpe 10%-40%",
						Return:     result.Constrained.Result.Performance.Return,
						Volatility: result.Constrained.Result.Performance.Volatility,
					},
				},
				chart.Portfolios,
			))
			return fmt.Errorf("no fonts")
		})

	require.NoError(t, handler.Persist(ctx, result))

	t.Run("save failure stops before the config record", func(t *testing.T) {
		handler, m := newOptimizerHandler(t, nil)
		m.recommended.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
		m.report.EXPECT().Save(gomock.Any(), gomock.Any()).Return(fmt.Errorf("disk full"))
		require.Error(t, handler.Persist(ctx, result))
	})
}

func Test_frontierChart(t *testing.T) {
	frontier := []repository.FrontierPoint{{Return: 0.05, Volatility: 0.1}, {Return: 0.1, Volatility: 0.2}}

	t.Run("failed scenario is left off", func(t *testing.T) {
		result := &OptimizeResult{
			Config: testOptimizerConfig(0.3, 0.4),
			Unconstrained: ScenarioOptimization{
				Bounds: domain.UnconstrainedBounds,
				Result: &calculator.OptimizeResult{
					Performance: domain.PerformanceMetrics{Return: 0.09, Volatility: 0.15, Sharpe: 0.6},
				},
			},
			Constrained: ScenarioOptimization{
				Bounds: domain.Bounds{Lower: 0.3, Upper: 0.4},
				Error:  "infeasible",
			},
		}
		chart := frontierChart(result, frontier)
		require.Equal(t, "", cmp.Diff(
			[]repository.ChartPoint{{Label: "Max Sharpe 0%-100%", Return: 0.09, Volatility: 0.15}},
			chart.Portfolios,
		))
		require.Empty(t, chart.Assets)
		require.Contains(t, chart.Subtitle, "30%-40%")
	})

	t.Run("assets from moments", func(t *testing.T) {
		sigma := mat.NewSymDense(2, []float64{0.04, 0, 0, 0.09})
		result := &OptimizeResult{
			Config: testOptimizerConfig(0, 1),
			Moments: &calculator.MomentEstimates{
				Symbols: []string{"AAA", "BBB"},
				Mu:      []float64{0.08, 0.12},
				Sigma:   sigma,
			},
		}
		chart := frontierChart(result, frontier)
		require.Empty(t, chart.Portfolios)
		require.Len(t, chart.Assets, 2)
		require.Equal(t, "BBB", chart.Assets[1].Label)
		require.Equal(t, 0.12, chart.Assets[1].Return)
		require.InDelta(t, 0.3, chart.Assets[1].Volatility, 1e-12)
	})
}
