package l3_service

import (
	"context"
	"errors"
	"fmt"
	"frontierbacktest/internal/calculator"
	"frontierbacktest/internal/domain"
	"frontierbacktest/internal/logger"
	"frontierbacktest/internal/repository"
	l1_service "frontierbacktest/internal/service/l1"
	l2_service "frontierbacktest/internal/service/l2"
	"frontierbacktest/internal/util"
	"time"

	"github.com/google/uuid"
)

const (
	RiskFreeSourceFixed    = "fixed"
	RiskFreeSourceTreasury = "treasury"

	frontierPoints      = 40
	treasuryMaturity    = 3
	treasuryMaxDaysBack = 7
)

// RiskFreeRateProvider looks up a published short-term yield.
type RiskFreeRateProvider interface {
	LatestRate(ctx context.Context, date time.Time, monthsOut, maxDaysBack int) (float64, error)
}

type OptimizeInput struct {
	Config         domain.OptimizerConfig
	RiskFreeSource string
	// Symbols overrides the asset list when set.
	Symbols []string
	End     time.Time
}

type ScenarioOptimization struct {
	Bounds domain.Bounds              `json:"bounds"`
	Result *calculator.OptimizeResult `json:"result,omitempty"`
	Error  string                     `json:"error,omitempty"`
	Hint   string                     `json:"hint,omitempty"`
}

func (s ScenarioOptimization) cleanWeights() domain.WeightVector {
	if s.Result == nil {
		return domain.WeightVector{}
	}
	return s.Result.CleanWeights
}

func (s ScenarioOptimization) performance() domain.PerformanceMetrics {
	if s.Result == nil {
		return domain.PerformanceMetrics{}
	}
	return s.Result.Performance
}

type OptimizeResult struct {
	RunID         string                      `json:"runId"`
	Config        domain.OptimizerConfig      `json:"config"`
	Start         time.Time                   `json:"start"`
	End           time.Time                   `json:"end"`
	Requested     []string                    `json:"requested"`
	Prices        *domain.PriceMatrix         `json:"-"`
	Moments       *calculator.MomentEstimates `json:"-"`
	Unconstrained ScenarioOptimization        `json:"unconstrained"`
	Constrained   ScenarioOptimization        `json:"constrained"`
	Comparison    domain.AllocationComparison `json:"comparison"`
	Frontier      []calculator.FrontierPoint  `json:"frontier"`
}

type OptimizerService interface {
	// Optimize computes both scenarios without writing anything.
	Optimize(ctx context.Context, in OptimizeInput) (*OptimizeResult, error)
	// Persist writes the recommended portfolio, the workbook, the config
	// record and the frontier chart.
	Persist(ctx context.Context, result *OptimizeResult) error
}

type optimizerServiceHandler struct {
	AssetUniverseRepository        repository.AssetUniverseRepository
	PriceService                   l1_service.PriceService
	RecommendedPortfolioRepository repository.RecommendedPortfolioRepository
	OptimizerReportRepository      repository.OptimizerReportRepository
	OptimizerConfigRepository      repository.OptimizerConfigRepository
	ChartRepository                repository.ChartRepository
	RiskFreeRateProvider           RiskFreeRateProvider
	FrontierChartPath              string
}

func NewOptimizerService(
	assetUniverseRepository repository.AssetUniverseRepository,
	priceService l1_service.PriceService,
	recommendedPortfolioRepository repository.RecommendedPortfolioRepository,
	optimizerReportRepository repository.OptimizerReportRepository,
	optimizerConfigRepository repository.OptimizerConfigRepository,
	chartRepository repository.ChartRepository,
	riskFreeRateProvider RiskFreeRateProvider,
	frontierChartPath string,
) OptimizerService {
	return optimizerServiceHandler{
		AssetUniverseRepository:        assetUniverseRepository,
		PriceService:                   priceService,
		RecommendedPortfolioRepository: recommendedPortfolioRepository,
		OptimizerReportRepository:      optimizerReportRepository,
		OptimizerConfigRepository:      optimizerConfigRepository,
		ChartRepository:                chartRepository,
		RiskFreeRateProvider:           riskFreeRateProvider,
		FrontierChartPath:              frontierChartPath,
	}
}

func (h optimizerServiceHandler) Optimize(ctx context.Context, in OptimizeInput) (*OptimizeResult, error) {
	runID := uuid.New().String()
	log := logger.FromContext(ctx).With("runID", runID)
	ctx = logger.WithContext(ctx, log)
	profile := domain.GetProfile(ctx)

	cfg := in.Config
	if cfg.TradingDaysPerYear == 0 {
		cfg.TradingDaysPerYear = calculator.TradingDaysPerYear
	}

	_, endSpan := profile.StartNewSpan("load universe")
	symbols, err := h.universe(ctx, in.Symbols)
	endSpan()
	if err != nil {
		return nil, err
	}

	end := in.End
	if end.IsZero() {
		end = time.Now()
	}
	start, end := util.LookbackWindow(end, cfg.LookbackYears)

	cfg.RiskFreeRate = h.riskFreeRate(ctx, in.RiskFreeSource, cfg.RiskFreeRate, end)

	log.Infow(
		"starting optimization",
		"assets", len(symbols),
		"start", start.Format(time.DateOnly),
		"end", end.Format(time.DateOnly),
		"bounds", cfg.Bounds().Label(),
		"riskFreeRate", cfg.RiskFreeRate,
	)

	_, endSpan = profile.StartNewSpan("load prices")
	prices, err := h.PriceService.LoadPriceMatrix(ctx, symbols, start, end)
	endSpan()
	if err != nil {
		return nil, fmt.Errorf("failed to load prices: %w", err)
	}

	_, endSpan = profile.StartNewSpan("estimate moments")
	moments, err := calculator.EstimateMoments(prices, cfg.TradingDaysPerYear)
	endSpan()
	if err != nil {
		return nil, domain.NewFatalInputError("failed to estimate moments", err)
	}
	log.Debugw("estimated moments", "shrinkage", moments.Shrinkage)

	_, endSpan = profile.StartNewSpan("optimize")
	unconstrained := optimizeScenario(ctx, "unconstrained", moments, domain.UnconstrainedBounds, cfg.RiskFreeRate)
	constrained := optimizeScenario(ctx, "constrained", moments, cfg.Bounds(), cfg.RiskFreeRate)
	endSpan()

	comparison := l2_service.CompareAllocations(
		unconstrained.cleanWeights(),
		constrained.cleanWeights(),
		cfg.Bounds(),
		calculator.CleanWeightCutoff,
	)

	_, endSpan = profile.StartNewSpan("efficient frontier")
	frontier, err := calculator.EfficientFrontier(moments, domain.UnconstrainedBounds, cfg.RiskFreeRate, frontierPoints)
	endSpan()
	if err != nil {
		log.Warnw("skipping efficient frontier", "error", err.Error())
		frontier = nil
	}

	return &OptimizeResult{
		RunID:         runID,
		Config:        cfg,
		Start:         start,
		End:           end,
		Requested:     symbols,
		Prices:        prices,
		Moments:       moments,
		Unconstrained: unconstrained,
		Constrained:   constrained,
		Comparison:    comparison,
		Frontier:      frontier,
	}, nil
}

func (h optimizerServiceHandler) universe(ctx context.Context, override []string) ([]string, error) {
	if len(override) > 0 {
		universe := domain.NewAssetUniverse(override)
		if universe.Size() == 0 {
			return nil, domain.NewFatalInputError("no tickers given", nil)
		}
		return universe.Symbols, nil
	}

	assetList, err := h.AssetUniverseRepository.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load asset list: %w", err)
	}
	return assetList.Universe.Symbols, nil
}

func (h optimizerServiceHandler) riskFreeRate(ctx context.Context, sourceName string, configured float64, date time.Time) float64 {
	log := logger.FromContext(ctx)

	sources := []source[float64]{}
	if sourceName == RiskFreeSourceTreasury && h.RiskFreeRateProvider != nil {
		sources = append(sources, source[float64]{
			Name: "treasury 3-month yield",
			Get: func(ctx context.Context) (float64, bool, error) {
				rate, err := h.RiskFreeRateProvider.LatestRate(ctx, date, treasuryMaturity, treasuryMaxDaysBack)
				return rate, err == nil, err
			},
		})
	}
	sources = append(sources, source[float64]{
		Name: "configured rate",
		Get: func(ctx context.Context) (float64, bool, error) {
			return configured, true, nil
		},
	})

	rate, name, skipped, _ := firstAvailable(ctx, sources)
	if len(skipped) > 0 {
		log.Warnw("risk-free rate source unavailable", "reasons", joinReasons(skipped), "using", name)
	}
	return rate
}

func optimizeScenario(ctx context.Context, name string, moments *calculator.MomentEstimates, bounds domain.Bounds, riskFreeRate float64) ScenarioOptimization {
	log := logger.FromContext(ctx).With("scenario", name, "bounds", bounds.Label())

	out := ScenarioOptimization{Bounds: bounds}
	result, err := calculator.MaxSharpe(moments, bounds, riskFreeRate)
	if err != nil {
		out.Error = err.Error()
		infeasible := domain.InfeasibleConstraintError{}
		if errors.As(err, &infeasible) {
			out.Hint = infeasible.Hint()
			log.Errorw("infeasible allocation bounds", "error", err.Error(), "hint", out.Hint)
		} else {
			log.Errorw("optimization failed", "error", err.Error())
		}
		return out
	}

	out.Result = result
	log.Infow(
		"optimized portfolio",
		"expectedReturn", result.Performance.Return,
		"volatility", result.Performance.Volatility,
		"sharpe", result.Performance.Sharpe,
		"holdings", len(result.CleanWeights.Prune(0)),
	)
	return out
}

func (h optimizerServiceHandler) Persist(ctx context.Context, result *OptimizeResult) error {
	log := logger.FromContext(ctx).With("runID", result.RunID)
	profile := domain.GetProfile(ctx)
	_, endSpan := profile.StartNewSpan("persist")
	defer endSpan()

	if result.Comparison.Recommended.IsEmpty() {
		log.Warnw("constrained scenario produced no portfolio; recommended portfolio will be empty")
	}
	if err := h.RecommendedPortfolioRepository.Save(ctx, result.Comparison.Recommended); err != nil {
		return fmt.Errorf("failed to save recommended portfolio: %w", err)
	}

	frontier := make([]repository.FrontierPoint, 0, len(result.Frontier))
	for _, p := range result.Frontier {
		frontier = append(frontier, repository.FrontierPoint{
			Return:     p.Performance.Return,
			Volatility: p.Performance.Volatility,
		})
	}

	err := h.OptimizerReportRepository.Save(ctx, repository.OptimizerReport{
		Comparison:    result.Comparison,
		Prices:        result.Prices,
		Unconstrained: result.Unconstrained.performance(),
		Constrained:   result.Constrained.performance(),
		Frontier:      frontier,
	})
	if err != nil {
		return fmt.Errorf("failed to save optimizer report: %w", err)
	}

	symbols := []string{}
	if result.Prices != nil {
		symbols = result.Prices.Symbols
	}
	record := repository.NewOptimizerConfigRecord(result.RunID, result.Config, symbols, time.Now())
	if err := h.OptimizerConfigRepository.Save(ctx, record); err != nil {
		return fmt.Errorf("failed to save optimizer config: %w", err)
	}

	if len(frontier) > 0 && h.FrontierChartPath != "" {
		err := h.ChartRepository.SaveEfficientFrontier(ctx, h.FrontierChartPath, frontierChart(result, frontier))
		if err != nil {
			log.Warnw("failed to render efficient frontier", "error", err.Error())
		}
	}

	log.Infow("saved optimizer artifacts", "recommended", len(result.Comparison.Recommended))
	return nil
}

// frontierChart places every asset and each scenario that solved alongside
// the traced frontier.
func frontierChart(result *OptimizeResult, frontier []repository.FrontierPoint) repository.FrontierChart {
	chart := repository.FrontierChart{
		Frontier: frontier,
		Subtitle: fmt.Sprintf(
			"Max Sharpe %s: %s | %s: %s",
			domain.UnconstrainedBounds.Label(),
			formatPerformance(result.Unconstrained.performance()),
			result.Config.Bounds().Label(),
			formatPerformance(result.Constrained.performance()),
		),
	}
	if result.Moments != nil {
		for i, symbol := range result.Moments.Symbols {
			chart.Assets = append(chart.Assets, repository.ChartPoint{
				Label:      symbol,
				Return:     result.Moments.Mu[i],
				Volatility: result.Moments.Volatility(i),
			})
		}
	}
	for _, s := range []struct {
		bounds   domain.Bounds
		scenario ScenarioOptimization
	}{
		{domain.UnconstrainedBounds, result.Unconstrained},
		{result.Config.Bounds(), result.Constrained},
	} {
		if s.scenario.Result == nil {
			continue
		}
		perf := s.scenario.Result.Performance
		chart.Portfolios = append(chart.Portfolios, repository.ChartPoint{
			Label:      "Max Sharpe " + s.bounds.Label(),
			Return:     perf.Return,
			Volatility: perf.Volatility,
		})
	}
	return chart
}

func formatPerformance(p domain.PerformanceMetrics) string {
	return fmt.Sprintf("ret %.1f%% vol %.1f%% sharpe %.2f", p.Return*100, p.Volatility*100, p.Sharpe)
}
