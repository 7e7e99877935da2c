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
	InitialPortfolioLabel   = "INITIAL PORTFOLIO"
	UnconstrainedLabel      = "MARKOWITZ (UNCONSTRAINED)"
	GenericConstrainedLabel = "MARKOWITZ (CONSTRAINED)"
)

// ConstrainedLabel names the constrained scenario after its bounds.
func ConstrainedLabel(bounds domain.Bounds) string {
	return fmt.Sprintf("MARKOWITZ (Min %.1f%% | Max %.0f%%)", bounds.Lower*100, bounds.Upper*100)
}

type BacktestInput struct {
	InitialCapital  float64
	BenchmarkTicker string
	BenchmarkName   string
	WindowDays      int
	End             time.Time
}

// ScenarioPortfolio is a weight vector to replay, with where it came from.
type ScenarioPortfolio struct {
	Label   string              `json:"label"`
	Source  string              `json:"source"`
	Weights domain.WeightVector `json:"weights"`
}

type BacktestResult struct {
	RunID          string                  `json:"runId"`
	Start          time.Time               `json:"start"`
	End            time.Time               `json:"end"`
	InitialCapital float64                 `json:"initialCapital"`
	Scenarios      []domain.ScenarioResult `json:"scenarios"`
}

type ComparisonService interface {
	// LoadScenarios recovers every portfolio to replay from the asset list
	// and the optimizer artifacts.
	LoadScenarios(ctx context.Context, in BacktestInput) ([]ScenarioPortfolio, error)
	Backtest(ctx context.Context, in BacktestInput) (*BacktestResult, error)
	// Report writes the workbook and the capital evolution chart.
	Report(ctx context.Context, result *BacktestResult) error
}

type comparisonServiceHandler struct {
	AssetUniverseRepository        repository.AssetUniverseRepository
	PriceService                   l1_service.PriceService
	RecommendedPortfolioRepository repository.RecommendedPortfolioRepository
	OptimizerReportRepository      repository.OptimizerReportRepository
	OptimizerConfigRepository      repository.OptimizerConfigRepository
	BacktestReportRepository       repository.BacktestReportRepository
	ChartRepository                repository.ChartRepository
	CapitalChartPath               string
}

func NewComparisonService(
	assetUniverseRepository repository.AssetUniverseRepository,
	priceService l1_service.PriceService,
	recommendedPortfolioRepository repository.RecommendedPortfolioRepository,
	optimizerReportRepository repository.OptimizerReportRepository,
	optimizerConfigRepository repository.OptimizerConfigRepository,
	backtestReportRepository repository.BacktestReportRepository,
	chartRepository repository.ChartRepository,
	capitalChartPath string,
) ComparisonService {
	return comparisonServiceHandler{
		AssetUniverseRepository:        assetUniverseRepository,
		PriceService:                   priceService,
		RecommendedPortfolioRepository: recommendedPortfolioRepository,
		OptimizerReportRepository:      optimizerReportRepository,
		OptimizerConfigRepository:      optimizerConfigRepository,
		BacktestReportRepository:       backtestReportRepository,
		ChartRepository:                chartRepository,
		CapitalChartPath:               capitalChartPath,
	}
}

func (h comparisonServiceHandler) LoadScenarios(ctx context.Context, in BacktestInput) ([]ScenarioPortfolio, error) {
	log := logger.FromContext(ctx)

	assetList, err := h.AssetUniverseRepository.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load asset list: %w", err)
	}
	manual := ScenarioPortfolio{Label: InitialPortfolioLabel, Source: "asset list", Weights: assetList.Weights}
	if assetList.Weights == nil {
		log.Warnw("asset list has no weight column; initial portfolio will be absent")
		manual.Source = ""
		manual.Weights = domain.WeightVector{}
	}

	// the workbook is read at most once and shared by both chains
	var stored *repository.StoredAllocations
	var storedErr error
	storedLoaded := false
	getStored := func(ctx context.Context) (*repository.StoredAllocations, error) {
		if !storedLoaded {
			stored, storedErr = h.OptimizerReportRepository.GetAllocations(ctx)
			storedLoaded = true
		}
		return stored, storedErr
	}

	workbookColumn := func(pick func(*repository.StoredAllocations) domain.WeightVector) func(ctx context.Context) (domain.WeightVector, bool, error) {
		return func(ctx context.Context) (domain.WeightVector, bool, error) {
			allocations, err := getStored(ctx)
			if err != nil {
				return nil, false, err
			}
			weights := pick(allocations)
			return weights, len(weights) > 0, nil
		}
	}

	unconstrained := h.loadPortfolio(ctx, UnconstrainedLabel, []source[domain.WeightVector]{
		{
			Name: "optimizer workbook unconstrained column",
			Get: workbookColumn(func(s *repository.StoredAllocations) domain.WeightVector {
				return s.Unconstrained
			}),
		},
	})

	constrained := h.loadPortfolio(ctx, h.constrainedLabel(ctx), []source[domain.WeightVector]{
		{
			Name: "recommended portfolio csv",
			Get: func(ctx context.Context) (domain.WeightVector, bool, error) {
				weights, err := h.RecommendedPortfolioRepository.Get(ctx)
				return weights, err == nil && len(weights) > 0, err
			},
		},
		{
			Name: "optimizer workbook constrained column",
			Get: workbookColumn(func(s *repository.StoredAllocations) domain.WeightVector {
				return s.Constrained
			}),
		},
	})

	if unconstrained.Weights.IsEmpty() && constrained.Weights.IsEmpty() {
		return nil, domain.NewFatalInputError("no optimized portfolio found; run optimize first", nil)
	}

	benchmark := ScenarioPortfolio{
		Label:   in.BenchmarkName,
		Source:  "benchmark",
		Weights: domain.WeightVector{{Symbol: domain.NormalizeSymbol(in.BenchmarkTicker), Weight: 1}},
	}
	if benchmark.Label == "" {
		benchmark.Label = benchmark.Weights[0].Symbol
	}

	return []ScenarioPortfolio{manual, unconstrained, constrained, benchmark}, nil
}

func (h comparisonServiceHandler) loadPortfolio(ctx context.Context, label string, sources []source[domain.WeightVector]) ScenarioPortfolio {
	log := logger.FromContext(ctx).With("scenario", label)

	weights, name, skipped, err := firstAvailable(ctx, sources)
	if err != nil {
		log.Warnw("no stored portfolio; scenario will be absent", "reasons", joinReasons(skipped))
		return ScenarioPortfolio{Label: label, Weights: domain.WeightVector{}}
	}
	if len(skipped) > 0 {
		log.Warnw("using fallback portfolio source", "source", name, "reasons", joinReasons(skipped))
	}
	return ScenarioPortfolio{Label: label, Source: name, Weights: weights}
}

func (h comparisonServiceHandler) constrainedLabel(ctx context.Context) string {
	log := logger.FromContext(ctx)

	bounds, name, skipped, err := firstAvailable(ctx, []source[domain.Bounds]{
		{
			Name: "optimizer config record",
			Get: func(ctx context.Context) (domain.Bounds, bool, error) {
				record, err := h.OptimizerConfigRepository.Get(ctx)
				if err != nil {
					return domain.Bounds{}, false, err
				}
				bounds, ok := record.Bounds()
				if !ok {
					return domain.Bounds{}, false, fmt.Errorf("record has no allocation bounds")
				}
				return *bounds, true, nil
			},
		},
		{
			Name: "optimizer workbook config sheet",
			Get: func(ctx context.Context) (domain.Bounds, bool, error) {
				bounds, err := h.OptimizerReportRepository.GetBounds(ctx)
				if err != nil {
					return domain.Bounds{}, false, err
				}
				return *bounds, true, nil
			},
		},
	})
	if err != nil {
		log.Warnw("could not recover allocation bounds; using generic label", "reasons", joinReasons(skipped))
		return GenericConstrainedLabel
	}
	if len(skipped) > 0 {
		log.Infow("allocation bounds recovered from fallback", "source", name, "reasons", joinReasons(skipped))
	}
	return ConstrainedLabel(bounds)
}

func (h comparisonServiceHandler) Backtest(ctx context.Context, in BacktestInput) (*BacktestResult, error) {
	runID := uuid.New().String()
	log := logger.FromContext(ctx).With("runID", runID)
	ctx = logger.WithContext(ctx, log)
	profile := domain.GetProfile(ctx)

	_, endSpan := profile.StartNewSpan("load scenarios")
	scenarios, err := h.LoadScenarios(ctx, in)
	endSpan()
	if err != nil {
		return nil, err
	}

	end := in.End
	if end.IsZero() {
		end = time.Now()
	}
	start, end := util.TrailingDays(end, in.WindowDays)

	symbols := []string{}
	seen := map[string]bool{}
	for _, s := range scenarios {
		for _, symbol := range s.Weights.Symbols() {
			if !seen[symbol] {
				seen[symbol] = true
				symbols = append(symbols, symbol)
			}
		}
	}

	log.Infow(
		"starting backtest",
		"assets", len(symbols),
		"start", start.Format(time.DateOnly),
		"end", end.Format(time.DateOnly),
		"initialCapital", in.InitialCapital,
	)

	_, endSpan = profile.StartNewSpan("load prices")
	prices, err := h.PriceService.LoadPriceMatrix(ctx, symbols, start, end)
	endSpan()
	if err != nil {
		return nil, fmt.Errorf("failed to load prices: %w", err)
	}

	_, endSpan = profile.StartNewSpan("simulate")
	results := []domain.ScenarioResult{}
	for _, s := range scenarios {
		series := domain.CapitalSeries{}
		if !s.Weights.IsEmpty() {
			if missing := prices.Missing(s.Weights.Symbols()); len(missing) > 0 {
				log.Warnw("assets without prices dropped from scenario", "scenario", s.Label, "symbols", missing)
			}
			series = l2_service.Simulate(ctx, s.Weights, prices, in.InitialCapital)
		}
		result := calculator.AnalyzeScenario(s.Label, s.Weights, series)
		if result.Absent {
			log.Warnw("scenario has no usable capital series", "scenario", s.Label)
		}
		results = append(results, result)
	}
	endSpan()

	logSummary(ctx, results)

	return &BacktestResult{
		RunID:          runID,
		Start:          prices.Dates[0],
		End:            prices.Dates[len(prices.Dates)-1],
		InitialCapital: in.InitialCapital,
		Scenarios:      results,
	}, nil
}

func logSummary(ctx context.Context, results []domain.ScenarioResult) {
	log := logger.FromContext(ctx)
	for _, r := range results {
		if r.Absent {
			continue
		}
		log.Infow(
			"scenario summary",
			"scenario", r.Label,
			"return", fmt.Sprintf("%.2f%%", r.Metrics.Return*100),
			"volatility", fmt.Sprintf("%.2f%%", r.Metrics.Volatility*100),
			"sharpe", fmt.Sprintf("%.2f", r.Metrics.Sharpe),
			"maxDrawdown", fmt.Sprintf("%.2f%%", r.MaxDrawdown*100),
			"finalValue", fmt.Sprintf("%.2f", r.FinalValue),
		)
	}
}

func (h comparisonServiceHandler) Report(ctx context.Context, result *BacktestResult) error {
	log := logger.FromContext(ctx).With("runID", result.RunID)
	profile := domain.GetProfile(ctx)
	_, endSpan := profile.StartNewSpan("report")
	defer endSpan()

	err := h.BacktestReportRepository.Save(ctx, repository.BacktestReport{
		Scenarios:      result.Scenarios,
		InitialCapital: result.InitialCapital,
		Start:          result.Start,
		End:            result.End,
	})
	if err != nil {
		return fmt.Errorf("failed to save backtest report: %w", err)
	}

	if h.CapitalChartPath != "" {
		if err := h.ChartRepository.SaveCapitalEvolution(ctx, h.CapitalChartPath, result.Scenarios); err != nil {
			log.Warnw("failed to render capital chart", "error", err.Error())
		}
	}

	log.Infow("saved backtest report")
	return nil
}

// IsFatal reports whether err should halt a run.
func IsFatal(err error) bool {
	fatal := domain.FatalInputError{}
	return errors.As(err, &fatal)
}
