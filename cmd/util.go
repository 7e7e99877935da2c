package cmd

import (
	"frontierbacktest/api"
	"frontierbacktest/internal/repository"
	l1_service "frontierbacktest/internal/service/l1"
	l3_service "frontierbacktest/internal/service/l3"
	"frontierbacktest/internal/util"
	interestrate "frontierbacktest/pkg/interest_rate"
)

func InitializeDependencies(cfg util.Config) (*api.ApiHandler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	priceRepository := repository.NewYahooPriceRepository(repository.PriceRepositoryConfig{
		RequestsPerSecond:      cfg.Provider.RequestsPerSecond,
		Burst:                  cfg.Provider.Burst,
		MaxConsecutiveFailures: cfg.Provider.MaxConsecutiveFailures,
	})
	assetUniverseRepository := repository.NewAssetUniverseRepository(cfg.Paths.AssetList)
	recommendedPortfolioRepository := repository.NewRecommendedPortfolioRepository(cfg.RecommendedPortfolioPath())
	optimizerReportRepository := repository.NewOptimizerReportRepository(cfg.OptimizerReportPath())
	optimizerConfigRepository := repository.NewOptimizerConfigRepository(cfg.OptimizerConfigPath())
	backtestReportRepository := repository.NewBacktestReportRepository(cfg.BacktestReportPath())
	chartRepository := repository.NewChartRepository()

	priceService := l1_service.NewPriceService(priceRepository)
	treasuryClient := interestrate.NewClient()

	optimizerService := l3_service.NewOptimizerService(
		assetUniverseRepository,
		priceService,
		recommendedPortfolioRepository,
		optimizerReportRepository,
		optimizerConfigRepository,
		chartRepository,
		treasuryClient,
		cfg.FrontierChartPath(),
	)
	comparisonService := l3_service.NewComparisonService(
		assetUniverseRepository,
		priceService,
		recommendedPortfolioRepository,
		optimizerReportRepository,
		optimizerConfigRepository,
		backtestReportRepository,
		chartRepository,
		cfg.BacktestChartPath(),
	)

	apiHandler := &api.ApiHandler{
		Config:            cfg,
		OptimizerService:  optimizerService,
		ComparisonService: comparisonService,
	}

	return apiHandler, nil
}
