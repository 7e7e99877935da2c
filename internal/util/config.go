package util

import (
	"errors"
	"fmt"
	"frontierbacktest/internal/domain"
	"frontierbacktest/internal/logger"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const ConfigEnvVar = "FRONTIER_CONFIG"

type Config struct {
	Paths     PathsConfig     `yaml:"paths"`
	Optimizer OptimizerConfig `yaml:"optimizer"`
	Backtest  BacktestConfig  `yaml:"backtest"`
	Provider  ProviderConfig  `yaml:"provider"`
	Api       ApiConfig       `yaml:"api"`
}

type PathsConfig struct {
	AssetList    string `yaml:"assetList"`
	ProcessedDir string `yaml:"processedDir"`
}

type OptimizerConfig struct {
	domain.OptimizerConfig `yaml:",inline"`
	// RiskFreeSource is "fixed" or "treasury".
	RiskFreeSource string `yaml:"riskFreeSource"`
}

type BacktestConfig struct {
	InitialCapital  float64 `yaml:"initialCapital"`
	BenchmarkTicker string  `yaml:"benchmarkTicker"`
	BenchmarkName   string  `yaml:"benchmarkName"`
	WindowDays      int     `yaml:"windowDays"`
}

type ProviderConfig struct {
	RequestsPerSecond      float64 `yaml:"requestsPerSecond"`
	Burst                  int     `yaml:"burst"`
	MaxConsecutiveFailures uint32  `yaml:"maxConsecutiveFailures"`
}

type ApiConfig struct {
	Port int `yaml:"port"`
}

func DefaultConfig() Config {
	return Config{
		Paths: PathsConfig{
			AssetList:    filepath.Join("data", "raw", "assets.csv"),
			ProcessedDir: filepath.Join("data", "processed"),
		},
		Optimizer: OptimizerConfig{
			OptimizerConfig: domain.OptimizerConfig{
				MinAllocation:      0.05,
				MaxAllocation:      0.30,
				RiskFreeRate:       0.045,
				LookbackYears:      4,
				TradingDaysPerYear: 252,
			},
			RiskFreeSource: "fixed",
		},
		Backtest: BacktestConfig{
			InitialCapital:  10000,
			BenchmarkTicker: "QQQ",
			BenchmarkName:   "Benchmark (NASDAQ)",
			WindowDays:      365,
		},
		Provider: ProviderConfig{
			RequestsPerSecond:      2,
			Burst:                  1,
			MaxConsecutiveFailures: 5,
		},
		Api: ApiConfig{
			Port: 3009,
		},
	}
}

func configFile() string {
	if f := os.Getenv(ConfigEnvVar); f != "" {
		return f
	}
	if logger.IsDev() {
		return "config-dev.yaml"
	}
	return "config.yaml"
}

// LoadConfig reads the yaml config over the defaults. A missing file is not
// an error.
func LoadConfig() (*Config, error) {
	return LoadConfigFile(configFile())
}

func LoadConfigFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	f, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", path, err)
	}

	err = yaml.Unmarshal(f, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return &cfg, nil
}

func (c Config) Validate() error {
	o := c.Optimizer
	if o.MinAllocation < 0 || o.MaxAllocation <= 0 || o.MinAllocation > o.MaxAllocation || o.MaxAllocation > 1 {
		return fmt.Errorf("allocation bounds must satisfy 0 <= min <= max <= 1, got [%v, %v]", o.MinAllocation, o.MaxAllocation)
	}
	if o.LookbackYears <= 0 {
		return fmt.Errorf("lookbackYears must be positive")
	}
	if o.TradingDaysPerYear <= 0 {
		return fmt.Errorf("tradingDaysPerYear must be positive")
	}
	if o.RiskFreeSource != "fixed" && o.RiskFreeSource != "treasury" {
		return fmt.Errorf("unknown riskFreeSource %q", o.RiskFreeSource)
	}
	if c.Backtest.InitialCapital <= 0 {
		return fmt.Errorf("initialCapital must be positive")
	}
	if c.Backtest.WindowDays <= 0 {
		return fmt.Errorf("windowDays must be positive")
	}
	if c.Provider.RequestsPerSecond <= 0 || c.Provider.Burst <= 0 {
		return fmt.Errorf("provider rate limit must be positive")
	}
	return nil
}

func (c Config) RecommendedPortfolioPath() string {
	return filepath.Join(c.Paths.ProcessedDir, "carteira_recomendada.csv")
}

func (c Config) OptimizerReportPath() string {
	return filepath.Join(c.Paths.ProcessedDir, "analise_portfolio_pro.xlsx")
}

func (c Config) OptimizerConfigPath() string {
	return filepath.Join(c.Paths.ProcessedDir, "optimizer_config.yaml")
}

func (c Config) FrontierChartPath() string {
	return filepath.Join(c.Paths.ProcessedDir, "efficient_frontier.png")
}

func (c Config) BacktestReportPath() string {
	return filepath.Join(c.Paths.ProcessedDir, "Relatorio_Final_Completo.xlsx")
}

func (c Config) BacktestChartPath() string {
	return filepath.Join(c.Paths.ProcessedDir, "capital_evolution.png")
}
