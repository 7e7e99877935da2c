package main

import (
	"context"
	"fmt"
	"frontierbacktest/cmd"
	"frontierbacktest/internal/domain"
	"frontierbacktest/internal/logger"
	l3_service "frontierbacktest/internal/service/l3"
	"frontierbacktest/internal/util"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string

	minAllocation  float64
	maxAllocation  float64
	riskFreeRate   float64
	riskFreeSource string
	lookbackYears  int
	symbols        []string
	skipPersist    bool

	initialCapital float64
	benchmark      string
	benchmarkName  string
	windowDays     int
	skipReport     bool

	port int
)

var rootCmd = &cobra.Command{
	Use:   "frontierbacktest",
	Short: "Max-Sharpe portfolio optimizer and buy-and-hold backtester",
	Long: `frontierbacktest estimates a shrunk covariance matrix from historical
closes, solves for the maximum Sharpe portfolio with and without per-asset
bounds, and replays the resulting allocations against a benchmark.

Examples:
  frontierbacktest optimize --min 0.05 --max 0.30
  frontierbacktest backtest --capital 10000 --benchmark QQQ
  frontierbacktest serve --port 3009`,
	SilenceUsage: true,
}

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Optimize the asset list and write the recommended portfolio",
	RunE:  runOptimize,
}

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Replay saved allocations against the benchmark",
	RunE:  runBacktest,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the optimizer and backtest over http",
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to yaml config (defaults to $"+util.ConfigEnvVar+" or config.yaml)")

	optimizeCmd.Flags().Float64Var(&minAllocation, "min", 0, "Minimum weight per asset")
	optimizeCmd.Flags().Float64Var(&maxAllocation, "max", 0, "Maximum weight per asset")
	optimizeCmd.Flags().Float64Var(&riskFreeRate, "rf", 0, "Annual risk-free rate")
	optimizeCmd.Flags().StringVar(&riskFreeSource, "risk-free-source", "", "Risk-free rate source: fixed or treasury")
	optimizeCmd.Flags().IntVar(&lookbackYears, "lookback-years", 0, "Years of price history to estimate from")
	optimizeCmd.Flags().StringSliceVar(&symbols, "assets", nil, "Tickers to optimize instead of the asset list")
	optimizeCmd.Flags().BoolVar(&skipPersist, "dry-run", false, "Print results without writing artifacts")

	backtestCmd.Flags().Float64Var(&initialCapital, "capital", 0, "Initial capital per scenario")
	backtestCmd.Flags().StringVar(&benchmark, "benchmark", "", "Benchmark ticker")
	backtestCmd.Flags().StringVar(&benchmarkName, "benchmark-name", "", "Benchmark display label")
	backtestCmd.Flags().IntVar(&windowDays, "window-days", 0, "Calendar days to replay")
	backtestCmd.Flags().BoolVar(&skipReport, "no-report", false, "Skip the workbook and chart")

	serveCmd.Flags().IntVar(&port, "port", 0, "Port to listen on")

	rootCmd.AddCommand(optimizeCmd, backtestCmd, serveCmd)
}

func main() {
	defer zap.S().Sync()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(command *cobra.Command) (*util.Config, error) {
	var (
		cfg *util.Config
		err error
	)
	if configPath != "" {
		cfg, err = util.LoadConfigFile(configPath)
	} else {
		cfg, err = util.LoadConfig()
	}
	if err != nil {
		return nil, err
	}

	flags := command.Flags()
	if flags.Changed("min") {
		cfg.Optimizer.MinAllocation = minAllocation
	}
	if flags.Changed("max") {
		cfg.Optimizer.MaxAllocation = maxAllocation
	}
	if flags.Changed("rf") {
		cfg.Optimizer.RiskFreeRate = riskFreeRate
	}
	if flags.Changed("risk-free-source") {
		cfg.Optimizer.RiskFreeSource = riskFreeSource
	}
	if flags.Changed("lookback-years") {
		cfg.Optimizer.LookbackYears = lookbackYears
	}
	if flags.Changed("capital") {
		cfg.Backtest.InitialCapital = initialCapital
	}
	if flags.Changed("benchmark") {
		cfg.Backtest.BenchmarkTicker = benchmark
		cfg.Backtest.BenchmarkName = benchmark
	}
	if flags.Changed("benchmark-name") {
		cfg.Backtest.BenchmarkName = benchmarkName
	}
	if flags.Changed("window-days") {
		cfg.Backtest.WindowDays = windowDays
	}
	if flags.Changed("port") {
		cfg.Api.Port = port
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

func newCommandContext(command *cobra.Command, name string) (context.Context, *domain.Profile) {
	log := logger.New().With("command", name)
	ctx := logger.WithContext(command.Context(), log)
	return domain.NewCtxWithProfile(ctx)
}

func runOptimize(command *cobra.Command, args []string) error {
	cfg, err := loadConfig(command)
	if err != nil {
		return err
	}
	handler, err := cmd.InitializeDependencies(*cfg)
	if err != nil {
		return err
	}

	ctx, profile := newCommandContext(command, "optimize")
	result, err := handler.OptimizerService.Optimize(ctx, l3_service.OptimizeInput{
		Config:         cfg.Optimizer.OptimizerConfig,
		RiskFreeSource: cfg.Optimizer.RiskFreeSource,
		Symbols:        symbols,
	})
	if err != nil {
		return err
	}
	if !skipPersist {
		if err := handler.OptimizerService.Persist(ctx, result); err != nil {
			return err
		}
	}
	profile.End()

	printOptimizeResult(result)
	logger.FromContext(ctx).Infow("optimize complete", "runID", result.RunID, "spans", profile.Elapsed())
	return nil
}

func runBacktest(command *cobra.Command, args []string) error {
	cfg, err := loadConfig(command)
	if err != nil {
		return err
	}
	handler, err := cmd.InitializeDependencies(*cfg)
	if err != nil {
		return err
	}

	ctx, profile := newCommandContext(command, "backtest")
	result, err := handler.ComparisonService.Backtest(ctx, l3_service.BacktestInput{
		InitialCapital:  cfg.Backtest.InitialCapital,
		BenchmarkTicker: cfg.Backtest.BenchmarkTicker,
		BenchmarkName:   cfg.Backtest.BenchmarkName,
		WindowDays:      cfg.Backtest.WindowDays,
	})
	if err != nil {
		return err
	}
	if !skipReport {
		if err := handler.ComparisonService.Report(ctx, result); err != nil {
			return err
		}
	}
	profile.End()

	printBacktestResult(result)
	logger.FromContext(ctx).Infow("backtest complete", "runID", result.RunID, "spans", profile.Elapsed())
	return nil
}

func runServe(command *cobra.Command, args []string) error {
	cfg, err := loadConfig(command)
	if err != nil {
		return err
	}
	handler, err := cmd.InitializeDependencies(*cfg)
	if err != nil {
		return err
	}
	return handler.StartApi(cfg.Api.Port)
}

func pct(f float64) string {
	return fmt.Sprintf("%.2f%%", f*100)
}

func printOptimizeResult(result *l3_service.OptimizeResult) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "Window\t%s to %s\n", result.Start.Format("2006-01-02"), result.End.Format("2006-01-02"))
	if result.Prices != nil {
		if dropped := result.Prices.Missing(result.Requested); len(dropped) > 0 {
			fmt.Fprintf(w, "Dropped\t%s\n", strings.Join(dropped, ", "))
		}
	}
	fmt.Fprintf(w, "Risk-free rate\t%s\n\n", pct(result.Config.RiskFreeRate))

	for _, s := range []struct {
		name     string
		scenario l3_service.ScenarioOptimization
	}{
		{"Unconstrained", result.Unconstrained},
		{"Constrained " + result.Constrained.Bounds.Label(), result.Constrained},
	} {
		if s.scenario.Result == nil {
			fmt.Fprintf(w, "%s\tfailed: %s\n", s.name, s.scenario.Error)
			if s.scenario.Hint != "" {
				fmt.Fprintf(w, "\thint: %s\n", s.scenario.Hint)
			}
			continue
		}
		perf := s.scenario.Result.Performance
		fmt.Fprintf(w, "%s\treturn %s\tvolatility %s\tsharpe %.2f\n", s.name, pct(perf.Return), pct(perf.Volatility), perf.Sharpe)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Symbol\tUnconstrained\tConstrained\n")
	for _, row := range result.Comparison.Rows {
		fmt.Fprintf(w, "%s\t%s\t%s\n", row.Symbol, pct(row.Unconstrained), pct(row.Constrained))
	}
}

func printBacktestResult(result *l3_service.BacktestResult) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "Window\t%s to %s\n\n", result.Start.Format("2006-01-02"), result.End.Format("2006-01-02"))
	fmt.Fprintf(w, "Strategy\tTotal Return\tVolatility\tSharpe\tMax Drawdown\tFinal Value\n")
	for _, s := range result.Scenarios {
		if s.Absent {
			fmt.Fprintf(w, "%s\tunavailable\t\t\t\t\n", s.Label)
			continue
		}
		fmt.Fprintf(
			w,
			"%s\t%s\t%s\t%.2f\t%s\t%.2f\n",
			s.Label,
			pct(s.Metrics.Return),
			pct(s.Metrics.Volatility),
			s.Metrics.Sharpe,
			pct(s.MaxDrawdown),
			s.FinalValue,
		)
	}
}
