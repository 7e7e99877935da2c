package calculator

import (
	"frontierbacktest/internal/domain"
	"math"

	"github.com/montanaflynn/stats"
)

const TradingDaysPerYear = 252

// CalculateMetrics returns total return over the series, annualized volatility
// of daily returns, and their ratio. Degenerate series yield zero metrics.
func CalculateMetrics(series domain.CapitalSeries) domain.PerformanceMetrics {
	if series.Len() == 0 || series.Values[0] == 0 {
		return domain.PerformanceMetrics{}
	}

	totalReturn := series.Last()/series.Values[0] - 1

	annualizedStdev := 0.0
	returns := calculateReturns(series.Values)
	if len(returns) >= 2 {
		stdev, err := stats.StandardDeviationSample(returns)
		if err == nil && !math.IsNaN(stdev) {
			annualizedStdev = stdev * math.Sqrt(TradingDaysPerYear)
		}
	}

	sharpeRatio := 0.0
	if annualizedStdev > 0 {
		sharpeRatio = totalReturn / annualizedStdev
	}

	return domain.PerformanceMetrics{
		Return:     totalReturn,
		Volatility: annualizedStdev,
		Sharpe:     sharpeRatio,
	}
}

func calculateReturns(values []float64) []float64 {
	returns := []float64{}
	for i := 1; i < len(values); i++ {
		if values[i-1] == 0 {
			continue
		}
		returns = append(returns, values[i]/values[i-1]-1)
	}
	return returns
}

// MaxDrawdown is the largest peak-to-trough fall of the series, as a positive
// fraction of the peak.
func MaxDrawdown(series domain.CapitalSeries) float64 {
	if series.Len() == 0 {
		return 0
	}
	peak := series.Values[0]
	maxDrawdown := 0.0
	for _, v := range series.Values {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			drawdown := (peak - v) / peak
			if drawdown > maxDrawdown {
				maxDrawdown = drawdown
			}
		}
	}
	return maxDrawdown
}

// AnalyzeScenario fills in the metrics of a simulated scenario. A series that
// starts at zero or ends at or below zero is marked Absent; the series and its
// metrics are still returned.
func AnalyzeScenario(label string, weights domain.WeightVector, series domain.CapitalSeries) domain.ScenarioResult {
	return domain.ScenarioResult{
		Label:       label,
		Weights:     weights,
		Series:      series,
		Metrics:     CalculateMetrics(series),
		FinalValue:  series.Last(),
		MaxDrawdown: MaxDrawdown(series),
		Absent:      series.Len() == 0 || series.Values[0] == 0 || series.Last() <= 0,
	}
}
