package calculator

import (
	"frontierbacktest/internal/domain"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestCalculateMetrics(t *testing.T) {
	t.Run("flat series", func(t *testing.T) {
		out := CalculateMetrics(domain.CapitalSeries{Values: []float64{100, 100, 100, 100}})
		require.Equal(t, "", cmp.Diff(domain.PerformanceMetrics{}, out))
	})

	t.Run("empty series", func(t *testing.T) {
		out := CalculateMetrics(domain.CapitalSeries{})
		require.Equal(t, "", cmp.Diff(domain.PerformanceMetrics{}, out))
	})

	t.Run("zero start", func(t *testing.T) {
		out := CalculateMetrics(domain.CapitalSeries{Values: []float64{0, 10, 20}})
		require.Equal(t, "", cmp.Diff(domain.PerformanceMetrics{}, out))
	})

	t.Run("single value", func(t *testing.T) {
		out := CalculateMetrics(domain.CapitalSeries{Values: []float64{100}})
		require.Equal(t, "", cmp.Diff(domain.PerformanceMetrics{}, out))
	})

	t.Run("growing series", func(t *testing.T) {
		out := CalculateMetrics(domain.CapitalSeries{Values: []float64{100, 110, 99, 121}})

		returns := []float64{0.1, -0.1, 121.0/99 - 1}
		mean := (returns[0] + returns[1] + returns[2]) / 3
		variance := 0.0
		for _, r := range returns {
			variance += (r - mean) * (r - mean)
		}
		vol := math.Sqrt(variance/2) * math.Sqrt(252)

		require.InDelta(t, 0.21, out.Return, 1e-12)
		require.InDelta(t, vol, out.Volatility, 1e-12)
		require.InDelta(t, 0.21/vol, out.Sharpe, 1e-12)
	})
}

func TestMaxDrawdown(t *testing.T) {
	require.Equal(t, 0.0, MaxDrawdown(domain.CapitalSeries{}))
	require.Equal(t, 0.0, MaxDrawdown(domain.CapitalSeries{Values: []float64{1, 2, 3}}))
	require.InDelta(t, 0.5, MaxDrawdown(domain.CapitalSeries{Values: []float64{100, 200, 150, 100, 180}}), 1e-12)
}

func TestAnalyzeScenario(t *testing.T) {
	t.Run("absent when empty", func(t *testing.T) {
		out := AnalyzeScenario("x", nil, domain.CapitalSeries{})
		require.True(t, out.Absent)
	})

	t.Run("absent when flat zero", func(t *testing.T) {
		out := AnalyzeScenario("x", nil, domain.CapitalSeries{Values: []float64{0, 0}})
		require.True(t, out.Absent)
	})

	t.Run("absent when wiped out", func(t *testing.T) {
		series := domain.CapitalSeries{Values: []float64{300, 120, 0}}
		out := AnalyzeScenario("x", nil, series)
		require.True(t, out.Absent)
		require.Equal(t, 0.0, out.FinalValue)
		require.Equal(t, "", cmp.Diff(series, out.Series))
		require.InDelta(t, 1.0, out.MaxDrawdown, 1e-12)
	})

	t.Run("present", func(t *testing.T) {
		out := AnalyzeScenario("x", nil, domain.CapitalSeries{Values: []float64{300, 300, 301}})
		require.False(t, out.Absent)
		require.Equal(t, 301.0, out.FinalValue)
	})
}
