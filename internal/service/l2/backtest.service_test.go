package l2_service

import (
	"context"
	"frontierbacktest/internal/domain"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

func dates(n int) []time.Time {
	out := []time.Time{}
	for i := 0; i < n; i++ {
		out = append(out, time.Date(2024, 1, 2+i, 0, 0, 0, 0, time.UTC))
	}
	return out
}

func threeAssetPrices() *domain.PriceMatrix {
	return &domain.PriceMatrix{
		Dates:   dates(3),
		Symbols: []string{"A", "B", "C"},
		Columns: map[string][]float64{
			"A": {100, 110, 121},
			"B": {50, 45, 40},
			"C": {10, 10, 10},
		},
	}
}

func TestSimulate(t *testing.T) {
	ctx := context.Background()
	approx := cmpopts.EquateApprox(0, 1e-9)

	t.Run("equal weights buy and hold", func(t *testing.T) {
		third := 1.0 / 3
		series := Simulate(ctx, domain.WeightVector{
			{Symbol: "A", Weight: third},
			{Symbol: "B", Weight: third},
			{Symbol: "C", Weight: third},
		}, threeAssetPrices(), 300)

		require.Equal(t, dates(3), series.Dates)
		require.Equal(t, "", cmp.Diff([]float64{300, 300, 301}, series.Values, approx))
	})

	t.Run("first value is initial capital", func(t *testing.T) {
		series := Simulate(ctx, domain.WeightVector{
			{Symbol: "A", Weight: 0.2},
			{Symbol: "B", Weight: 0.8},
		}, threeAssetPrices(), 12345)
		require.InDelta(t, 12345, series.Values[0], 1e-9)
	})

	t.Run("invariant to weight scale", func(t *testing.T) {
		weights := domain.WeightVector{
			{Symbol: "A", Weight: 0.1},
			{Symbol: "B", Weight: 0.3},
			{Symbol: "C", Weight: 0.6},
		}
		base := Simulate(ctx, weights, threeAssetPrices(), 1000)
		for _, k := range []float64{0.01, 2, 37} {
			scaled := Simulate(ctx, weights.Scale(k), threeAssetPrices(), 1000)
			require.Equal(t, "", cmp.Diff(base.Values, scaled.Values, approx))
		}
	})

	t.Run("drops assets without prices", func(t *testing.T) {
		prices := &domain.PriceMatrix{
			Dates:   dates(3),
			Symbols: []string{"A"},
			Columns: map[string][]float64{"A": {100, 110, 121}},
		}
		series := Simulate(ctx, domain.WeightVector{
			{Symbol: "A", Weight: 0.5},
			{Symbol: "B", Weight: 0.5},
		}, prices, 1000)
		require.Equal(t, "", cmp.Diff([]float64{1000, 1100, 1210}, series.Values, approx))
	})

	t.Run("renormalizes around a zero starting price", func(t *testing.T) {
		prices := threeAssetPrices()
		prices.Columns["C"] = []float64{0, 10, 10}
		series := Simulate(ctx, domain.WeightVector{
			{Symbol: "A", Weight: 0.25},
			{Symbol: "B", Weight: 0.25},
			{Symbol: "C", Weight: 0.5},
		}, prices, 1000)
		require.Equal(t, "", cmp.Diff([]float64{1000, 1000, 1005}, series.Values, approx))
	})

	t.Run("no overlap gives a zero series", func(t *testing.T) {
		series := Simulate(ctx, domain.WeightVector{{Symbol: "Z", Weight: 1}}, threeAssetPrices(), 1000)
		require.Equal(t, []float64{0, 0, 0}, series.Values)
		require.Len(t, series.Dates, 3)
	})

	t.Run("no prices", func(t *testing.T) {
		series := Simulate(ctx, domain.WeightVector{{Symbol: "A", Weight: 1}}, nil, 1000)
		require.Equal(t, 0, series.Len())
	})
}

func TestCompareAllocations(t *testing.T) {
	bounds := domain.Bounds{Lower: 0.05, Upper: 0.3}

	comparison := CompareAllocations(
		domain.WeightVector{
			{Symbol: "NVDA", Weight: 0.7},
			{Symbol: "MSFT", Weight: 0.3},
			{Symbol: "KO", Weight: 0},
			{Symbol: "T", Weight: 0.00001},
		},
		domain.WeightVector{
			{Symbol: "NVDA", Weight: 0.3},
			{Symbol: "MSFT", Weight: 0.3},
			{Symbol: "KO", Weight: 0.1},
			{Symbol: "PG", Weight: 0.3},
			{Symbol: "T", Weight: 0.00005},
		},
		bounds,
		1e-4,
	)

	require.Equal(
		t,
		"",
		cmp.Diff(
			domain.AllocationComparison{
				Rows: []domain.AllocationRow{
					{Symbol: "NVDA", Unconstrained: 0.7, Constrained: 0.3},
					{Symbol: "MSFT", Unconstrained: 0.3, Constrained: 0.3},
					{Symbol: "PG", Unconstrained: 0, Constrained: 0.3},
					{Symbol: "KO", Unconstrained: 0, Constrained: 0.1},
				},
				Bounds: bounds,
				Recommended: domain.WeightVector{
					{Symbol: "NVDA", Weight: 0.3},
					{Symbol: "MSFT", Weight: 0.3},
					{Symbol: "PG", Weight: 0.3},
					{Symbol: "KO", Weight: 0.1},
				},
			},
			comparison,
		),
	)

	t.Run("empty constrained scenario", func(t *testing.T) {
		comparison := CompareAllocations(
			domain.WeightVector{{Symbol: "A", Weight: 1}},
			nil,
			bounds,
			1e-4,
		)
		require.Len(t, comparison.Rows, 1)
		require.Empty(t, comparison.Recommended)
	})
}
