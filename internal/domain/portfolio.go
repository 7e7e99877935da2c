package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// AssetUniverse is the ordered, de-duplicated list of tickers a run works on.
type AssetUniverse struct {
	Symbols []string
}

func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func NewAssetUniverse(symbols []string) AssetUniverse {
	out := []string{}
	seen := map[string]bool{}
	for _, s := range symbols {
		s = NormalizeSymbol(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return AssetUniverse{Symbols: out}
}

func (u AssetUniverse) Size() int {
	return len(u.Symbols)
}

type AssetWeight struct {
	Symbol string  `json:"symbol"`
	Weight float64 `json:"weight"`
}

// WeightVector is an ordered ticker -> fraction mapping.
type WeightVector []AssetWeight

func (w WeightVector) Sum() float64 {
	total := 0.0
	for _, a := range w {
		total += a.Weight
	}
	return total
}

func (w WeightVector) Get(symbol string) (float64, bool) {
	for _, a := range w {
		if a.Symbol == symbol {
			return a.Weight, true
		}
	}
	return 0, false
}

func (w WeightVector) Symbols() []string {
	out := make([]string, 0, len(w))
	for _, a := range w {
		out = append(out, a.Symbol)
	}
	return out
}

// Prune keeps entries strictly above the threshold.
func (w WeightVector) Prune(threshold float64) WeightVector {
	out := WeightVector{}
	for _, a := range w {
		if a.Weight > threshold {
			out = append(out, a)
		}
	}
	return out
}

func (w WeightVector) Scale(k float64) WeightVector {
	out := make(WeightVector, 0, len(w))
	for _, a := range w {
		out = append(out, AssetWeight{Symbol: a.Symbol, Weight: a.Weight * k})
	}
	return out
}

func (w WeightVector) IsEmpty() bool {
	return len(w) == 0
}

// Bounds are the per-asset allocation limits of a scenario.
type Bounds struct {
	Lower float64 `json:"lower" yaml:"lower"`
	Upper float64 `json:"upper" yaml:"upper"`
}

var UnconstrainedBounds = Bounds{Lower: 0, Upper: 1}

// Label renders bounds the way allocation columns are headed, e.g. "5%-30%".
func (b Bounds) Label() string {
	return fmt.Sprintf("%s%%-%s%%", formatPercent(b.Lower), formatPercent(b.Upper))
}

func formatPercent(f float64) string {
	pct := f * 100
	if math.Abs(pct-math.Round(pct)) < 1e-9 {
		return fmt.Sprintf("%.0f", pct)
	}
	return fmt.Sprintf("%.1f", pct)
}

type OptimizerConfig struct {
	MinAllocation      float64 `json:"minAllocation" yaml:"minAllocation"`
	MaxAllocation      float64 `json:"maxAllocation" yaml:"maxAllocation"`
	RiskFreeRate       float64 `json:"riskFreeRate" yaml:"riskFreeRate"`
	LookbackYears      int     `json:"lookbackYears" yaml:"lookbackYears"`
	TradingDaysPerYear int     `json:"tradingDaysPerYear" yaml:"tradingDaysPerYear"`
}

func (c OptimizerConfig) Bounds() Bounds {
	return Bounds{Lower: c.MinAllocation, Upper: c.MaxAllocation}
}

type CapitalSeries struct {
	Dates  []time.Time
	Values []float64
}

func (s CapitalSeries) Len() int {
	return len(s.Values)
}

func (s CapitalSeries) Last() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	return s.Values[len(s.Values)-1]
}

type PerformanceMetrics struct {
	Return     float64 `json:"return"`
	Volatility float64 `json:"volatility"`
	Sharpe     float64 `json:"sharpe"`
}

// ScenarioResult is one replayed portfolio. Absent scenarios had no usable
// series and are left out of reports.
type ScenarioResult struct {
	Label       string             `json:"label"`
	Weights     WeightVector       `json:"weights"`
	Series      CapitalSeries      `json:"-"`
	Metrics     PerformanceMetrics `json:"metrics"`
	FinalValue  float64            `json:"finalValue"`
	MaxDrawdown float64            `json:"maxDrawdown"`
	Absent      bool               `json:"absent"`
}

type AllocationRow struct {
	Symbol        string  `json:"symbol"`
	Unconstrained float64 `json:"unconstrained"`
	Constrained   float64 `json:"constrained"`
}

// AllocationComparison is the side-by-side table of both optimized
// portfolios, sorted by constrained weight.
type AllocationComparison struct {
	Rows        []AllocationRow `json:"rows"`
	Bounds      Bounds          `json:"bounds"`
	Recommended WeightVector    `json:"recommended"`
}

func (c AllocationComparison) UnconstrainedWeights() WeightVector {
	out := WeightVector{}
	for _, r := range c.Rows {
		out = append(out, AssetWeight{Symbol: r.Symbol, Weight: r.Unconstrained})
	}
	return out
}

func (c AllocationComparison) ConstrainedWeights() WeightVector {
	out := WeightVector{}
	for _, r := range c.Rows {
		out = append(out, AssetWeight{Symbol: r.Symbol, Weight: r.Constrained})
	}
	return out
}
