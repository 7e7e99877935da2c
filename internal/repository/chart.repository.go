package repository

import (
	"context"
	"fmt"
	"frontierbacktest/internal/domain"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/vicanso/go-charts/v2"
)

type ChartRepository interface {
	SaveCapitalEvolution(ctx context.Context, path string, scenarios []domain.ScenarioResult) error
	SaveEfficientFrontier(ctx context.Context, path string, chart FrontierChart) error
}

// ChartPoint is a labelled (volatility, return) pair.
type ChartPoint struct {
	Label      string
	Return     float64
	Volatility float64
}

type FrontierChart struct {
	Frontier []FrontierPoint
	// Assets are the individual holdings, Portfolios the optimal ones.
	Assets     []ChartPoint
	Portfolios []ChartPoint
	Subtitle   string
}

type chartRepositoryHandler struct{}

func NewChartRepository() ChartRepository {
	return chartRepositoryHandler{}
}

func (h chartRepositoryHandler) SaveCapitalEvolution(ctx context.Context, path string, scenarios []domain.ScenarioResult) error {
	bytes, err := RenderCapitalChart(scenarios)
	if err != nil {
		return err
	}
	return writeFile(path, bytes)
}

func (h chartRepositoryHandler) SaveEfficientFrontier(ctx context.Context, path string, chart FrontierChart) error {
	bytes, err := RenderFrontierChart(chart)
	if err != nil {
		return err
	}
	return writeFile(path, bytes)
}

func writeFile(path string, bytes []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, bytes, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func splitNumber(n int) int {
	if n < 2 {
		return 1
	}
	if n > 8 {
		return 8
	}
	return n - 1
}

// RenderCapitalChart draws every scenario's capital curve as PNG bytes.
func RenderCapitalChart(scenarios []domain.ScenarioResult) ([]byte, error) {
	values := [][]float64{}
	names := []string{}
	var dates []time.Time
	yMin, yMax := math.Inf(1), math.Inf(-1)
	for _, s := range scenarios {
		if s.Absent || s.Series.Len() == 0 {
			continue
		}
		if dates == nil {
			dates = s.Series.Dates
		}
		values = append(values, s.Series.Values)
		names = append(names, s.Label)
		for _, v := range s.Series.Values {
			yMin = math.Min(yMin, v)
			yMax = math.Max(yMax, v)
		}
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("no scenarios to chart")
	}

	xLabels := make([]string, 0, len(dates))
	for _, d := range dates {
		xLabels = append(xLabels, d.Format("2006-01-02"))
	}
	pad := (yMax - yMin) * 0.05
	yMin, yMax = math.Floor(yMin-pad), math.Ceil(yMax+pad)

	p, err := charts.LineRender(
		values,
		charts.TitleTextOptionFunc("Capital Evolution"),
		charts.XAxisOptionFunc(charts.XAxisOption{
			Data:        xLabels,
			SplitNumber: splitNumber(len(xLabels)),
			BoundaryGap: charts.FalseFlag(),
		}),
		charts.YAxisOptionFunc(charts.YAxisOption{
			Min:         &yMin,
			Max:         &yMax,
			DivideCount: 5,
		}),
		charts.LegendOptionFunc(charts.LegendOption{
			Data: names,
			Top:  charts.PositionTop,
		}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(1200),
		charts.HeightOptionFunc(640),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render capital chart: %w", err)
	}
	return p.Bytes()
}

const frontierGridSize = 60

// frontierGrid spaces volatility evenly over every point in the chart so the
// category axis reads as a linear scale.
func frontierGrid(c FrontierChart) []float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range c.Frontier {
		lo, hi = math.Min(lo, p.Volatility), math.Max(hi, p.Volatility)
	}
	for _, p := range append(append([]ChartPoint{}, c.Assets...), c.Portfolios...) {
		lo, hi = math.Min(lo, p.Volatility), math.Max(hi, p.Volatility)
	}
	if hi <= lo {
		hi = lo + 0.01
	}
	grid := make([]float64, frontierGridSize)
	step := (hi - lo) / float64(frontierGridSize-1)
	for i := range grid {
		grid[i] = lo + step*float64(i)
	}
	return grid
}

func nearestIndex(grid []float64, x float64) int {
	best := 0
	for i, g := range grid {
		if math.Abs(g-x) < math.Abs(grid[best]-x) {
			best = i
		}
	}
	return best
}

// interpolateFrontier returns the frontier's return at each grid volatility,
// null outside the traced range.
func interpolateFrontier(frontier []FrontierPoint, grid []float64) []float64 {
	points := append([]FrontierPoint{}, frontier...)
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Volatility < points[j].Volatility
	})

	out := make([]float64, len(grid))
	for i, x := range grid {
		out[i] = charts.GetNullValue()
		for j := 0; j+1 < len(points); j++ {
			a, b := points[j], points[j+1]
			if x < a.Volatility || x > b.Volatility {
				continue
			}
			if b.Volatility == a.Volatility {
				out[i] = math.Max(a.Return, b.Return) * 100
			} else {
				out[i] = (a.Return + (b.Return-a.Return)*(x-a.Volatility)/(b.Volatility-a.Volatility)) * 100
			}
			break
		}
	}
	// the endpoints snap to the nearest grid column
	for _, p := range []FrontierPoint{points[0], points[len(points)-1]} {
		idx := nearestIndex(grid, p.Volatility)
		if out[idx] == charts.GetNullValue() {
			out[idx] = p.Return * 100
		}
	}
	return out
}

// pointSeries places a single labelled point on the grid with a mark symbol.
func pointSeries(p ChartPoint, grid []float64, symbolSize int) charts.Series {
	values := make([]float64, len(grid))
	for i := range values {
		values[i] = charts.GetNullValue()
	}
	values[nearestIndex(grid, p.Volatility)] = p.Return * 100

	series := charts.NewSeriesFromValues(values, charts.ChartTypeLine)
	series.Name = p.Label
	series.MarkPoint = charts.SeriesMarkPoint{
		SymbolSize: symbolSize,
		// nulls are the largest float, so "min" finds the point
		Data: []charts.SeriesMarkData{{Type: charts.SeriesMarkDataTypeMin}},
	}
	return series
}

// frontierSeries returns the volatility grid and one series for the curve
// followed by one per asset and one per portfolio.
func frontierSeries(c FrontierChart) ([]float64, charts.SeriesList) {
	grid := frontierGrid(c)
	frontier := charts.NewSeriesFromValues(interpolateFrontier(c.Frontier, grid), charts.ChartTypeLine)
	frontier.Name = "Efficient Frontier"
	seriesList := charts.SeriesList{frontier}
	for _, a := range c.Assets {
		seriesList = append(seriesList, pointSeries(a, grid, 18))
	}
	for _, p := range c.Portfolios {
		seriesList = append(seriesList, pointSeries(p, grid, 30))
	}
	return grid, seriesList
}

// RenderFrontierChart draws expected return (%) against volatility (%): the
// frontier curve, each asset, and the optimal portfolios.
func RenderFrontierChart(c FrontierChart) ([]byte, error) {
	if len(c.Frontier) == 0 {
		return nil, fmt.Errorf("no frontier points to chart")
	}
	grid, seriesList := frontierSeries(c)
	xLabels := make([]string, 0, len(grid))
	for _, x := range grid {
		xLabels = append(xLabels, fmt.Sprintf("%.1f%%", x*100))
	}

	p, err := charts.Render(
		charts.ChartOption{SeriesList: seriesList},
		charts.TitleTextOptionFunc("Efficient Frontier", c.Subtitle),
		charts.XAxisOptionFunc(charts.XAxisOption{
			Data:        xLabels,
			SplitNumber: 8,
			BoundaryGap: charts.FalseFlag(),
		}),
		charts.LegendOptionFunc(charts.LegendOption{
			Top: charts.PositionBottom,
		}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(1200),
		charts.HeightOptionFunc(720),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render frontier chart: %w", err)
	}
	return p.Bytes()
}
