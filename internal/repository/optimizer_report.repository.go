package repository

import (
	"context"
	"errors"
	"fmt"
	"frontierbacktest/internal/domain"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	AllocationSheet = "Allocation Comparison"
	PricesSheet     = "Historical Prices"
	MetricsSheet    = "Metrics"
	ConfigSheet     = "Config"
	FrontierSheet   = "Efficient Frontier"

	MinAllocationKey = "MIN_ALOCACAO"
	MaxAllocationKey = "MAX_ALOCACAO"
)

// Sheet and column names accepted when reading workbooks written by older
// versions of the optimizer.
var (
	allocationSheetNames       = []string{AllocationSheet, "Comparativo Alocacao"}
	unconstrainedColumnAliases = []string{"Unconstrained", "Livre", "Sem Limites"}
	constrainedColumnAliases   = []string{"Constrained", "Restrito"}
)

var ErrSheetNotFound = errors.New("sheet not found")

type FrontierPoint struct {
	Return     float64
	Volatility float64
}

type OptimizerReport struct {
	Comparison    domain.AllocationComparison
	Prices        *domain.PriceMatrix
	Unconstrained domain.PerformanceMetrics
	Constrained   domain.PerformanceMetrics
	Frontier      []FrontierPoint
}

// StoredAllocations are the portfolio columns recovered from a workbook. A nil
// vector means the column was not found.
type StoredAllocations struct {
	Unconstrained domain.WeightVector
	Constrained   domain.WeightVector
}

type OptimizerReportRepository interface {
	Save(ctx context.Context, report OptimizerReport) error
	GetAllocations(ctx context.Context) (*StoredAllocations, error)
	GetBounds(ctx context.Context) (*domain.Bounds, error)
}

type optimizerReportRepositoryHandler struct {
	Path string
}

func NewOptimizerReportRepository(path string) OptimizerReportRepository {
	return optimizerReportRepositoryHandler{
		Path: path,
	}
}

func UnconstrainedColumnHeader() string {
	return fmt.Sprintf("Unconstrained (%s)", domain.UnconstrainedBounds.Label())
}

func ConstrainedColumnHeader(bounds domain.Bounds) string {
	return fmt.Sprintf("Constrained (%s)", bounds.Label())
}

func (h optimizerReportRepositoryHandler) Save(ctx context.Context, report OptimizerReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", AllocationSheet); err != nil {
		return err
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	percent, err := f.NewStyle(&excelize.Style{NumFmt: 10})
	if err != nil {
		return err
	}

	if err := writeAllocationSheet(f, report.Comparison, header, percent); err != nil {
		return fmt.Errorf("failed to write %s: %w", AllocationSheet, err)
	}
	if report.Prices != nil {
		if err := writePricesSheet(f, report.Prices, header); err != nil {
			return fmt.Errorf("failed to write %s: %w", PricesSheet, err)
		}
	}
	if err := writeMetricsSheet(f, report, header); err != nil {
		return fmt.Errorf("failed to write %s: %w", MetricsSheet, err)
	}
	if err := writeConfigSheet(f, report.Comparison.Bounds, header); err != nil {
		return fmt.Errorf("failed to write %s: %w", ConfigSheet, err)
	}
	if len(report.Frontier) > 0 {
		if err := writeFrontierSheet(f, report.Frontier, header); err != nil {
			return fmt.Errorf("failed to write %s: %w", FrontierSheet, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(h.Path), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(h.Path), err)
	}
	if err := f.SaveAs(h.Path); err != nil {
		return fmt.Errorf("failed to save %s: %w", h.Path, err)
	}
	return nil
}

func writeAllocationSheet(f *excelize.File, c domain.AllocationComparison, header, percent int) error {
	err := f.SetSheetRow(AllocationSheet, "A1", &[]interface{}{"Ticker", UnconstrainedColumnHeader(), ConstrainedColumnHeader(c.Bounds)})
	if err != nil {
		return err
	}
	for i, row := range c.Rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		err = f.SetSheetRow(AllocationSheet, cell, &[]interface{}{row.Symbol, row.Unconstrained, row.Constrained})
		if err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(AllocationSheet, "A1", "C1", header); err != nil {
		return err
	}
	if len(c.Rows) > 0 {
		last, _ := excelize.CoordinatesToCellName(3, len(c.Rows)+1)
		if err := f.SetCellStyle(AllocationSheet, "B2", last, percent); err != nil {
			return err
		}
	}
	return f.SetColWidth(AllocationSheet, "A", "C", 24)
}

func writePricesSheet(f *excelize.File, prices *domain.PriceMatrix, header int) error {
	if _, err := f.NewSheet(PricesSheet); err != nil {
		return err
	}
	row := []interface{}{"Date"}
	for _, s := range prices.Symbols {
		row = append(row, s)
	}
	if err := f.SetSheetRow(PricesSheet, "A1", &row); err != nil {
		return err
	}
	for i, d := range prices.Dates {
		row := []interface{}{d.Format(time.DateOnly)}
		for _, s := range prices.Symbols {
			row = append(row, prices.Columns[s][i])
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(PricesSheet, cell, &row); err != nil {
			return err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(prices.Symbols)+1, 1)
	return f.SetCellStyle(PricesSheet, "A1", last, header)
}

func writeMetricsSheet(f *excelize.File, report OptimizerReport, header int) error {
	if _, err := f.NewSheet(MetricsSheet); err != nil {
		return err
	}
	rows := [][]interface{}{
		{"Metric", UnconstrainedColumnHeader(), ConstrainedColumnHeader(report.Comparison.Bounds)},
		{"Expected Return", report.Unconstrained.Return, report.Constrained.Return},
		{"Volatility", report.Unconstrained.Volatility, report.Constrained.Volatility},
		{"Sharpe Ratio", report.Unconstrained.Sharpe, report.Constrained.Sharpe},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(MetricsSheet, cell, &row); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(MetricsSheet, "A1", "C1", header); err != nil {
		return err
	}
	return f.SetColWidth(MetricsSheet, "A", "C", 24)
}

func writeConfigSheet(f *excelize.File, bounds domain.Bounds, header int) error {
	if _, err := f.NewSheet(ConfigSheet); err != nil {
		return err
	}
	rows := [][]interface{}{
		{"Parameter", "Value"},
		{MinAllocationKey, bounds.Lower},
		{MaxAllocationKey, bounds.Upper},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(ConfigSheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SetCellStyle(ConfigSheet, "A1", "B1", header)
}

func writeFrontierSheet(f *excelize.File, points []FrontierPoint, header int) error {
	if _, err := f.NewSheet(FrontierSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(FrontierSheet, "A1", &[]interface{}{"Volatility", "Expected Return"}); err != nil {
		return err
	}
	for i, p := range points {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(FrontierSheet, cell, &[]interface{}{p.Volatility, p.Return}); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(FrontierSheet, "A1", "B1", header); err != nil {
		return err
	}

	last := len(points) + 1
	return f.AddChart(FrontierSheet, "D2", &excelize.Chart{
		Type: excelize.Scatter,
		Series: []excelize.ChartSeries{
			{
				Name:       "Efficient Frontier",
				Categories: fmt.Sprintf("'%s'!$A$2:$A$%d", FrontierSheet, last),
				Values:     fmt.Sprintf("'%s'!$B$2:$B$%d", FrontierSheet, last),
				Line:       excelize.ChartLine{Width: 2, Smooth: true},
			},
		},
		Title:     []excelize.RichTextRun{{Text: "Efficient Frontier"}},
		Legend:    excelize.ChartLegend{Position: "bottom"},
		Dimension: excelize.ChartDimension{Width: 720, Height: 420},
		XAxis:     excelize.ChartAxis{MajorGridLines: true, Title: []excelize.RichTextRun{{Text: "Volatility"}}},
		YAxis:     excelize.ChartAxis{MajorGridLines: true, Title: []excelize.RichTextRun{{Text: "Expected Return"}}},
	})
}

func (h optimizerReportRepositoryHandler) open() (*excelize.File, error) {
	if _, err := os.Stat(h.Path); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", h.Path, ErrArtifactNotFound)
	}
	f, err := excelize.OpenFile(h.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", h.Path, err)
	}
	return f, nil
}

func (h optimizerReportRepositoryHandler) GetAllocations(ctx context.Context) (*StoredAllocations, error) {
	f, err := h.open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows [][]string
	found := false
	for _, name := range allocationSheetNames {
		rows, err = f.GetRows(name, excelize.Options{RawCellValue: true})
		if err == nil {
			found = true
			break
		}
		if !errors.As(err, &excelize.ErrSheetNotExist{}) {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
	}
	if !found {
		return nil, fmt.Errorf("%s in %s: %w", strings.Join(allocationSheetNames, " / "), h.Path, ErrSheetNotFound)
	}
	if len(rows) == 0 {
		return &StoredAllocations{}, nil
	}

	unconstrainedIdx := findColumn(rows[0], unconstrainedColumnAliases, -1)
	constrainedIdx := findColumn(rows[0], constrainedColumnAliases, unconstrainedIdx)

	out := &StoredAllocations{}
	if unconstrainedIdx >= 0 {
		out.Unconstrained = weightColumn(rows[1:], unconstrainedIdx)
	}
	if constrainedIdx >= 0 {
		out.Constrained = weightColumn(rows[1:], constrainedIdx)
	}
	return out, nil
}

func findColumn(header []string, aliases []string, exclude int) int {
	for _, alias := range aliases {
		for i, h := range header {
			if i != exclude && strings.Contains(h, alias) {
				return i
			}
		}
	}
	return -1
}

func weightColumn(rows [][]string, idx int) domain.WeightVector {
	out := domain.WeightVector{}
	for _, row := range rows {
		if len(row) <= idx || len(row) == 0 {
			continue
		}
		symbol := domain.NormalizeSymbol(row[0])
		w, err := parseCellFloat(row[idx])
		if symbol == "" || err != nil || w <= MinPersistedWeight {
			continue
		}
		out = append(out, domain.AssetWeight{Symbol: symbol, Weight: w})
	}
	return out
}

func parseCellFloat(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	return strconv.ParseFloat(s, 64)
}

func (h optimizerReportRepositoryHandler) GetBounds(ctx context.Context) (*domain.Bounds, error) {
	f, err := h.open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := f.GetRows(ConfigSheet, excelize.Options{RawCellValue: true})
	if errors.As(err, &excelize.ErrSheetNotExist{}) {
		return nil, fmt.Errorf("%s in %s: %w", ConfigSheet, h.Path, ErrSheetNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", ConfigSheet, err)
	}

	values := map[string]float64{}
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		v, err := parseCellFloat(row[1])
		if err != nil {
			continue
		}
		values[strings.TrimSpace(row[0])] = v
	}

	lower, okLower := values[MinAllocationKey]
	upper, okUpper := values[MaxAllocationKey]
	if !okLower || !okUpper {
		return nil, fmt.Errorf("%s sheet lacks %s/%s", ConfigSheet, MinAllocationKey, MaxAllocationKey)
	}
	return &domain.Bounds{Lower: lower, Upper: upper}, nil
}
