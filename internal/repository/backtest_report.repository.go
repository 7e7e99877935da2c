package repository

import (
	"context"
	"fmt"
	"frontierbacktest/internal/domain"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	DashboardSheet      = "Dashboard"
	HistoricalDataSheet = "Historical Data"
)

type BacktestReport struct {
	Scenarios      []domain.ScenarioResult
	InitialCapital float64
	Start          time.Time
	End            time.Time
}

type BacktestReportRepository interface {
	Save(ctx context.Context, report BacktestReport) error
}

type backtestReportRepositoryHandler struct {
	Path string
}

func NewBacktestReportRepository(path string) BacktestReportRepository {
	return backtestReportRepositoryHandler{
		Path: path,
	}
}

func presentScenarios(scenarios []domain.ScenarioResult) []domain.ScenarioResult {
	out := []domain.ScenarioResult{}
	for _, s := range scenarios {
		if !s.Absent {
			out = append(out, s)
		}
	}
	return out
}

func (h backtestReportRepositoryHandler) Save(ctx context.Context, report BacktestReport) error {
	scenarios := presentScenarios(report.Scenarios)
	if len(scenarios) == 0 {
		return fmt.Errorf("no scenarios with data to report")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", DashboardSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(HistoricalDataSheet); err != nil {
		return err
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#1F4E78"}},
	})
	if err != nil {
		return err
	}
	percent, err := f.NewStyle(&excelize.Style{NumFmt: 10})
	if err != nil {
		return err
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return err
	}

	if err := writeHistoricalData(f, scenarios, header); err != nil {
		return fmt.Errorf("failed to write %s: %w", HistoricalDataSheet, err)
	}
	if err := writeDashboard(f, report, scenarios, header, percent, money); err != nil {
		return fmt.Errorf("failed to write %s: %w", DashboardSheet, err)
	}

	if err := os.MkdirAll(filepath.Dir(h.Path), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(h.Path), err)
	}
	if err := f.SaveAs(h.Path); err != nil {
		return fmt.Errorf("failed to save %s: %w", h.Path, err)
	}
	return nil
}

func writeHistoricalData(f *excelize.File, scenarios []domain.ScenarioResult, header int) error {
	row := []interface{}{"Date"}
	for _, s := range scenarios {
		row = append(row, s.Label)
	}
	if err := f.SetSheetRow(HistoricalDataSheet, "A1", &row); err != nil {
		return err
	}

	dates := scenarios[0].Series.Dates
	for i, d := range dates {
		row := []interface{}{d.Format(time.DateOnly)}
		for _, s := range scenarios {
			if i < s.Series.Len() {
				row = append(row, s.Series.Values[i])
			} else {
				row = append(row, nil)
			}
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(HistoricalDataSheet, cell, &row); err != nil {
			return err
		}
	}

	last, _ := excelize.CoordinatesToCellName(len(scenarios)+1, 1)
	if err := f.SetCellStyle(HistoricalDataSheet, "A1", last, header); err != nil {
		return err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(scenarios) + 1)
	return f.SetColWidth(HistoricalDataSheet, "A", lastCol, 22)
}

func writeDashboard(f *excelize.File, report BacktestReport, scenarios []domain.ScenarioResult, header, percent, money int) error {
	title := fmt.Sprintf(
		"Backtest %s to %s, initial capital %.2f",
		report.Start.Format(time.DateOnly),
		report.End.Format(time.DateOnly),
		report.InitialCapital,
	)
	if err := f.SetCellValue(DashboardSheet, "A1", title); err != nil {
		return err
	}

	const tableRow = 3
	err := f.SetSheetRow(DashboardSheet, fmt.Sprintf("A%d", tableRow), &[]interface{}{
		"Strategy", "Total Return", "Volatility", "Sharpe", "Max Drawdown", "Final Value",
	})
	if err != nil {
		return err
	}
	for i, s := range scenarios {
		r := tableRow + 1 + i
		err := f.SetSheetRow(DashboardSheet, fmt.Sprintf("A%d", r), &[]interface{}{
			s.Label, s.Metrics.Return, s.Metrics.Volatility, s.Metrics.Sharpe, s.MaxDrawdown, s.FinalValue,
		})
		if err != nil {
			return err
		}
	}
	lastRow := tableRow + len(scenarios)

	if err := f.SetCellStyle(DashboardSheet, fmt.Sprintf("A%d", tableRow), fmt.Sprintf("F%d", tableRow), header); err != nil {
		return err
	}
	if err := f.SetCellStyle(DashboardSheet, fmt.Sprintf("B%d", tableRow+1), fmt.Sprintf("C%d", lastRow), percent); err != nil {
		return err
	}
	if err := f.SetCellStyle(DashboardSheet, fmt.Sprintf("E%d", tableRow+1), fmt.Sprintf("E%d", lastRow), percent); err != nil {
		return err
	}
	if err := f.SetCellStyle(DashboardSheet, fmt.Sprintf("F%d", tableRow+1), fmt.Sprintf("F%d", lastRow), money); err != nil {
		return err
	}
	if err := f.SetColWidth(DashboardSheet, "A", "A", 36); err != nil {
		return err
	}
	if err := f.SetColWidth(DashboardSheet, "B", "F", 16); err != nil {
		return err
	}

	err = f.AddChart(DashboardSheet, "H3", &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{
			{
				Name:       "Total Return",
				Categories: fmt.Sprintf("'%s'!$A$%d:$A$%d", DashboardSheet, tableRow+1, lastRow),
				Values:     fmt.Sprintf("'%s'!$B$%d:$B$%d", DashboardSheet, tableRow+1, lastRow),
			},
		},
		Title:     []excelize.RichTextRun{{Text: "Total Return by Strategy"}},
		Legend:    excelize.ChartLegend{Position: "none"},
		Dimension: excelize.ChartDimension{Width: 640, Height: 360},
		YAxis:     excelize.ChartAxis{MajorGridLines: true},
	})
	if err != nil {
		return err
	}

	numDates := scenarios[0].Series.Len()
	series := []excelize.ChartSeries{}
	for i := range scenarios {
		col, _ := excelize.ColumnNumberToName(i + 2)
		series = append(series, excelize.ChartSeries{
			Name:       fmt.Sprintf("'%s'!$%s$1", HistoricalDataSheet, col),
			Categories: fmt.Sprintf("'%s'!$A$2:$A$%d", HistoricalDataSheet, numDates+1),
			Values:     fmt.Sprintf("'%s'!$%s$2:$%s$%d", HistoricalDataSheet, col, col, numDates+1),
			Line:       excelize.ChartLine{Width: 1.5},
		})
	}
	return f.AddChart(DashboardSheet, fmt.Sprintf("A%d", lastRow+3), &excelize.Chart{
		Type:      excelize.Line,
		Series:    series,
		Title:     []excelize.RichTextRun{{Text: "Capital Evolution"}},
		Legend:    excelize.ChartLegend{Position: "bottom"},
		Dimension: excelize.ChartDimension{Width: 1100, Height: 480},
		XAxis:     excelize.ChartAxis{TickLabelSkip: 21},
		YAxis:     excelize.ChartAxis{MajorGridLines: true},
	})
}
