package api

import (
	"errors"
	"fmt"
	"frontierbacktest/internal/domain"
	l3_service "frontierbacktest/internal/service/l3"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

type BacktestRequest struct {
	InitialCapital  *float64 `json:"initialCapital"`
	BenchmarkTicker *string  `json:"benchmarkTicker"`
	BenchmarkName   *string  `json:"benchmarkName"`
	WindowDays      *int     `json:"windowDays"`
	// WriteReport defaults to true.
	WriteReport *bool `json:"writeReport"`
}

type BacktestSnapshot struct {
	Value float64 `json:"value"`
}

type BacktestScenarioResponse struct {
	domain.ScenarioResult
	// Series maps date to capital.
	Series map[string]BacktestSnapshot `json:"series"`
}

type BacktestResponse struct {
	RunID     string                     `json:"runId"`
	Start     string                     `json:"start"`
	End       string                     `json:"end"`
	Scenarios []BacktestScenarioResponse `json:"scenarios"`
}

func (h ApiHandler) backtest(c *gin.Context) {
	ctx := c.Request.Context()

	var requestBody BacktestRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil && !errors.Is(err, io.EOF) {
		returnErrorJsonCode(err, c, http.StatusBadRequest)
		return
	}

	in := l3_service.BacktestInput{
		InitialCapital:  h.Config.Backtest.InitialCapital,
		BenchmarkTicker: h.Config.Backtest.BenchmarkTicker,
		BenchmarkName:   h.Config.Backtest.BenchmarkName,
		WindowDays:      h.Config.Backtest.WindowDays,
	}
	if requestBody.InitialCapital != nil {
		in.InitialCapital = *requestBody.InitialCapital
	}
	if requestBody.BenchmarkTicker != nil {
		in.BenchmarkTicker = *requestBody.BenchmarkTicker
		in.BenchmarkName = *requestBody.BenchmarkTicker
	}
	if requestBody.BenchmarkName != nil {
		in.BenchmarkName = *requestBody.BenchmarkName
	}
	if requestBody.WindowDays != nil {
		in.WindowDays = *requestBody.WindowDays
	}
	if in.InitialCapital <= 0 || in.WindowDays <= 0 || in.BenchmarkTicker == "" {
		returnErrorJsonCode(fmt.Errorf("initialCapital, windowDays and benchmarkTicker must be set"), c, http.StatusBadRequest)
		return
	}

	result, err := h.ComparisonService.Backtest(ctx, in)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	if requestBody.WriteReport == nil || *requestBody.WriteReport {
		if err := h.ComparisonService.Report(ctx, result); err != nil {
			returnErrorJson(err, c)
			return
		}
	}

	scenarios := []BacktestScenarioResponse{}
	for _, s := range result.Scenarios {
		series := map[string]BacktestSnapshot{}
		for i, d := range s.Series.Dates {
			series[d.Format("2006-01-02")] = BacktestSnapshot{Value: s.Series.Values[i]}
		}
		scenarios = append(scenarios, BacktestScenarioResponse{
			ScenarioResult: s,
			Series:         series,
		})
	}

	c.JSON(200, BacktestResponse{
		RunID:     result.RunID,
		Start:     result.Start.Format("2006-01-02"),
		End:       result.End.Format("2006-01-02"),
		Scenarios: scenarios,
	})
}
