package api

import (
	"errors"
	"frontierbacktest/internal/domain"
	l3_service "frontierbacktest/internal/service/l3"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

type OptimizeRequest struct {
	MinAllocation  *float64 `json:"minAllocation"`
	MaxAllocation  *float64 `json:"maxAllocation"`
	RiskFreeRate   *float64 `json:"riskFreeRate"`
	RiskFreeSource *string  `json:"riskFreeSource"`
	LookbackYears  *int     `json:"lookbackYears"`
	Symbols        []string `json:"symbols"`
	// Persist defaults to true.
	Persist *bool `json:"persist"`
}

type OptimizeScenarioResponse struct {
	Bounds      domain.Bounds             `json:"bounds"`
	Weights     domain.WeightVector       `json:"weights"`
	Performance domain.PerformanceMetrics `json:"performance"`
	Error       string                    `json:"error,omitempty"`
	Hint        string                    `json:"hint,omitempty"`
}

type FrontierPointResponse struct {
	Return     float64 `json:"return"`
	Volatility float64 `json:"volatility"`
	Sharpe     float64 `json:"sharpe"`
}

type OptimizeResponse struct {
	RunID         string                      `json:"runId"`
	Config        domain.OptimizerConfig      `json:"config"`
	Start         string                      `json:"start"`
	End           string                      `json:"end"`
	Symbols       []string                    `json:"symbols"`
	Dropped       []string                    `json:"dropped"`
	Unconstrained OptimizeScenarioResponse    `json:"unconstrained"`
	Constrained   OptimizeScenarioResponse    `json:"constrained"`
	Comparison    domain.AllocationComparison `json:"comparison"`
	Frontier      []FrontierPointResponse     `json:"frontier"`
	Persisted     bool                        `json:"persisted"`
}

func (r OptimizeRequest) apply(cfg l3_service.OptimizeInput) l3_service.OptimizeInput {
	if r.MinAllocation != nil {
		cfg.Config.MinAllocation = *r.MinAllocation
	}
	if r.MaxAllocation != nil {
		cfg.Config.MaxAllocation = *r.MaxAllocation
	}
	if r.RiskFreeRate != nil {
		cfg.Config.RiskFreeRate = *r.RiskFreeRate
	}
	if r.RiskFreeSource != nil {
		cfg.RiskFreeSource = *r.RiskFreeSource
	}
	if r.LookbackYears != nil {
		cfg.Config.LookbackYears = *r.LookbackYears
	}
	cfg.Symbols = r.Symbols
	return cfg
}

func scenarioResponse(s l3_service.ScenarioOptimization) OptimizeScenarioResponse {
	out := OptimizeScenarioResponse{
		Bounds:  s.Bounds,
		Weights: domain.WeightVector{},
		Error:   s.Error,
		Hint:    s.Hint,
	}
	if s.Result != nil {
		out.Weights = s.Result.CleanWeights.Prune(0)
		out.Performance = s.Result.Performance
	}
	return out
}

func (h ApiHandler) optimize(c *gin.Context) {
	ctx := c.Request.Context()

	var requestBody OptimizeRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil && !errors.Is(err, io.EOF) {
		returnErrorJsonCode(err, c, http.StatusBadRequest)
		return
	}

	in := requestBody.apply(l3_service.OptimizeInput{
		Config:         h.Config.Optimizer.OptimizerConfig,
		RiskFreeSource: h.Config.Optimizer.RiskFreeSource,
	})

	cfg := h.Config
	cfg.Optimizer.OptimizerConfig = in.Config
	cfg.Optimizer.RiskFreeSource = in.RiskFreeSource
	if err := cfg.Validate(); err != nil {
		returnErrorJsonCode(err, c, http.StatusBadRequest)
		return
	}

	result, err := h.OptimizerService.Optimize(ctx, in)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	persist := requestBody.Persist == nil || *requestBody.Persist
	if persist {
		if err := h.OptimizerService.Persist(ctx, result); err != nil {
			returnErrorJson(err, c)
			return
		}
	}

	frontier := []FrontierPointResponse{}
	for _, p := range result.Frontier {
		frontier = append(frontier, FrontierPointResponse{
			Return:     p.Performance.Return,
			Volatility: p.Performance.Volatility,
			Sharpe:     p.Performance.Sharpe,
		})
	}

	symbols := []string{}
	dropped := []string{}
	if result.Prices != nil {
		symbols = result.Prices.Symbols
		dropped = result.Prices.Missing(result.Requested)
	}

	c.JSON(200, OptimizeResponse{
		RunID:         result.RunID,
		Config:        result.Config,
		Start:         result.Start.Format("2006-01-02"),
		End:           result.End.Format("2006-01-02"),
		Symbols:       symbols,
		Dropped:       dropped,
		Unconstrained: scenarioResponse(result.Unconstrained),
		Constrained:   scenarioResponse(result.Constrained),
		Comparison:    result.Comparison,
		Frontier:      frontier,
		Persisted:     persist,
	})
}
