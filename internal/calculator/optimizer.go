package calculator

import (
	"fmt"
	"frontierbacktest/internal/domain"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	// CleanWeightCutoff is the allocation below which a weight is display noise.
	CleanWeightCutoff = 1e-4
	cleanWeightDigits = 5

	maxAscentIterations = 20000
	armijoSigma         = 1e-4
	stepTolerance       = 1e-12
)

type OptimizeResult struct {
	Bounds domain.Bounds
	// Weights is the full solution, ordered like the input moments.
	Weights      domain.WeightVector
	CleanWeights domain.WeightVector
	Performance  domain.PerformanceMetrics
}

// CheckFeasibility reports whether n weights in [lo, hi] can sum to 1.
func CheckFeasibility(numAssets int, bounds domain.Bounds) error {
	infeasible := numAssets == 0 ||
		bounds.Lower < 0 ||
		bounds.Lower > bounds.Upper ||
		bounds.Lower*float64(numAssets) > 1+1e-12 ||
		math.Min(bounds.Upper, 1)*float64(numAssets) < 1-1e-12
	if infeasible {
		return domain.InfeasibleConstraintError{
			Bounds:    bounds,
			NumAssets: numAssets,
		}
	}
	return nil
}

// MaxSharpe maximizes (w.mu - rf) / sqrt(w' Sigma w) over long-only weights
// in [lo, hi] summing to 1, by projected gradient ascent.
func MaxSharpe(moments *MomentEstimates, bounds domain.Bounds, riskFreeRate float64) (*OptimizeResult, error) {
	n := len(moments.Mu)
	if err := CheckFeasibility(n, bounds); err != nil {
		return nil, err
	}
	lo, hi := bounds.Lower, math.Min(bounds.Upper, 1)

	best := maxReturnPortfolio(moments.Mu, lo, hi)
	if floats.Dot(best, moments.Mu)-riskFreeRate <= 0 {
		return nil, domain.ErrNoExcessReturn
	}

	sharpe := func(w []float64) (float64, []float64) {
		return sharpeObjective(w, moments, riskFreeRate)
	}

	start := equalWeightPortfolio(n, lo, hi)
	if f, _ := sharpe(start); f <= 0 || math.IsNaN(f) {
		start = best
	}

	w := projectedAscent(start, lo, hi, sharpe)

	return newOptimizeResult(moments, bounds, w, riskFreeRate), nil
}

func newOptimizeResult(moments *MomentEstimates, bounds domain.Bounds, w []float64, riskFreeRate float64) *OptimizeResult {
	weights := make(domain.WeightVector, 0, len(w))
	for i, symbol := range moments.Symbols {
		weights = append(weights, domain.AssetWeight{Symbol: symbol, Weight: w[i]})
	}
	return &OptimizeResult{
		Bounds:       bounds,
		Weights:      weights,
		CleanWeights: CleanWeights(weights),
		Performance:  PortfolioPerformance(w, moments, riskFreeRate),
	}
}

// PortfolioPerformance returns expected return, volatility and Sharpe ratio
// of w under the given moments.
func PortfolioPerformance(w []float64, moments *MomentEstimates, riskFreeRate float64) domain.PerformanceMetrics {
	ret := floats.Dot(w, moments.Mu)
	vol := math.Sqrt(portfolioVariance(w, moments.Sigma))
	sharpe := 0.0
	if vol > 0 {
		sharpe = (ret - riskFreeRate) / vol
	}
	return domain.PerformanceMetrics{
		Return:     ret,
		Volatility: vol,
		Sharpe:     sharpe,
	}
}

// CleanWeights zeroes weights below the cutoff and rounds the rest.
func CleanWeights(w domain.WeightVector) domain.WeightVector {
	out := make(domain.WeightVector, 0, len(w))
	scale := math.Pow(10, cleanWeightDigits)
	for _, a := range w {
		v := a.Weight
		if math.Abs(v) < CleanWeightCutoff {
			v = 0
		}
		out = append(out, domain.AssetWeight{
			Symbol: a.Symbol,
			Weight: math.Round(v*scale) / scale,
		})
	}
	return out
}

func portfolioVariance(w []float64, sigma *mat.SymDense) float64 {
	v := mat.NewVecDense(len(w), w)
	return mat.Inner(v, sigma, v)
}

func sharpeObjective(w []float64, moments *MomentEstimates, riskFreeRate float64) (float64, []float64) {
	n := len(w)
	wv := mat.NewVecDense(n, w)
	var sw mat.VecDense
	sw.MulVec(moments.Sigma, wv)

	variance := mat.Dot(wv, &sw)
	excess := floats.Dot(w, moments.Mu) - riskFreeRate
	if variance <= 0 {
		return math.Inf(-1), make([]float64, n)
	}
	vol := math.Sqrt(variance)

	grad := make([]float64, n)
	for i := range grad {
		grad[i] = moments.Mu[i]/vol - excess*sw.AtVec(i)/(vol*variance)
	}
	return excess / vol, grad
}

type objective func(w []float64) (float64, []float64)

// projectedAscent climbs f over {lo <= w_i <= hi, sum w = 1} using
// projected gradient steps with Armijo backtracking.
func projectedAscent(start []float64, lo, hi float64, f objective) []float64 {
	w := append([]float64{}, start...)
	fw, grad := f(w)
	step := 1.0
	candidate := make([]float64, len(w))

	for iter := 0; iter < maxAscentIterations; iter++ {
		accepted := false
		t := math.Min(step*2, 1e6)
		for t > 1e-20 {
			for i := range w {
				candidate[i] = w[i] + t*grad[i]
			}
			next := projectCappedSimplex(candidate, lo, hi)

			ascent := 0.0
			for i := range w {
				ascent += grad[i] * (next[i] - w[i])
			}
			fn, gn := f(next)
			if fn >= fw+armijoSigma*ascent && !math.IsNaN(fn) {
				moved := 0.0
				for i := range w {
					moved = math.Max(moved, math.Abs(next[i]-w[i]))
				}
				w, fw, grad = next, fn, gn
				step = t
				accepted = moved >= stepTolerance
				break
			}
			t /= 2
		}
		if !accepted {
			break
		}
	}
	return w
}

// projectCappedSimplex returns the Euclidean projection of v onto
// {lo <= w_i <= hi, sum w = 1}: w_i = clip(v_i - tau, lo, hi) with tau found
// by bisection.
func projectCappedSimplex(v []float64, lo, hi float64) []float64 {
	n := len(v)
	out := make([]float64, n)
	total := func(tau float64) float64 {
		s := 0.0
		for i, x := range v {
			out[i] = math.Max(lo, math.Min(hi, x-tau))
			s += out[i]
		}
		return s
	}

	left := floats.Min(v) - hi
	right := floats.Max(v) - lo
	for iter := 0; iter < 200 && right-left > 1e-16*math.Max(1, math.Abs(left)); iter++ {
		mid := (left + right) / 2
		if total(mid) > 1 {
			left = mid
		} else {
			right = mid
		}
	}
	total((left + right) / 2)
	return out
}

func equalWeightPortfolio(n int, lo, hi float64) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1 / float64(n)
	}
	return projectCappedSimplex(w, lo, hi)
}

// maxReturnPortfolio fills every asset to lo then gives the remainder to the
// highest expected returns, up to hi each.
func maxReturnPortfolio(mu []float64, lo, hi float64) []float64 {
	n := len(mu)
	w := make([]float64, n)
	order := make([]int, n)
	for i := range w {
		w[i] = lo
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return mu[order[a]] > mu[order[b]]
	})

	remaining := 1 - lo*float64(n)
	for _, i := range order {
		if remaining <= 0 {
			break
		}
		add := math.Min(hi-lo, remaining)
		w[i] += add
		remaining -= add
	}
	return w
}

type FrontierPoint struct {
	RiskAversion float64
	Performance  domain.PerformanceMetrics
}

// EfficientFrontier traces the frontier by maximizing w.mu - lambda w'Sigma w
// for log-spaced lambda. Points are ordered by increasing volatility.
func EfficientFrontier(moments *MomentEstimates, bounds domain.Bounds, riskFreeRate float64, numPoints int) ([]FrontierPoint, error) {
	n := len(moments.Mu)
	if err := CheckFeasibility(n, bounds); err != nil {
		return nil, err
	}
	if numPoints < 2 {
		return nil, fmt.Errorf("need at least 2 frontier points, got %d", numPoints)
	}
	lo, hi := bounds.Lower, math.Min(bounds.Upper, 1)

	out := []FrontierPoint{}
	w := maxReturnPortfolio(moments.Mu, lo, hi)
	for k := 0; k < numPoints; k++ {
		lambda := math.Pow(10, -1+4*float64(k)/float64(numPoints-1))
		w = projectedAscent(w, lo, hi, func(x []float64) (float64, []float64) {
			return meanVarianceObjective(x, moments, lambda)
		})
		out = append(out, FrontierPoint{
			RiskAversion: lambda,
			Performance:  PortfolioPerformance(w, moments, riskFreeRate),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Performance.Volatility < out[j].Performance.Volatility
	})
	return out, nil
}

func meanVarianceObjective(w []float64, moments *MomentEstimates, lambda float64) (float64, []float64) {
	n := len(w)
	wv := mat.NewVecDense(n, w)
	var sw mat.VecDense
	sw.MulVec(moments.Sigma, wv)

	grad := make([]float64, n)
	for i := range grad {
		grad[i] = moments.Mu[i] - 2*lambda*sw.AtVec(i)
	}
	return floats.Dot(w, moments.Mu) - lambda*mat.Dot(wv, &sw), grad
}
