package calculator

import (
	"fmt"
	"frontierbacktest/internal/domain"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// MomentEstimates are annualized expected returns and covariance for an
// ordered list of assets.
type MomentEstimates struct {
	Symbols   []string
	Mu        []float64
	Sigma     *mat.SymDense
	Shrinkage float64
}

func (m MomentEstimates) Volatility(i int) float64 {
	return math.Sqrt(m.Sigma.At(i, i))
}

// EstimateMoments computes compounded mean historical returns and a
// Ledoit-Wolf covariance shrunk toward a scaled identity, both annualized by
// tradingDaysPerYear.
func EstimateMoments(prices *domain.PriceMatrix, tradingDaysPerYear int) (*MomentEstimates, error) {
	if prices == nil || prices.IsEmpty() {
		return nil, fmt.Errorf("cannot estimate moments without prices")
	}
	if prices.NumRows() < 3 {
		return nil, fmt.Errorf("need at least 3 aligned price rows to estimate moments, got %d", prices.NumRows())
	}
	if tradingDaysPerYear <= 0 {
		return nil, fmt.Errorf("tradingDaysPerYear must be positive, got %d", tradingDaysPerYear)
	}

	returns, err := dailyReturns(prices)
	if err != nil {
		return nil, err
	}

	mu := meanHistoricalReturn(returns, tradingDaysPerYear)

	sigma, shrinkage := ledoitWolf(returns)
	sigma.ScaleSym(float64(tradingDaysPerYear), sigma)

	return &MomentEstimates{
		Symbols:   append([]string{}, prices.Symbols...),
		Mu:        mu,
		Sigma:     sigma,
		Shrinkage: shrinkage,
	}, nil
}

// dailyReturns returns a (rows-1) x assets matrix of simple returns.
func dailyReturns(prices *domain.PriceMatrix) (*mat.Dense, error) {
	n := prices.NumRows() - 1
	p := len(prices.Symbols)
	out := mat.NewDense(n, p, nil)
	for j, symbol := range prices.Symbols {
		col := prices.Columns[symbol]
		for i := 1; i < len(col); i++ {
			if col[i-1] == 0 {
				return nil, fmt.Errorf("zero price for %s on %s", symbol, prices.Dates[i-1].Format("2006-01-02"))
			}
			out.Set(i-1, j, col[i]/col[i-1]-1)
		}
	}
	return out, nil
}

func meanHistoricalReturn(returns *mat.Dense, tradingDaysPerYear int) []float64 {
	n, p := returns.Dims()
	mu := make([]float64, p)
	for j := 0; j < p; j++ {
		growth := 1.0
		for i := 0; i < n; i++ {
			growth *= 1 + returns.At(i, j)
		}
		mu[j] = math.Pow(growth, float64(tradingDaysPerYear)/float64(n)) - 1
	}
	return mu
}

// ledoitWolf returns the shrunk (daily) covariance of x and the shrinkage
// intensity, using the scaled identity tr(S)/p * I as target.
func ledoitWolf(x *mat.Dense) (*mat.SymDense, float64) {
	n, p := x.Dims()

	centered := mat.DenseCopyOf(x)
	for j := 0; j < p; j++ {
		m := stat.Mean(mat.Col(nil, j, x), nil)
		for i := 0; i < n; i++ {
			centered.Set(i, j, centered.At(i, j)-m)
		}
	}

	var xtx mat.Dense
	xtx.Mul(centered.T(), centered)

	empCov := mat.NewSymDense(p, nil)
	trace := 0.0
	for i := 0; i < p; i++ {
		for j := i; j < p; j++ {
			empCov.SetSym(i, j, xtx.At(i, j)/float64(n))
		}
		trace += empCov.At(i, i)
	}
	target := trace / float64(p)

	shrinkage := ledoitWolfShrinkage(centered, &xtx, trace, target)

	out := mat.NewSymDense(p, nil)
	for i := 0; i < p; i++ {
		for j := i; j < p; j++ {
			v := (1 - shrinkage) * empCov.At(i, j)
			if i == j {
				v += shrinkage * target
			}
			out.SetSym(i, j, v)
		}
	}
	return out, shrinkage
}

func ledoitWolfShrinkage(centered, xtx *mat.Dense, trace, target float64) float64 {
	n, p := centered.Dims()
	if p == 1 {
		return 0
	}
	nf, pf := float64(n), float64(p)

	var x2 mat.Dense
	x2.MulElem(centered, centered)
	var x2tx2 mat.Dense
	x2tx2.Mul(x2.T(), &x2)

	betaSum := mat.Sum(&x2tx2)
	deltaSum := 0.0
	for i := 0; i < p; i++ {
		for j := 0; j < p; j++ {
			v := xtx.At(i, j)
			deltaSum += v * v
		}
	}
	deltaSum /= nf * nf

	beta := 1 / (pf * nf) * (betaSum/nf - deltaSum)
	delta := (deltaSum - 2*target*trace + pf*target*target) / pf
	beta = math.Min(beta, delta)

	if beta <= 0 || delta <= 0 {
		return 0
	}
	return beta / delta
}
