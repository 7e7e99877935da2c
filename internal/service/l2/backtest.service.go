package l2_service

import (
	"context"
	"frontierbacktest/internal/domain"
	"frontierbacktest/internal/logger"
	"time"
)

// Simulate replays a buy-and-hold portfolio over prices. Weights for symbols
// without a price column or a positive first close are dropped and the rest
// renormalized. The series
// starts at initialCapital and is never rebalanced.
func Simulate(ctx context.Context, weights domain.WeightVector, prices *domain.PriceMatrix, initialCapital float64) domain.CapitalSeries {
	log := logger.FromContext(ctx)

	if prices == nil || prices.IsEmpty() {
		return domain.CapitalSeries{}
	}

	held := domain.WeightVector{}
	for _, a := range weights {
		col, ok := prices.Column(a.Symbol)
		if !ok {
			log.Debugw("dropping weight without prices", "symbol", a.Symbol, "weight", a.Weight)
			continue
		}
		if len(col) == 0 || col[0] <= 0 {
			log.Warnw("dropping weight without a positive starting price", "symbol", a.Symbol)
			continue
		}
		held = append(held, a)
	}

	series := domain.CapitalSeries{
		Dates:  append([]time.Time{}, prices.Dates...),
		Values: make([]float64, prices.NumRows()),
	}

	sum := held.Sum()
	if sum == 0 {
		return series
	}
	held = held.Scale(1 / sum)

	for _, a := range held {
		col, _ := prices.Column(a.Symbol)
		base := col[0]
		for t, p := range col {
			series.Values[t] += initialCapital * a.Weight * p / base
		}
	}

	return series
}
