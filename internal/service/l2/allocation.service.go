package l2_service

import (
	"frontierbacktest/internal/domain"
	"sort"
)

// CompareAllocations lines up both optimized portfolios by ticker. Tickers
// follow the unconstrained order, then constrained-only tickers. Rows where
// neither weight exceeds epsilon are dropped, and the rest are stably sorted
// by constrained weight, largest first.
func CompareAllocations(unconstrained, constrained domain.WeightVector, bounds domain.Bounds, epsilon float64) domain.AllocationComparison {
	order := []string{}
	rowsBySymbol := map[string]*domain.AllocationRow{}

	row := func(symbol string) *domain.AllocationRow {
		if r, ok := rowsBySymbol[symbol]; ok {
			return r
		}
		r := &domain.AllocationRow{Symbol: symbol}
		rowsBySymbol[symbol] = r
		order = append(order, symbol)
		return r
	}
	for _, a := range unconstrained {
		row(a.Symbol).Unconstrained = a.Weight
	}
	for _, a := range constrained {
		row(a.Symbol).Constrained = a.Weight
	}

	rows := []domain.AllocationRow{}
	for _, symbol := range order {
		r := rowsBySymbol[symbol]
		if r.Unconstrained <= epsilon && r.Constrained <= epsilon {
			continue
		}
		rows = append(rows, *r)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Constrained > rows[j].Constrained
	})

	recommended := domain.WeightVector{}
	for _, r := range rows {
		if r.Constrained > epsilon {
			recommended = append(recommended, domain.AssetWeight{Symbol: r.Symbol, Weight: r.Constrained})
		}
	}

	return domain.AllocationComparison{
		Rows:        rows,
		Bounds:      bounds,
		Recommended: recommended,
	}
}
