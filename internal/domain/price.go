package domain

import (
	"sort"
	"time"
)

type AssetPrice struct {
	Symbol string
	Price  float64
	Date   time.Time
}

// PriceMatrix is a date-aligned table of adjusted closes. Every column has a
// value on every date.
type PriceMatrix struct {
	Dates   []time.Time
	Symbols []string
	Columns map[string][]float64
}

// NewPriceMatrix aligns raw observations into a matrix. Symbols with no
// observations are dropped, then only dates observed for every remaining
// symbol are kept. The requested order of symbols is preserved.
func NewPriceMatrix(symbols []string, prices []AssetPrice) *PriceMatrix {
	bySymbol := map[string]map[string]float64{}
	dates := map[string]time.Time{}
	for _, p := range prices {
		if _, ok := bySymbol[p.Symbol]; !ok {
			bySymbol[p.Symbol] = map[string]float64{}
		}
		key := p.Date.Format(time.DateOnly)
		bySymbol[p.Symbol][key] = p.Price
		dates[key] = p.Date
	}

	present := []string{}
	seen := map[string]bool{}
	for _, s := range symbols {
		if seen[s] {
			continue
		}
		seen[s] = true
		if len(bySymbol[s]) > 0 {
			present = append(present, s)
		}
	}

	keys := []string{}
	for key := range dates {
		complete := len(present) > 0
		for _, s := range present {
			if _, ok := bySymbol[s][key]; !ok {
				complete = false
				break
			}
		}
		if complete {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	out := &PriceMatrix{
		Dates:   make([]time.Time, 0, len(keys)),
		Symbols: present,
		Columns: map[string][]float64{},
	}
	for _, key := range keys {
		d, _ := time.Parse(time.DateOnly, key)
		out.Dates = append(out.Dates, d)
	}
	for _, s := range present {
		col := make([]float64, 0, len(keys))
		for _, key := range keys {
			col = append(col, bySymbol[s][key])
		}
		out.Columns[s] = col
	}

	return out
}

func (m PriceMatrix) NumRows() int {
	return len(m.Dates)
}

func (m PriceMatrix) IsEmpty() bool {
	return len(m.Symbols) == 0 || len(m.Dates) == 0
}

func (m PriceMatrix) Column(symbol string) ([]float64, bool) {
	col, ok := m.Columns[symbol]
	return col, ok
}

func (m PriceMatrix) Has(symbol string) bool {
	_, ok := m.Columns[symbol]
	return ok
}

// Missing returns the requested symbols that have no column.
func (m PriceMatrix) Missing(symbols []string) []string {
	out := []string{}
	for _, s := range symbols {
		if !m.Has(s) {
			out = append(out, s)
		}
	}
	return out
}
