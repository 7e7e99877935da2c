package repository

import (
	"context"
	"errors"
	"fmt"
	"frontierbacktest/internal/domain"
	"frontierbacktest/internal/util"
	"net/http"
	"sort"
	"strings"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

var ErrProviderUnavailable = errors.New("price provider unavailable")

type PriceRepository interface {
	// List returns daily adjusted closes for symbol in [start, end), oldest
	// first. A symbol the provider knows nothing about yields no rows.
	List(ctx context.Context, symbol string, start, end time.Time) ([]domain.AssetPrice, error)
}

type PriceRepositoryConfig struct {
	RequestsPerSecond      float64
	Burst                  int
	MaxConsecutiveFailures uint32
}

type yahooPriceRepositoryHandler struct {
	Limiter   *rate.Limiter
	Breaker   *gobreaker.CircuitBreaker
	FetchBars func(params *chart.Params) ([]*finance.ChartBar, error)
}

func NewYahooPriceRepository(cfg PriceRepositoryConfig) PriceRepository {
	maxFailures := cfg.MaxConsecutiveFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     "yahoo-chart",
		Interval: 60 * time.Second,
		Timeout:  60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		// an unknown or delisted ticker says nothing about provider health
		IsSuccessful: func(err error) bool {
			return err == nil || IsSymbolError(err)
		},
	})

	return yahooPriceRepositoryHandler{
		Limiter:   rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		Breaker:   breaker,
		FetchBars: fetchChartBars,
	}
}

var symbolErrorDetails = []string{
	"no results",
	"no data found",
	"delisted",
	"not found",
}

// IsSymbolError reports whether err is the provider rejecting one ticker
// (4xx other than 429, a yahoo error body, an empty chart) rather than the
// provider itself failing.
func IsSymbolError(err error) bool {
	if err == nil {
		return false
	}

	remote := &finance.RemoteError{}
	if errors.As(err, &remote) {
		return remote.StatusCode >= 400 && remote.StatusCode < 500 && remote.StatusCode != http.StatusTooManyRequests
	}

	yfin := &finance.YfinError{}
	if errors.As(err, &yfin) {
		return true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "code: api-error") {
		return true
	}
	if !strings.Contains(msg, "code: remote-error") {
		return false
	}
	for _, detail := range symbolErrorDetails {
		if strings.Contains(msg, detail) {
			return true
		}
	}
	return false
}

func fetchChartBars(params *chart.Params) ([]*finance.ChartBar, error) {
	iter := chart.Get(params)

	bars := []*finance.ChartBar{}
	for iter.Next() {
		bars = append(bars, iter.Bar())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return bars, nil
}

func (h yahooPriceRepositoryHandler) List(ctx context.Context, symbol string, start, end time.Time) ([]domain.AssetPrice, error) {
	if err := h.Limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait for %s: %w", symbol, err)
	}

	params := &chart.Params{
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Symbol:   symbol,
		Interval: datetime.OneDay,
	}

	out, err := h.Breaker.Execute(func() (interface{}, error) {
		return h.FetchBars(params)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prices for %s: %w", symbol, err)
	}

	return barsToPrices(symbol, out.([]*finance.ChartBar), start, end), nil
}

// barsToPrices keeps bars with a positive adjusted close inside [start, end),
// one per calendar day.
func barsToPrices(symbol string, bars []*finance.ChartBar, start, end time.Time) []domain.AssetPrice {
	byDate := map[time.Time]float64{}
	for _, bar := range bars {
		if bar == nil {
			continue
		}
		date := util.ToDate(time.Unix(int64(bar.Timestamp), 0))
		if date.Before(util.ToDate(start)) || !date.Before(util.ToDate(end)) {
			continue
		}
		price := bar.AdjClose.InexactFloat64()
		if price <= 0 {
			continue
		}
		byDate[date] = price
	}

	out := make([]domain.AssetPrice, 0, len(byDate))
	for date, price := range byDate {
		out = append(out, domain.AssetPrice{
			Symbol: symbol,
			Price:  price,
			Date:   date,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}
