package repository

import (
	"context"
	"errors"
	"fmt"
	"frontierbacktest/internal/domain"
	"frontierbacktest/internal/util"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func bar(t time.Time, adjClose float64) *finance.ChartBar {
	return &finance.ChartBar{
		Timestamp: int(t.Unix()),
		AdjClose:  decimal.NewFromFloat(adjClose),
	}
}

func Test_barsToPrices(t *testing.T) {
	open := 14*time.Hour + 30*time.Minute
	start := util.NewDate(2024, 1, 2)
	end := util.NewDate(2024, 1, 5)

	out := barsToPrices(
		"AAPL",
		[]*finance.ChartBar{
			bar(util.NewDate(2024, 1, 3).Add(open), 101.5),
			bar(util.NewDate(2024, 1, 1).Add(open), 99),
			bar(util.NewDate(2024, 1, 2).Add(open), 100),
			nil,
			bar(util.NewDate(2024, 1, 4).Add(open), 0),
			bar(util.NewDate(2024, 1, 5).Add(open), 103),
		},
		start,
		end,
	)

	require.Equal(
		t,
		"",
		cmp.Diff(
			[]domain.AssetPrice{
				{Symbol: "AAPL", Price: 100, Date: util.NewDate(2024, 1, 2)},
				{Symbol: "AAPL", Price: 101.5, Date: util.NewDate(2024, 1, 3)},
			},
			out,
		),
	)
}

func TestIsSymbolError(t *testing.T) {
	require.True(t, IsSymbolError(fmt.Errorf("wrapped: %w", &finance.RemoteError{StatusCode: http.StatusNotFound})))
	require.True(t, IsSymbolError(finance.CreateRemoteErrorS("no results in chart response")))
	require.True(t, IsSymbolError(finance.CreateArgumentError()))
	require.False(t, IsSymbolError(&finance.RemoteError{StatusCode: http.StatusTooManyRequests}))
	require.False(t, IsSymbolError(&finance.RemoteError{StatusCode: http.StatusBadGateway}))
	require.False(t, IsSymbolError(errors.New("dial tcp: i/o timeout")))
	require.False(t, IsSymbolError(nil))
}

func TestYahooPriceRepository_List(t *testing.T) {
	t.Run("returns converted bars", func(t *testing.T) {
		h := NewYahooPriceRepository(PriceRepositoryConfig{RequestsPerSecond: 1000, Burst: 10}).(yahooPriceRepositoryHandler)
		h.FetchBars = func(params *chart.Params) ([]*finance.ChartBar, error) {
			require.Equal(t, "MSFT", params.Symbol)
			return []*finance.ChartBar{bar(util.NewDate(2024, 1, 2).Add(15*time.Hour), 370)}, nil
		}

		out, err := h.List(context.Background(), "MSFT", util.NewDate(2024, 1, 1), util.NewDate(2024, 2, 1))
		require.NoError(t, err)
		require.Len(t, out, 1)
		require.Equal(t, 370.0, out[0].Price)
	})

	t.Run("breaker opens after consecutive provider failures", func(t *testing.T) {
		h := NewYahooPriceRepository(PriceRepositoryConfig{RequestsPerSecond: 1000, Burst: 10, MaxConsecutiveFailures: 2}).(yahooPriceRepositoryHandler)
		failures := []error{
			&url.Error{Op: "Get", URL: "https://query1.finance.yahoo.com", Err: errors.New("connection reset by peer")},
			&finance.RemoteError{StatusCode: http.StatusServiceUnavailable, Msg: "error response recieved from upstream api"},
		}
		calls := 0
		h.FetchBars = func(params *chart.Params) ([]*finance.ChartBar, error) {
			err := failures[calls%len(failures)]
			calls++
			return nil, err
		}

		for i := 0; i < 2; i++ {
			_, err := h.List(context.Background(), "X", util.NewDate(2024, 1, 1), util.NewDate(2024, 2, 1))
			require.Error(t, err)
			require.NotErrorIs(t, err, ErrProviderUnavailable)
		}
		_, err := h.List(context.Background(), "X", util.NewDate(2024, 1, 1), util.NewDate(2024, 2, 1))
		require.ErrorIs(t, err, ErrProviderUnavailable)
		require.Equal(t, 2, calls)
	})

	t.Run("delisted tickers do not open the breaker", func(t *testing.T) {
		h := NewYahooPriceRepository(PriceRepositoryConfig{RequestsPerSecond: 1000, Burst: 10, MaxConsecutiveFailures: 2}).(yahooPriceRepositoryHandler)
		rejections := map[string]error{
			"BAD1": finance.CreateRemoteErrorS("No data found, symbol may be delisted"),
			"BAD2": finance.CreateRemoteErrorS("no results in chart response"),
			"BAD3": &finance.RemoteError{StatusCode: http.StatusNotFound, Msg: "error response recieved from upstream api"},
			"BAD4": &finance.YfinError{Code: "Not Found", Description: "No data found, symbol may be delisted"},
			"BAD5": finance.CreateRemoteErrorS("No data found, symbol may be delisted"),
		}
		h.FetchBars = func(params *chart.Params) ([]*finance.ChartBar, error) {
			if err, ok := rejections[params.Symbol]; ok {
				return nil, err
			}
			return []*finance.ChartBar{bar(util.NewDate(2024, 1, 2).Add(15*time.Hour), 50)}, nil
		}

		for _, symbol := range []string{"BAD1", "BAD2", "BAD3", "BAD4", "BAD5"} {
			_, err := h.List(context.Background(), symbol, util.NewDate(2024, 1, 1), util.NewDate(2024, 2, 1))
			require.Error(t, err, symbol)
			require.NotErrorIs(t, err, ErrProviderUnavailable, symbol)
		}

		out, err := h.List(context.Background(), "GOOD", util.NewDate(2024, 1, 1), util.NewDate(2024, 2, 1))
		require.NoError(t, err)
		require.Len(t, out, 1)
	})

	t.Run("cancelled context", func(t *testing.T) {
		h := NewYahooPriceRepository(PriceRepositoryConfig{RequestsPerSecond: 0.001, Burst: 1})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := h.List(ctx, "X", util.NewDate(2024, 1, 1), util.NewDate(2024, 2, 1))
		require.Error(t, err)
	})
}
