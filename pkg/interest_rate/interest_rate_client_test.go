package interestrate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

func TestInterestRateMap_GetRate(t *testing.T) {
	im := InterestRateMap{Rates: map[int]float64{1: 0.01, 3: 0.03, 12: 0.06}}

	for _, tc := range []struct {
		months   int
		expected float64
	}{
		{months: 3, expected: 0.03},
		{months: 2, expected: 0.02},
		{months: 6, expected: 0.04},
		{months: 0, expected: 0.01},
		{months: 360, expected: 0.06},
	} {
		rate, err := im.GetRate(tc.months)
		require.NoError(t, err)
		require.InDelta(t, tc.expected, rate, 1e-12)
	}

	_, err := InterestRateMap{}.GetRate(3)
	require.Error(t, err)
}

func TestClient_GetYieldCurve(t *testing.T) {
	ctx := context.Background()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("date") {
		case "2020-01-03":
			w.Write([]byte(`[{"date":"2020-01-03","yield_1m":1.48,"yield_3m":1.55,"yield_1y":1.59,"yield_10y":1.92,"yield_20y":null}]`))
		case "2020-01-05", "2020-01-04":
			w.Write([]byte(`[]`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("boom"))
		}
	}))
	defer server.Close()

	client := Client{BaseURL: server.URL, HttpClient: server.Client()}

	t.Run("parses yields", func(t *testing.T) {
		curve, err := client.GetYieldCurve(ctx, time.Date(2020, 1, 3, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		require.Equal(
			t,
			"",
			cmp.Diff(
				&InterestRateMap{Rates: map[int]float64{1: 0.0148, 3: 0.0155, 12: 0.0159, 120: 0.0192}},
				curve,
				cmpopts.EquateApprox(0, 1e-9),
			),
		)
	})

	t.Run("walks back over weekends", func(t *testing.T) {
		rate, err := client.LatestRate(ctx, time.Date(2020, 1, 5, 0, 0, 0, 0, time.UTC), 3, 7)
		require.NoError(t, err)
		require.InDelta(t, 0.0155, rate, 1e-9)
	})

	t.Run("server error", func(t *testing.T) {
		_, err := client.GetYieldCurve(ctx, time.Date(2020, 1, 10, 0, 0, 0, 0, time.UTC))
		require.Error(t, err)
	})
}
