package interestrate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"
)

const DefaultBaseURL = "https://www.ustreasuryyieldcurve.com"

var yieldKeys = []string{
	"yield_1m",
	"yield_2m",
	"yield_3m",
	"yield_4m",
	"yield_6m",
	"yield_1y",
	"yield_2y",
	"yield_3y",
	"yield_5y",
	"yield_7y",
	"yield_10y",
	"yield_20y",
	"yield_30y",
}

func interestRateMonthsFromApi(in string) (int, error) {
	cleanedStr := strings.Replace(in, "yield_", "", 1)
	if cleanedStr == "" {
		return 0, fmt.Errorf("invalid yield key %q", in)
	}
	unit := string(cleanedStr[len(cleanedStr)-1])
	cleanedStr = cleanedStr[:len(cleanedStr)-1]
	months, err := strconv.Atoi(cleanedStr)
	if err != nil {
		return 0, err
	}

	if unit == "y" {
		months *= 12
	}

	return months, nil
}

// InterestRateMap holds annualized treasury yields keyed by maturity in
// months, as fractions.
type InterestRateMap struct {
	Rates map[int]float64
}

// GetRate returns the yield at monthsOut, interpolating linearly between
// the nearest maturities and clamping outside the curve.
func (im InterestRateMap) GetRate(monthsOut int) (float64, error) {
	if v, ok := im.Rates[monthsOut]; ok {
		return v, nil
	}

	keys := []int{}
	for k := range im.Rates {
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return 0, fmt.Errorf("yield curve is empty")
	}
	sort.Ints(keys)

	if monthsOut < keys[0] {
		return im.Rates[keys[0]], nil
	}
	if monthsOut > keys[len(keys)-1] {
		return im.Rates[keys[len(keys)-1]], nil
	}

	for i := 0; i < len(keys)-1; i++ {
		lo, hi := keys[i], keys[i+1]
		if monthsOut > lo && monthsOut < hi {
			frac := float64(monthsOut-lo) / float64(hi-lo)
			return im.Rates[lo] + frac*(im.Rates[hi]-im.Rates[lo]), nil
		}
	}
	return 0, fmt.Errorf("unable to compute rate for %d months", monthsOut)
}

type Client struct {
	BaseURL    string
	HttpClient *http.Client
}

func NewClient() Client {
	return Client{
		BaseURL:    DefaultBaseURL,
		HttpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// GetYieldCurve returns the curve published for date. Days without a
// snapshot (weekends, holidays) yield an empty map.
func (c Client) GetYieldCurve(ctx context.Context, date time.Time) (*InterestRateMap, error) {
	url := fmt.Sprintf("%s/api/v1/yield_curve_snapshot?date=%s&offset=0", c.BaseURL, date.Format(time.DateOnly))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	response, err := c.HttpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	responseBytes, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("received status code %d and failed to read body: %w", response.StatusCode, err)
	}

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed with status code %d: %s", response.StatusCode, string(responseBytes))
	}

	responseBody := []map[string]interface{}{}
	if err := json.Unmarshal(responseBytes, &responseBody); err != nil {
		return nil, fmt.Errorf("failed to parse yield curve: %w", err)
	}

	out := map[int]float64{}
	for _, snapshot := range responseBody {
		for _, key := range yieldKeys {
			v, ok := snapshot[key].(float64)
			if !ok {
				continue
			}
			months, err := interestRateMonthsFromApi(key)
			if err != nil {
				return nil, err
			}
			out[months] = v / 100
		}
	}

	return &InterestRateMap{
		Rates: out,
	}, nil
}

// LatestRate walks back from date until a published curve is found, up to
// maxDaysBack days, and returns its rate at monthsOut.
func (c Client) LatestRate(ctx context.Context, date time.Time, monthsOut, maxDaysBack int) (float64, error) {
	for i := 0; i <= maxDaysBack; i++ {
		curve, err := c.GetYieldCurve(ctx, date.AddDate(0, 0, -i))
		if err != nil {
			return 0, err
		}
		if len(curve.Rates) > 0 {
			return curve.GetRate(monthsOut)
		}
	}
	return 0, fmt.Errorf("no yield curve published in the %d days before %s", maxDaysBack, date.Format(time.DateOnly))
}
