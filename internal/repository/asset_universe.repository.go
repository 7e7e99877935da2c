package repository

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"frontierbacktest/internal/domain"
	"frontierbacktest/internal/logger"
	"io"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
)

// Recognized headers, in priority order.
var (
	TickerHeaderAliases = []string{"Ticker", "Symbol", "Código"}
	WeightHeaderAliases = []string{"Weight (%)", "Weight", "Peso"}
)

const (
	tickerField = "ticker"
	weightField = "weight"
)

type AssetList struct {
	Universe domain.AssetUniverse
	// Weights is the manual portfolio, nil when the list has no weight column.
	Weights domain.WeightVector
}

type AssetUniverseRepository interface {
	Get(ctx context.Context) (*AssetList, error)
}

type assetUniverseRepositoryHandler struct {
	Path string
}

func NewAssetUniverseRepository(path string) AssetUniverseRepository {
	return assetUniverseRepositoryHandler{
		Path: path,
	}
}

type assetListRow struct {
	Ticker string `csv:"ticker"`
	Weight string `csv:"weight"`
}

func (h assetUniverseRepositoryHandler) Get(ctx context.Context) (*AssetList, error) {
	content, err := os.ReadFile(h.Path)
	if err != nil {
		return nil, domain.NewFatalInputError("failed to read asset list", err)
	}
	return ParseAssetList(ctx, content)
}

// ParseAssetList reads a delimited asset list whose delimiter and header
// names vary between sources.
func ParseAssetList(ctx context.Context, content []byte) (*AssetList, error) {
	log := logger.FromContext(ctx)

	content = bytes.TrimPrefix(content, []byte("\ufeff"))
	reader := csv.NewReader(bytes.NewReader(content))
	reader.Comma = sniffDelimiter(content)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	aliased := &aliasedHeaderReader{
		Reader: reader,
		Aliases: map[string][]string{
			tickerField: TickerHeaderAliases,
			weightField: WeightHeaderAliases,
		},
	}

	rows := []assetListRow{}
	err := gocsv.UnmarshalCSV(aliased, &rows)
	if err != nil {
		return nil, domain.NewFatalInputError("failed to parse asset list", err)
	}
	if !aliased.Resolved[tickerField] {
		return nil, domain.NewFatalInputError(
			fmt.Sprintf("asset list has no ticker column (expected one of %s)", strings.Join(TickerHeaderAliases, ", ")),
			nil,
		)
	}

	symbols := []string{}
	weights := domain.WeightVector{}
	seen := map[string]bool{}
	for _, row := range rows {
		symbol := domain.NormalizeSymbol(row.Ticker)
		if symbol == "" || seen[symbol] {
			continue
		}
		seen[symbol] = true
		symbols = append(symbols, symbol)

		if !aliased.Resolved[weightField] {
			continue
		}
		pct, err := parsePercent(row.Weight)
		if err != nil {
			log.Warnf("ignoring weight %q for %s: %s", row.Weight, symbol, err.Error())
			continue
		}
		if pct > 0 {
			weights = append(weights, domain.AssetWeight{Symbol: symbol, Weight: pct / 100})
		}
	}

	if len(symbols) == 0 {
		return nil, domain.NewFatalInputError("asset list contains no tickers", nil)
	}

	out := &AssetList{
		Universe: domain.NewAssetUniverse(symbols),
	}
	if aliased.Resolved[weightField] {
		out.Weights = weights
	} else {
		log.Warnf("asset list has no weight column (expected one of %s); initial portfolio unavailable", strings.Join(WeightHeaderAliases, ", "))
	}

	return out, nil
}

func parsePercent(s string) (float64, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" {
		return 0, nil
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}

// sniffDelimiter picks the candidate separator most frequent in the header
// line, defaulting to a comma.
func sniffDelimiter(content []byte) rune {
	header := content
	if i := bytes.IndexByte(content, '\n'); i >= 0 {
		header = content[:i]
	}

	best, bestCount := ',', 0
	for _, candidate := range []rune{',', ';', '\t', '|'} {
		count := bytes.Count(header, []byte(string(candidate)))
		if count > bestCount {
			best, bestCount = candidate, count
		}
	}
	return best
}

// aliasedHeaderReader rewrites the header row so the highest priority alias
// of each canonical field carries the canonical name.
type aliasedHeaderReader struct {
	Reader   *csv.Reader
	Aliases  map[string][]string
	Resolved map[string]bool

	headerDone bool
}

func (r *aliasedHeaderReader) Read() ([]string, error) {
	record, err := r.Reader.Read()
	if err != nil {
		return nil, err
	}
	if !r.headerDone {
		r.headerDone = true
		record = r.normalizeHeader(record)
	}
	return record, nil
}

func (r *aliasedHeaderReader) ReadAll() ([][]string, error) {
	records := [][]string{}
	for {
		record, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func (r *aliasedHeaderReader) normalizeHeader(header []string) []string {
	r.Resolved = map[string]bool{}
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = fmt.Sprintf("_column_%d", i)
		header[i] = strings.TrimSpace(h)
	}

	for field, aliases := range r.Aliases {
		for _, alias := range aliases {
			idx := -1
			for i, h := range header {
				if strings.EqualFold(h, alias) {
					idx = i
					break
				}
			}
			if idx >= 0 {
				out[idx] = field
				r.Resolved[field] = true
				break
			}
		}
	}
	return out
}
