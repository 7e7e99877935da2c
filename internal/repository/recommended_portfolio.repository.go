package repository

import (
	"context"
	"errors"
	"fmt"
	"frontierbacktest/internal/domain"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
)

// MinPersistedWeight is the smallest allocation read back from persisted
// portfolios; anything at or below it is rounding residue.
const MinPersistedWeight = 0.001

var ErrArtifactNotFound = errors.New("artifact not found")

type RecommendedPortfolioRepository interface {
	Save(ctx context.Context, weights domain.WeightVector) error
	Get(ctx context.Context) (domain.WeightVector, error)
}

type recommendedPortfolioRepositoryHandler struct {
	Path string
}

func NewRecommendedPortfolioRepository(path string) RecommendedPortfolioRepository {
	return recommendedPortfolioRepositoryHandler{
		Path: path,
	}
}

type recommendedPortfolioRow struct {
	Ticker string  `csv:"ticker"`
	Weight float64 `csv:"weight"`
}

func (h recommendedPortfolioRepositoryHandler) Save(ctx context.Context, weights domain.WeightVector) error {
	rows := []recommendedPortfolioRow{}
	for _, w := range weights {
		if w.Weight > 0 {
			rows = append(rows, recommendedPortfolioRow{Ticker: w.Symbol, Weight: w.Weight})
		}
	}

	if err := os.MkdirAll(filepath.Dir(h.Path), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(h.Path), err)
	}
	f, err := os.Create(h.Path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", h.Path, err)
	}
	defer f.Close()

	err = gocsv.MarshalWithoutHeaders(&rows, f)
	if err != nil {
		return fmt.Errorf("failed to write recommended portfolio: %w", err)
	}
	return nil
}

func (h recommendedPortfolioRepositoryHandler) Get(ctx context.Context) (domain.WeightVector, error) {
	f, err := os.Open(h.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", h.Path, ErrArtifactNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", h.Path, err)
	}
	defer f.Close()

	rows := []recommendedPortfolioRow{}
	err = gocsv.UnmarshalWithoutHeaders(f, &rows)
	if errors.Is(err, gocsv.ErrEmptyCSVFile) {
		return domain.WeightVector{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", h.Path, err)
	}

	out := domain.WeightVector{}
	for _, row := range rows {
		symbol := domain.NormalizeSymbol(row.Ticker)
		if symbol == "" || row.Weight <= MinPersistedWeight {
			continue
		}
		out = append(out, domain.AssetWeight{Symbol: symbol, Weight: row.Weight})
	}
	return out, nil
}
