package repository

import (
	"context"
	"errors"
	"fmt"
	"frontierbacktest/internal/domain"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const OptimizerConfigSchemaVersion = 1

// OptimizerConfigRecord is the settings snapshot an optimize run leaves for
// later backtests.
type OptimizerConfigRecord struct {
	SchemaVersion      int       `yaml:"schemaVersion"`
	RunID              string    `yaml:"runId,omitempty"`
	GeneratedAt        time.Time `yaml:"generatedAt,omitempty"`
	MinAllocation      *float64  `yaml:"minAllocation,omitempty"`
	MaxAllocation      *float64  `yaml:"maxAllocation,omitempty"`
	RiskFreeRate       *float64  `yaml:"riskFreeRate,omitempty"`
	LookbackYears      *int      `yaml:"lookbackYears,omitempty"`
	TradingDaysPerYear *int      `yaml:"tradingDaysPerYear,omitempty"`
	Symbols            []string  `yaml:"symbols,omitempty"`
}

func NewOptimizerConfigRecord(runID string, cfg domain.OptimizerConfig, symbols []string, generatedAt time.Time) OptimizerConfigRecord {
	return OptimizerConfigRecord{
		SchemaVersion:      OptimizerConfigSchemaVersion,
		RunID:              runID,
		GeneratedAt:        generatedAt.UTC(),
		MinAllocation:      &cfg.MinAllocation,
		MaxAllocation:      &cfg.MaxAllocation,
		RiskFreeRate:       &cfg.RiskFreeRate,
		LookbackYears:      &cfg.LookbackYears,
		TradingDaysPerYear: &cfg.TradingDaysPerYear,
		Symbols:            symbols,
	}
}

// Bounds returns the allocation bounds if both are recorded.
func (r OptimizerConfigRecord) Bounds() (*domain.Bounds, bool) {
	if r.MinAllocation == nil || r.MaxAllocation == nil {
		return nil, false
	}
	return &domain.Bounds{Lower: *r.MinAllocation, Upper: *r.MaxAllocation}, true
}

type OptimizerConfigRepository interface {
	Save(ctx context.Context, record OptimizerConfigRecord) error
	Get(ctx context.Context) (*OptimizerConfigRecord, error)
}

type optimizerConfigRepositoryHandler struct {
	Path string
}

func NewOptimizerConfigRepository(path string) OptimizerConfigRepository {
	return optimizerConfigRepositoryHandler{
		Path: path,
	}
}

func (h optimizerConfigRepositoryHandler) Save(ctx context.Context, record OptimizerConfigRecord) error {
	bytes, err := yaml.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal optimizer config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(h.Path), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(h.Path), err)
	}
	if err := os.WriteFile(h.Path, bytes, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", h.Path, err)
	}
	return nil
}

// Get reads the record leniently: unknown fields are ignored and missing
// fields stay nil. Newer schema versions are read on a best-effort basis.
func (h optimizerConfigRepositoryHandler) Get(ctx context.Context) (*OptimizerConfigRecord, error) {
	bytes, err := os.ReadFile(h.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", h.Path, ErrArtifactNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", h.Path, err)
	}

	record := OptimizerConfigRecord{}
	if err := yaml.Unmarshal(bytes, &record); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", h.Path, err)
	}
	if record.SchemaVersion == 0 {
		return nil, fmt.Errorf("%s has no schemaVersion", h.Path)
	}
	return &record, nil
}
