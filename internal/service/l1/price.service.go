package l1_service

import (
	"context"
	"errors"
	"fmt"
	"frontierbacktest/internal/domain"
	"frontierbacktest/internal/logger"
	"frontierbacktest/internal/repository"
	"time"
)

type PriceService interface {
	// LoadPriceMatrix fetches each symbol over [start, end) and aligns the
	// results. Symbols without data are dropped and logged.
	LoadPriceMatrix(ctx context.Context, symbols []string, start, end time.Time) (*domain.PriceMatrix, error)
}

type priceServiceHandler struct {
	PriceRepository repository.PriceRepository
}

func NewPriceService(priceRepository repository.PriceRepository) PriceService {
	return priceServiceHandler{
		PriceRepository: priceRepository,
	}
}

func (h priceServiceHandler) LoadPriceMatrix(ctx context.Context, symbols []string, start, end time.Time) (*domain.PriceMatrix, error) {
	log := logger.FromContext(ctx)

	prices := []domain.AssetPrice{}
	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rows, err := h.PriceRepository.List(ctx, symbol, start, end)
		if errors.Is(err, repository.ErrProviderUnavailable) {
			return nil, domain.NewFatalInputError("price provider unavailable", err)
		}
		if err != nil {
			log.Warnw("dropping asset: price fetch failed", "symbol", symbol, "error", err.Error())
			continue
		}
		if len(rows) == 0 {
			log.Warnw("dropping asset: no price data", "symbol", symbol)
			continue
		}
		prices = append(prices, rows...)
	}

	if len(prices) == 0 {
		return nil, domain.NewFatalInputError(
			fmt.Sprintf("no price data for any of %d assets between %s and %s", len(symbols), start.Format(time.DateOnly), end.Format(time.DateOnly)),
			nil,
		)
	}

	matrix := domain.NewPriceMatrix(symbols, prices)
	if matrix.IsEmpty() {
		return nil, domain.NewFatalInputError("no dates with prices for every asset", nil)
	}
	if missing := matrix.Missing(symbols); len(missing) > 0 {
		log.Warnw("assets missing from price matrix", "symbols", missing)
	}

	log.Debugw(
		"loaded price matrix",
		"assets", len(matrix.Symbols),
		"rows", matrix.NumRows(),
		"start", matrix.Dates[0].Format(time.DateOnly),
		"end", matrix.Dates[len(matrix.Dates)-1].Format(time.DateOnly),
	)

	return matrix, nil
}
