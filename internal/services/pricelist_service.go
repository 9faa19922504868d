package services

import (
	"context"
	"database/sql"
	"errors"

	"storefront/internal/domain"
	"storefront/internal/repos"
)

type PricelistService struct {
	Prices *repos.PricelistRepo
}

func NewPricelistService(prices *repos.PricelistRepo) *PricelistService {
	return &PricelistService{Prices: prices}
}

// GetActivePrice reports the current price of a product; ok is false when none is active.
func (s *PricelistService) GetActivePrice(ctx context.Context, productID string) (domain.Money, bool, error) {
	p, err := s.Prices.ActivePrice(ctx, productID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return p.Price, true, nil
}

// GetActivePrices maps product id to active price, restricted to productIDs unless nil.
func (s *PricelistService) GetActivePrices(ctx context.Context, productIDs []string) (map[string]domain.Money, error) {
	rows, err := s.Prices.ActivePrices(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	out := make(map[string]domain.Money, len(rows))
	// rows are oldest first; later rows overwrite
	for _, p := range rows {
		out[p.ProductID] = p.Price
	}
	return out, nil
}
