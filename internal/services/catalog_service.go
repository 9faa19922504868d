package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/repos"
)

type CatalogService struct {
	Cats   *repos.CategoryRepo
	Prods  *repos.ProductRepo
	Prices *PricelistService

	// ImageBase prefixes bare image references, e.g. "/api/images/products".
	ImageBase string
}

func NewCatalogService(cats *repos.CategoryRepo, prods *repos.ProductRepo, prices *PricelistService, imageBase string) *CatalogService {
	return &CatalogService{Cats: cats, Prods: prods, Prices: prices, ImageBase: imageBase}
}

func (s *CatalogService) GetCategories(ctx context.Context) ([]domain.Category, error) {
	return s.Cats.List(ctx)
}

// GetProducts returns the sellable products, optionally within one category.
// Products without an active price are left out.
func (s *CatalogService) GetProducts(ctx context.Context, categoryID string) ([]domain.Product, error) {
	products, err := s.Prods.List(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	prices, err := s.Prices.GetActivePrices(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		price, ok := prices[p.ID]
		if !ok {
			continue
		}
		out = append(out, s.sellable(p, price))
	}
	return out, nil
}

// GetProductByID reports ok=false both for an unknown id and for a product with no active price.
func (s *CatalogService) GetProductByID(ctx context.Context, id string) (domain.Product, bool, error) {
	p, err := s.Prods.Get(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, false, nil
	}
	if err != nil {
		return domain.Product{}, false, err
	}
	price, ok, err := s.Prices.GetActivePrice(ctx, id)
	if err != nil || !ok {
		return domain.Product{}, false, err
	}
	return s.sellable(p, price), true, nil
}

func (s *CatalogService) sellable(p domain.Product, price domain.Money) domain.Product {
	p.Price = price
	p.Currency = domain.Currency
	p.ImageURL = s.resolveImageURL(p.ImageURL)
	return p
}

func (s *CatalogService) resolveImageURL(ref string) string {
	if ref == "" || s.ImageBase == "" {
		return ref
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") || strings.HasPrefix(ref, "/") {
		return ref
	}
	return strings.TrimRight(s.ImageBase, "/") + "/" + ref
}
