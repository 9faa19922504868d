package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
	"storefront/internal/services"
)

func TestGetProducts_HidesUnpriced(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	all, err := e.catalog.GetProducts(ctx, "")
	require.NoError(t, err)
	ids := map[string]domain.Product{}
	for _, p := range all {
		ids[p.ID] = p
	}
	assert.Len(t, all, 5)
	assert.NotContains(t, ids, "stand-01")
	assert.Equal(t, domain.Money(999), ids["cable-01"].Price)
	assert.Equal(t, "USD", ids["cable-01"].Currency)
	assert.Equal(t, "/api/images/products/cable-01.jpg", ids["cable-01"].ImageURL)

	audio, err := e.catalog.GetProducts(ctx, "audio")
	require.NoError(t, err)
	assert.Len(t, audio, 2)

	none, err := e.catalog.GetProducts(ctx, "no-such-category")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGetProductByID(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	p, ok, err := e.catalog.GetProductByID(ctx, "speaker-01")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.Money(12950), p.Price)

	_, ok, err = e.catalog.GetProductByID(ctx, "stand-01")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = e.catalog.GetProductByID(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, ok)

	cats, err := e.catalog.GetCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, 3)
}

func TestActivePrice_TieBreak(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	require.NoError(t, e.prods.Upsert(ctx, domain.Product{ID: "dup", CategoryID: "audio", Name: "Dup"}))

	ts := "2025-06-01T00:00:00.000000Z"
	for _, row := range []domain.PriceItem{
		{ID: "a-row", ProductID: "dup", Price: 100, IsActive: true, EffectiveAt: ts},
		{ID: "b-row", ProductID: "dup", Price: 200, IsActive: true, EffectiveAt: ts},
		{ID: "0-row", ProductID: "dup", Price: 50, IsActive: true, EffectiveAt: "2025-01-01T00:00:00.000000Z"},
		{ID: "z-row", ProductID: "dup", Price: 900, IsActive: false, EffectiveAt: "2026-01-01T00:00:00.000000Z"},
	} {
		_, err := e.prices.Insert(ctx, row)
		require.NoError(t, err)
	}

	svc := services.NewPricelistService(e.prices)
	price, ok, err := svc.GetActivePrice(ctx, "dup")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.Money(200), price)

	batch, err := svc.GetActivePrices(ctx, []string{"dup", "mouse-01"})
	require.NoError(t, err)
	assert.Equal(t, map[string]domain.Money{"dup": 200, "mouse-01": 2999}, batch)

	empty, err := svc.GetActivePrices(ctx, []string{})
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, ok, err = svc.GetActivePrice(ctx, "stand-01")
	require.NoError(t, err)
	assert.False(t, ok)
}
