package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"storefront/internal/domain"
	"storefront/internal/services"
)

func TestCalculateDiscount(t *testing.T) {
	cases := []struct {
		subtotal domain.Money
		want     domain.Money
	}{
		{0, 0},
		{9999, 0},
		{10000, 1000},
		{10005, 1000},
		{10009, 1000},
		{12950, 1295},
		{99999, 9999},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, services.CalculateDiscount(tc.subtotal), "subtotal=%d", tc.subtotal)
	}
}

func TestRecalculate(t *testing.T) {
	c := domain.Cart{Items: []domain.CartItem{
		{ProductID: "a", Price: 8999, Quantity: 1, ItemTotal: 8999},
		{ProductID: "b", Price: 999, Quantity: 2, ItemTotal: 1998},
	}}
	services.Recalculate(&c)
	assert.Equal(t, domain.Money(10997), c.Subtotal)
	assert.Equal(t, domain.Money(1099), c.Discount)
	assert.Equal(t, c.Subtotal-c.Discount, c.Total)
}
