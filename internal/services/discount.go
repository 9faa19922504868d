package services

import (
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

const (
	// DiscountThreshold is 100.00 in minor units.
	DiscountThreshold domain.Money = 10000
)

var discountRate = decimal.RequireFromString("0.10")

// CalculateDiscount returns 10% of subtotal, floored, once subtotal reaches the threshold.
func CalculateDiscount(subtotal domain.Money) domain.Money {
	if subtotal < DiscountThreshold {
		return 0
	}
	return decimal.NewFromInt(subtotal).Mul(discountRate).Floor().IntPart()
}
