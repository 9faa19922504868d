package services

import (
	"context"
	"strings"
	"unicode"

	"storefront/internal/domain"
)

const (
	PaymentInsufficientFunds = "insufficient_funds"
	PaymentInvalidCard       = "invalid_card"
)

type PaymentResult struct {
	Success   bool
	ErrorCode string
}

// PaymentAuthorizer is the swap-in point for a real processor.
type PaymentAuthorizer interface {
	ProcessPayment(ctx context.Context, amount domain.Money, cardNumber string) (PaymentResult, error)
}

// PaymentService is a stub that only knows a fixed table of test cards.
type PaymentService struct{}

func NewPaymentService() *PaymentService { return &PaymentService{} }

var testCards = map[string]PaymentResult{
	"9999999999999999": {Success: true},
	"1111111111111111": {ErrorCode: PaymentInsufficientFunds},
	"2222222222222222": {ErrorCode: PaymentInvalidCard},
}

func (s *PaymentService) ProcessPayment(_ context.Context, _ domain.Money, cardNumber string) (PaymentResult, error) {
	if res, ok := testCards[StripSpaces(cardNumber)]; ok {
		return res, nil
	}
	return PaymentResult{ErrorCode: PaymentInvalidCard}, nil
}

// StripSpaces removes every whitespace rune.
func StripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
