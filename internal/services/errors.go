package services

import (
	"errors"
	"fmt"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrPriceUnavailable  = errors.New("price not found for product")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrMissingCardNumber = errors.New("card number is required for card payment")
	ErrInvalidPayment    = errors.New("valid paymentMethod is required")
	ErrCartConflict      = errors.New("cart was modified concurrently")
	ErrDuplicateRequest  = errors.New("a request with this idempotency key is in progress")

	ErrBadCreds    = errors.New("invalid email or password")
	ErrEmailExists = errors.New("email already registered")

	ErrImageNotFound = errors.New("image not found")
	ErrAccessDenied  = errors.New("access denied")
	ErrInvalidWidth  = errors.New("width must be a positive integer")
	ErrImageProcess  = errors.New("image processing failed")
)

// PaymentDeclinedError carries the authorizer's error code for a refused charge.
type PaymentDeclinedError struct {
	Code string
}

func (e *PaymentDeclinedError) Error() string {
	if e.Code == "" {
		return "payment failed"
	}
	return fmt.Sprintf("payment declined: %s", e.Code)
}
