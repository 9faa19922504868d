package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "storefront/internal/log"
	"storefront/internal/services"
)

// apiError is the JSON envelope for every failure.
type apiError struct {
	Error     string `json:"error"`
	ErrorCode string `json:"errorCode,omitempty"`
	Details   string `json:"details,omitempty"`
}

func fail(c *fiber.Ctx, status int, code, msg, details string) error {
	return c.Status(status).JSON(apiError{Error: msg, ErrorCode: code, Details: details})
}

// badRequest logs the rejected field and answers 400 invalid_parameter.
func badRequest(c *fiber.Ctx, field, msg string) error {
	applog.Security(c, "validation.fail", map[string]any{"field": field})
	return fail(c, fiber.StatusBadRequest, "invalid_parameter", msg, "")
}

// writeError maps service errors to the envelope. Anything unrecognised is logged and
// collapsed to a 500 without details.
func writeError(c *fiber.Ctx, action string, err error) error {
	var declined *services.PaymentDeclinedError
	switch {
	case errors.As(err, &declined):
		return fail(c, fiber.StatusPaymentRequired, declined.Code, "Payment failed", "")
	case errors.Is(err, services.ErrProductNotFound):
		return fail(c, fiber.StatusNotFound, "not_found", "Product not found", "")
	case errors.Is(err, services.ErrPriceUnavailable):
		return fail(c, fiber.StatusNotFound, "price_unavailable", "Price not found for product", "")
	case errors.Is(err, services.ErrEmptyCart):
		return fail(c, fiber.StatusBadRequest, "empty_cart", "Cart is empty", "")
	case errors.Is(err, services.ErrMissingCardNumber):
		return fail(c, fiber.StatusBadRequest, "invalid_parameter", "Card number is required for card payment", "")
	case errors.Is(err, services.ErrInvalidPayment):
		return fail(c, fiber.StatusBadRequest, "invalid_parameter", "Valid paymentMethod is required", "")
	case errors.Is(err, services.ErrInvalidWidth):
		return fail(c, fiber.StatusBadRequest, "invalid_parameter", "Invalid width parameter", "")
	case errors.Is(err, services.ErrCartConflict):
		return fail(c, fiber.StatusConflict, "cart_conflict", "Cart was modified concurrently, retry", "")
	case errors.Is(err, services.ErrDuplicateRequest):
		return fail(c, fiber.StatusConflict, "duplicate_request", "A request with this idempotency key is in progress", "")
	case errors.Is(err, services.ErrEmailExists):
		return fail(c, fiber.StatusConflict, "email_exists", "Email already registered", "")
	case errors.Is(err, services.ErrBadCreds):
		return fail(c, fiber.StatusUnauthorized, "invalid_credentials", "Invalid email or password", "")
	case errors.Is(err, services.ErrImageNotFound):
		return fail(c, fiber.StatusNotFound, "not_found", "Image not found", "")
	case errors.Is(err, services.ErrAccessDenied):
		applog.Security(c, "image.traversal.block", nil)
		return fail(c, fiber.StatusForbidden, "access_denied", "Access denied", "")
	}
	applog.Error(c, action, err, nil)
	return fail(c, fiber.StatusInternalServerError, "internal_error", "Internal server error", "")
}

// ErrorHandler is the app-level fallback for errors returned by handlers and middleware.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		return fail(c, fe.Code, codeFor(fe.Code), fe.Message, "")
	}
	applog.Error(c, "server.error", err, nil)
	return fail(c, fiber.StatusInternalServerError, "internal_error", "Internal server error", "")
}

func codeFor(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return "not_found"
	case fiber.StatusMethodNotAllowed:
		return "method_not_allowed"
	case fiber.StatusRequestEntityTooLarge:
		return "payload_too_large"
	case fiber.StatusTooManyRequests:
		return "rate_limited"
	case fiber.StatusUnauthorized:
		return "unauthorized"
	default:
		return "invalid_parameter"
	}
}
