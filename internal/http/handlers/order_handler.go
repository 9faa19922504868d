package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type OrderHandler struct {
	Checkout *services.CheckoutService
	Orders   *services.OrderService
}

type checkoutReq struct {
	PaymentMethod string `json:"paymentMethod"`
	CardNumber    string `json:"cardNumber"`
}

// Place serves POST /api/checkout. An Idempotency-Key header makes retries safe.
func (h *OrderHandler) Place(c *fiber.Ctx) error {
	var req checkoutReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "body", "Invalid JSON body")
	}
	method, ok := validate.PaymentMethod(req.PaymentMethod)
	if !ok {
		return badRequest(c, "paymentMethod", "Valid paymentMethod is required")
	}
	if !validate.CardNumber(req.CardNumber) {
		return badRequest(c, "cardNumber", "Invalid card number")
	}
	key := utils.CopyString(c.Get("Idempotency-Key"))
	if key != "" && !validate.IdempotencyKey(key) {
		return badRequest(c, "Idempotency-Key", "Invalid Idempotency-Key")
	}

	res, err := h.Checkout.Checkout(c.UserContext(), uid(c), services.CheckoutRequest{
		PaymentMethod:  domain.PaymentMethod(method),
		CardNumber:     req.CardNumber,
		IdempotencyKey: key,
	})
	if err != nil {
		applog.Security(c, "checkout.fail", map[string]any{"method": method, "error": err.Error()})
		return writeError(c, "checkout", err)
	}
	applog.Audit(c, "order.place", map[string]any{
		"order_id":    res.OrderID,
		"new_cart_id": res.NewCartID,
		"method":      method,
	})
	return c.Status(fiber.StatusCreated).JSON(res)
}

// History serves GET /api/orders, newest first.
func (h *OrderHandler) History(c *fiber.Ctx) error {
	orders, err := h.Orders.GetUserOrders(c.UserContext(), uid(c))
	if err != nil {
		return writeError(c, "orders.list", err)
	}
	return c.JSON(orders)
}
