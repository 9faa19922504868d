package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type CartHandler struct {
	Cart *services.CartService
}

type addItemReq struct {
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity"`
}

type updateItemReq struct {
	Quantity *int `json:"quantity"`
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	cart, err := h.Cart.GetCart(c.UserContext(), uid(c))
	if err != nil {
		return writeError(c, "cart.view", err)
	}
	return c.JSON(cart)
}

// Add serves POST /api/cart/items. quantity defaults to 1 and may be negative.
func (h *CartHandler) Add(c *fiber.Ctx) error {
	var req addItemReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "body", "Invalid JSON body")
	}
	productID, ok := validate.ID(req.ProductID)
	if !ok {
		return badRequest(c, "productId", "Valid productId is required")
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}
	if !validate.Quantity(qty) {
		return badRequest(c, "quantity", "Quantity out of range")
	}

	cart, err := h.Cart.AddItem(c.UserContext(), uid(c), productID, qty)
	if err != nil {
		return writeError(c, "cart.add", err)
	}
	applog.Info(c, "cart.add", map[string]any{"product_id": productID, "qty": qty})
	return c.JSON(cart)
}

func (h *CartHandler) Update(c *fiber.Ctx) error {
	productID, ok := validate.ID(c.Params("itemId"))
	if !ok {
		return badRequest(c, "itemId", "Invalid itemId")
	}
	var req updateItemReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "body", "Invalid JSON body")
	}
	if req.Quantity == nil || !validate.Quantity(*req.Quantity) {
		return badRequest(c, "quantity", "Valid quantity is required")
	}

	cart, err := h.Cart.UpdateItemQuantity(c.UserContext(), uid(c), productID, *req.Quantity)
	if err != nil {
		return writeError(c, "cart.update", err)
	}
	applog.Info(c, "cart.update", map[string]any{"product_id": productID, "qty": *req.Quantity})
	return c.JSON(cart)
}

func (h *CartHandler) Remove(c *fiber.Ctx) error {
	productID, ok := validate.ID(c.Params("itemId"))
	if !ok {
		return badRequest(c, "itemId", "Invalid itemId")
	}
	cart, err := h.Cart.RemoveItem(c.UserContext(), uid(c), productID)
	if err != nil {
		return writeError(c, "cart.remove", err)
	}
	applog.Info(c, "cart.remove", map[string]any{"product_id": productID})
	return c.JSON(cart)
}

func (h *CartHandler) Clear(c *fiber.Ctx) error {
	if err := h.Cart.ClearCart(c.UserContext(), uid(c)); err != nil {
		return writeError(c, "cart.clear", err)
	}
	applog.Info(c, "cart.clear", nil)
	return c.SendStatus(fiber.StatusNoContent)
}
