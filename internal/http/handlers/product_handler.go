package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

// List serves GET /api/products?category=<id>.
func (h *ProductHandler) List(c *fiber.Ctx) error {
	category, ok := validate.OptionalID(c.Query("category"))
	if !ok {
		return badRequest(c, "category", "Invalid category")
	}
	products, err := h.Catalog.GetProducts(c.UserContext(), category)
	if err != nil {
		return writeError(c, "catalog.products", err)
	}
	return c.JSON(products)
}

func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "product"})
		return fail(c, fiber.StatusNotFound, "not_found", "Product not found", "")
	}
	p, found, err := h.Catalog.GetProductByID(c.UserContext(), id)
	if err != nil {
		return writeError(c, "catalog.product", err)
	}
	if !found {
		return fail(c, fiber.StatusNotFound, "not_found", "Product not found", "")
	}
	return c.JSON(p)
}
