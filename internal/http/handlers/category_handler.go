package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/services"
)

type CategoryHandler struct {
	Catalog *services.CatalogService
}

func (h *CategoryHandler) List(c *fiber.Ctx) error {
	cats, err := h.Catalog.GetCategories(c.UserContext())
	if err != nil {
		return writeError(c, "catalog.categories", err)
	}
	return c.JSON(cats)
}
