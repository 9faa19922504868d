package handlers

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/services"
	"storefront/internal/validate"
)

type ImageHandler struct {
	Images *services.ImageService
}

// Product serves GET /api/images/products/:filename?width=.
func (h *ImageHandler) Product(c *fiber.Ctx) error {
	width, ok := validate.Width(c.Query("width"))
	if !ok {
		return writeError(c, "image.get", services.ErrInvalidWidth)
	}
	name, err := url.PathUnescape(c.Params("filename"))
	if err != nil {
		return badRequest(c, "filename", "Invalid filename")
	}

	body, mimeType, err := h.Images.GetImage(name, width)
	if err != nil {
		return writeError(c, "image.get", err)
	}
	c.Set(fiber.HeaderCacheControl, h.Images.CacheControl())
	c.Set(fiber.HeaderContentType, mimeType)
	return c.Send(body)
}
