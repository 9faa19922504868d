package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/auth"
	applog "storefront/internal/log"
)

// RequireToken verifies the Bearer ID token and stores its claims in Locals
// ("uid", "claims").
func RequireToken(tokens *auth.Tokens) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(header, "Bearer ") {
			applog.Security(c, "auth.token.missing", nil)
			return fail(c, fiber.StatusUnauthorized, "unauthorized", "Unauthorized", "")
		}
		claims, err := tokens.Verify(strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")))
		if err != nil {
			applog.Security(c, "auth.token.invalid", map[string]any{"reason": err.Error()})
			return fail(c, fiber.StatusUnauthorized, "invalid_token", "Invalid token", err.Error())
		}
		c.Locals("uid", claims.UID())
		c.Locals("claims", claims)
		return c.Next()
	}
}

func uid(c *fiber.Ctx) string {
	s, _ := c.Locals("uid").(string)
	return s
}

func claimsOf(c *fiber.Ctx) *auth.Claims {
	cl, _ := c.Locals("claims").(*auth.Claims)
	if cl == nil {
		return &auth.Claims{}
	}
	return cl
}
