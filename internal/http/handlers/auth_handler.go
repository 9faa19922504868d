package handlers

import (
	"database/sql"
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type AuthHandler struct {
	Auth *services.AuthService

	// PasswordOK decides whether a registration password is acceptable.
	PasswordOK func(string) bool
}

type credentialsReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req credentialsReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "body", "Invalid JSON body")
	}
	email, ok := validate.Email(req.Email)
	if !ok {
		return badRequest(c, "email", "Email and password required")
	}
	if !h.passwordOK(req.Password) {
		return badRequest(c, "password", "Email and password required")
	}
	name, ok := validate.Name(req.Name)
	if !ok {
		return badRequest(c, "name", "Invalid name")
	}

	u, err := h.Auth.Register(c.UserContext(), email, req.Password, name)
	if err != nil {
		if errors.Is(err, services.ErrEmailExists) {
			applog.Security(c, "auth.register.duplicate", map[string]any{"email": email})
		}
		return writeError(c, "auth.register", err)
	}
	applog.Audit(c, "auth.register", map[string]any{"uid": u.ID})
	return c.Status(fiber.StatusCreated).JSON(u)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req credentialsReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "body", "Invalid JSON body")
	}
	email, ok := validate.Email(req.Email)
	if !ok || req.Password == "" {
		applog.Security(c, "auth.login.fail", map[string]any{"email": req.Email, "reason": "bad_format"})
		return fail(c, fiber.StatusUnauthorized, "invalid_credentials", "Invalid email or password", "")
	}

	sess, err := h.Auth.Login(c.UserContext(), email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrBadCreds) {
			applog.Security(c, "auth.login.fail", map[string]any{"email": email})
		}
		return writeError(c, "auth.login", err)
	}
	applog.Audit(c, "auth.login.success", map[string]any{"email": email})
	return c.JSON(sess)
}

// Me returns the account behind the bearer token.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	u, err := h.Auth.CurrentUser(c.UserContext(), uid(c))
	if errors.Is(err, sql.ErrNoRows) {
		applog.Security(c, "auth.me.unknown", nil)
		return fail(c, fiber.StatusUnauthorized, "unauthorized", "Unauthorized", "")
	}
	if err != nil {
		return writeError(c, "auth.me", err)
	}
	return c.JSON(u)
}

func (h *AuthHandler) passwordOK(p string) bool {
	if h.PasswordOK != nil {
		return h.PasswordOK(p)
	}
	return validate.Password(p)
}
