package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type SdetHandler struct {
	Auth  *services.AuthService
	Users *services.SdetUserService
}

// Register creates the login identity and its SDET profile.
func (h *SdetHandler) Register(c *fiber.Ctx) error {
	var req credentialsReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "body", "Invalid JSON body")
	}
	email, ok := validate.Email(req.Email)
	if !ok || !validate.MinPassword(req.Password) {
		return badRequest(c, "credentials", "Email and password required")
	}
	name, ok := validate.Name(req.Name)
	if !ok {
		return badRequest(c, "name", "Invalid name")
	}

	u, err := h.Auth.Register(c.UserContext(), email, req.Password, name)
	if err != nil {
		return writeError(c, "sdet.register", err)
	}
	profile, err := h.Users.GetOrCreate(c.UserContext(), services.ProfileSeed{
		UID:         u.ID,
		Email:       u.Email,
		DisplayName: u.Name,
		Name:        name,
	})
	if err != nil {
		return writeError(c, "sdet.register", err)
	}
	applog.Audit(c, "sdet.register", map[string]any{"uid": u.ID})
	return c.Status(fiber.StatusCreated).JSON(profile)
}

func (h *SdetHandler) Profile(c *fiber.Ctx) error {
	profile, err := h.Users.GetOrCreate(c.UserContext(), seedFromToken(c))
	if err != nil {
		return writeError(c, "sdet.profile", err)
	}
	return c.JSON(profile)
}

// Upsert serves PUT /api/sdet/user {name?}. A present name must be a string.
func (h *SdetHandler) Upsert(c *fiber.Ctx) error {
	var body map[string]json.RawMessage
	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &body); err != nil {
			return badRequest(c, "body", "Invalid JSON body")
		}
	}
	var name *string
	if raw, ok := body["name"]; ok {
		var s string
		if string(raw) == "null" || json.Unmarshal(raw, &s) != nil {
			return badRequest(c, "name", "Invalid name")
		}
		if _, ok := validate.Name(s); !ok {
			return badRequest(c, "name", "Invalid name")
		}
		name = &s
	}

	seed := seedFromToken(c)
	if name != nil {
		seed.Name = *name
	}
	profile, err := h.Users.Update(c.UserContext(), seed, name)
	if err != nil {
		return writeError(c, "sdet.update", err)
	}
	if name != nil {
		applog.Audit(c, "sdet.profile.update", nil)
	}
	return c.JSON(profile)
}

func seedFromToken(c *fiber.Ctx) services.ProfileSeed {
	cl := claimsOf(c)
	return services.ProfileSeed{UID: uid(c), Email: cl.Email, DisplayName: cl.Name}
}
