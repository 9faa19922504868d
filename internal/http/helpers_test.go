package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"storefront/internal/config"
	"storefront/internal/http/handlers"
	"storefront/internal/repos"
)

func testConfig(t *testing.T, svc config.Service) config.Config {
	t.Helper()
	cfg, err := config.Load(svc, "")
	require.NoError(t, err)
	cfg.DB.DSN = ":memory:"
	cfg.Image.Root = t.TempDir()
	cfg.Auth.Secret = "test-secret"
	return cfg
}

func newShop(t *testing.T, mutate ...func(*config.Config)) *fiber.App {
	t.Helper()
	cfg := testConfig(t, config.Shop)
	for _, m := range mutate {
		m(&cfg)
	}
	db, err := repos.OpenDB(cfg.DB.DSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return handlers.NewShopApp(handlers.NewShopDeps(db, cfg, handlers.Integrations{}), cfg)
}

func newSdet(t *testing.T) *fiber.App {
	t.Helper()
	cfg := testConfig(t, config.Sdet)
	db, err := repos.OpenSdetDB(cfg.DB.DSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return handlers.NewSdetApp(handlers.NewSdetDeps(db, cfg), cfg)
}

type apiError struct {
	Error     string `json:"error"`
	ErrorCode string `json:"errorCode"`
	Details   string `json:"details"`
}

func do(t *testing.T, app *fiber.App, method, path, token string, body any) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, ok := body.(string)
		if !ok {
			b, err := json.Marshal(body)
			require.NoError(t, err)
			raw = string(b)
		}
		rd = bytes.NewBufferString(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

// login returns an ID token for the seeded demo shopper.
func login(t *testing.T, app *fiber.App) string {
	t.Helper()
	resp := do(t, app, "POST", "/api/auth/login", "", map[string]string{"email": "demo@shop.test", "password": "Passw0rd!"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	sess := decode[struct {
		IDToken string `json:"idToken"`
	}](t, resp)
	require.NotEmpty(t, sess.IDToken)
	return sess.IDToken
}
