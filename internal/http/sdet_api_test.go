package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
)

func TestSdet_RegisterProfileUpdate(t *testing.T) {
	app := newSdet(t)

	resp := do(t, app, "GET", "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, app, "POST", "/api/sdet/auth/register", "", map[string]string{"email": "qa@test.dev"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_parameter", decode[apiError](t, resp).ErrorCode)

	creds := map[string]string{"email": "qa@test.dev", "password": "secret1", "name": "  QA Lead "}
	resp = do(t, app, "POST", "/api/sdet/auth/register", "", creds)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	profile := decode[domain.SdetUser](t, resp)
	assert.Equal(t, 5, profile.BugsEnabled)
	assert.Equal(t, 0, profile.BugsFound)
	assert.Equal(t, "QA Lead", profile.Name)

	resp = do(t, app, "POST", "/api/sdet/auth/register", "", creds)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "email_exists", decode[apiError](t, resp).ErrorCode)

	resp = do(t, app, "GET", "/api/sdet/user", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = do(t, app, "POST", "/api/sdet/auth/login", "", map[string]string{"email": "qa@test.dev", "password": "secret1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	tok := decode[struct {
		IDToken string `json:"idToken"`
	}](t, resp).IDToken

	resp = do(t, app, "GET", "/api/sdet/user", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[domain.SdetUser](t, resp)
	assert.Equal(t, profile.UID, got.UID)

	resp = do(t, app, "PUT", "/api/sdet/user", tok, `{"name": 42}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_parameter", decode[apiError](t, resp).ErrorCode)

	resp = do(t, app, "PUT", "/api/sdet/user", tok, map[string]string{"name": "  Renamed  "})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Renamed", decode[domain.SdetUser](t, resp).Name)

	resp = do(t, app, "PUT", "/api/sdet/user", tok, map[string]string{})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Renamed", decode[domain.SdetUser](t, resp).Name)
}

func TestSdet_RejectsShopTokens(t *testing.T) {
	shop := newShop(t)
	shopTok := login(t, shop)

	app := newSdet(t)
	resp := do(t, app, "GET", "/api/sdet/user", shopTok, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid_token", decode[apiError](t, resp).ErrorCode)
}
