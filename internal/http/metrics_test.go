package handlers_test

import (
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_SurviveMixedTraffic(t *testing.T) {
	shop := newShop(t)
	sdet := newSdet(t)

	tok := login(t, shop)
	for i := 0; i < 3; i++ {
		do(t, shop, "GET", "/api/products", "", nil)
		do(t, shop, "GET", "/api/products/mouse-01", "", nil)
		do(t, shop, "POST", "/api/cart/items", tok, map[string]any{"productId": "mouse-01", "quantity": 1})
		do(t, shop, "PATCH", "/api/cart/items/mouse-01", tok, map[string]any{"quantity": 2})
		do(t, shop, "DELETE", "/api/cart/items/mouse-01", tok, nil)
		do(t, shop, "DELETE", "/api/cart", tok, nil)
		do(t, shop, "GET", "/api/nope", "", nil)
	}

	creds := map[string]string{"email": "metrics@test.dev", "password": "secret1"}
	resp := do(t, sdet, "POST", "/api/sdet/auth/register", "", creds)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = do(t, sdet, "POST", "/api/sdet/auth/login", "", creds)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	sdetTok := decode[struct {
		IDToken string `json:"idToken"`
	}](t, resp).IDToken
	for i := 0; i < 3; i++ {
		do(t, sdet, "GET", "/api/sdet/user", sdetTok, nil)
		do(t, sdet, "PUT", "/api/sdet/user", sdetTok, map[string]string{"name": "QA"})
		do(t, sdet, "GET", "/api/health", "", nil)
	}

	for _, app := range []struct {
		name string
		hit  func() *http.Response
	}{
		{"shop", func() *http.Response { return do(t, shop, "GET", "/metrics", "", nil) }},
		{"sdet", func() *http.Response { return do(t, sdet, "GET", "/metrics", "", nil) }},
	} {
		resp := app.hit()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		_ = resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode, "%s: %s", app.name, body)
		assert.Contains(t, string(body), `method="PATCH"`)
		assert.Contains(t, string(body), `method="PUT"`)
		assert.Contains(t, string(body), `path="/api/sdet/user"`)
		assert.Contains(t, string(body), `path="/api/cart/items/:itemId"`)
	}
}
