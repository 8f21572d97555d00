package auth

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupApp(apiKey string) *fiber.App {
	app := fiber.New()
	app.Use(New(Config{ApiKey: apiKey}))
	app.Get("/ping", func(c *fiber.Ctx) error {
		return c.SendString("pong")
	})
	return app
}

func TestAuthValidKey(t *testing.T) {
	app := setupApp("secret-key")

	req := httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set(HeaderName, "secret-key")
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestAuthMissingKey(t *testing.T) {
	app := setupApp("secret-key")

	resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestAuthWrongKey(t *testing.T) {
	app := setupApp("secret-key")

	req := httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set(HeaderName, "wrong")
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestAuthDisabledWhenEmpty(t *testing.T) {
	app := setupApp("")

	resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}
