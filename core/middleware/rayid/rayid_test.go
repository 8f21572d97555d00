package rayid

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRayIDAssigned(t *testing.T) {
	app := fiber.New()
	app.Use(New())

	var seen string
	app.Get("/ping", func(c *fiber.Ctx) error {
		seen, _ = c.Locals(LocalsKey).(string)
		return c.SendString("pong")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
	require.NoError(t, err)

	header := resp.Header.Get(HeaderName)
	assert.NotEmpty(t, header)
	assert.Equal(t, header, seen)

	_, err = uuid.Parse(header)
	assert.NoError(t, err)
}

func TestRayIDUniquePerRequest(t *testing.T) {
	app := fiber.New()
	app.Use(New())
	app.Get("/ping", func(c *fiber.Ctx) error {
		return c.SendString("pong")
	})

	resp1, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
	require.NoError(t, err)
	resp2, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
	require.NoError(t, err)

	assert.NotEqual(t, resp1.Header.Get(HeaderName), resp2.Header.Get(HeaderName))
}
