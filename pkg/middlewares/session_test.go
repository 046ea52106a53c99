package middlewares

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireActiveAccount(t *testing.T) {
	active := ""
	app := fiber.New()
	app.Use(RequireActiveAccount(func() (string, bool) { return active, active != "" }))
	app.Get("/who", func(c *fiber.Ctx) error {
		return c.SendString(AccountID(c))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/who", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	active = "acc-1"
	resp, err = app.Test(httptest.NewRequest("GET", "/who", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "acc-1", string(body))
}
