package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	models "student-progress-dashboard/app/models/postgresql"
	"student-progress-dashboard/utils"
)

func setupAuthApp(roles ...string) *fiber.App {
	app := fiber.New()
	app.Get("/private", AuthRequired(), RoleAllowed(roles...), func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("role_name").(string))
	})
	return app
}

func bearer(t *testing.T, role string) string {
	t.Helper()
	tok, err := utils.GenerateToken(&models.User{ID: uuid.New(), Role: role})
	require.NoError(t, err)
	return "Bearer " + tok
}

func TestAuthRequired(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	t.Run("Success: admin passes", func(t *testing.T) {
		app := setupAuthApp("admin")
		req := httptest.NewRequest("GET", "/private", nil)
		req.Header.Set("Authorization", bearer(t, "admin"))
		resp, _ := app.Test(req)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("Error: missing header", func(t *testing.T) {
		app := setupAuthApp("admin")
		resp, _ := app.Test(httptest.NewRequest("GET", "/private", nil))
		assert.Equal(t, 401, resp.StatusCode)
	})

	t.Run("Error: bad token", func(t *testing.T) {
		app := setupAuthApp("admin")
		req := httptest.NewRequest("GET", "/private", nil)
		req.Header.Set("Authorization", "Bearer nope")
		resp, _ := app.Test(req)
		assert.Equal(t, 401, resp.StatusCode)
	})

	t.Run("Error: wrong role", func(t *testing.T) {
		app := setupAuthApp("admin")
		req := httptest.NewRequest("GET", "/private", nil)
		req.Header.Set("Authorization", bearer(t, "viewer"))
		resp, _ := app.Test(req)
		assert.Equal(t, 403, resp.StatusCode)
	})
}
