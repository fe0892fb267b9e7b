package middleware

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pocket-budget/pocket_budget/internal/api"
	"github.com/pocket-budget/pocket_budget/internal/customer"
	"github.com/pocket-budget/pocket_budget/internal/logging"
)

func setupBearerApp(t *testing.T) (*fiber.App, string) {
	t.Helper()
	ctx := context.Background()
	svc := customer.NewService(customer.NewMemoryRepository(), "user")
	cust, err := svc.GetOrCreate(ctx, "15550001111", "alice")
	require.NoError(t, err)
	token, err := svc.GenerateToken(ctx, cust)
	require.NoError(t, err)

	app := fiber.New(fiber.Config{ErrorHandler: api.ErrorHandler(logging.Discard())})
	app.Use(BearerAuth(svc))
	app.Get("/me", func(c *fiber.Ctx) error {
		current, ok := customer.Current(c)
		if !ok {
			return fiber.ErrUnauthorized
		}
		return c.SendString(current.Username)
	})
	return app, token
}

func getMe(t *testing.T, app *fiber.App, authz string) int {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodGet, "/me", nil)
	if authz != "" {
		req.Header.Set(fiber.HeaderAuthorization, authz)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	resp.Body.Close()
	return resp.StatusCode
}

func TestBearerAuth(t *testing.T) {
	app, token := setupBearerApp(t)

	assert.Equal(t, fiber.StatusOK, getMe(t, app, "Bearer "+token))
	assert.Equal(t, fiber.StatusOK, getMe(t, app, "bearer "+token))
	assert.Equal(t, fiber.StatusUnauthorized, getMe(t, app, ""))
	assert.Equal(t, fiber.StatusUnauthorized, getMe(t, app, "Token "+token))
	assert.Equal(t, fiber.StatusUnauthorized, getMe(t, app, "Bearer not-a-token"))
}
