package middleware

import (
    "context"
    "errors"
    "net/http"
    "strings"

    "github.com/gofiber/fiber/v2"

    "github.com/pocket-budget/pocket_budget/internal/apperr"
    "github.com/pocket-budget/pocket_budget/internal/customer"
)

// Authenticator resolves the customer holding an opaque token.
type Authenticator interface {
    Authenticate(ctx context.Context, token string) (customer.Customer, error)
}

// BearerAuth requires an "Authorization: Bearer <token>" header naming the
// current token of a customer, and attaches that customer to the request.
func BearerAuth(auth Authenticator) fiber.Handler {
    return func(c *fiber.Ctx) error {
        authz := c.Get(fiber.HeaderAuthorization)
        if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
            return fiber.NewError(http.StatusUnauthorized, "Authentication credentials were not provided.")
        }
        token := strings.TrimSpace(authz[len("Bearer "):])
        cust, err := auth.Authenticate(c.UserContext(), token)
        if errors.Is(err, apperr.ErrNotFound) {
            return fiber.NewError(http.StatusUnauthorized, "Invalid token.")
        }
        if err != nil {
            return err
        }
        customer.SetCurrent(c, cust)
        return c.Next()
    }
}
