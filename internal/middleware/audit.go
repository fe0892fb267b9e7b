package middleware

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/pocket-budget/pocket_budget/internal/api"
	"github.com/pocket-budget/pocket_budget/internal/customer"
)

// Audit logs one line per request. The authenticated customer, if any, is
// included so a customer's activity can be traced. Phone numbers and tokens
// are never logged.
func Audit(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		// The error handler has not run yet.
		status := c.Response().StatusCode()
		if err != nil {
			status = api.StatusOf(err)
		}

		attrs := []any{
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", status),
			slog.Duration("duration", time.Since(start)),
		}
		if reqID := RequestIDFrom(c); reqID != "" {
			attrs = append(attrs, slog.String("request_id", reqID))
		}
		if cust, ok := customer.Current(c); ok {
			attrs = append(attrs, slog.String("customer_id", cust.ID))
		}

		switch {
		case err != nil && status >= fiber.StatusInternalServerError:
			logger.Error("request completed", append(attrs, slog.Any("error", err))...)
		case status >= fiber.StatusBadRequest:
			logger.Warn("request completed", attrs...)
		default:
			logger.Info("request completed", attrs...)
		}
		return err
	}
}
