package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/pocket-budget/pocket_budget/internal/apperr"
)

// ErrorHandler renders every error returned by a handler inside the
// envelope. Service errors keep their message; anything else is logged and
// reported as an internal error.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, message := classify(err)
		if status >= http.StatusInternalServerError && logger != nil {
			logger.Error("unhandled error",
				slog.String("method", c.Method()),
				slog.String("path", c.Path()),
				slog.Any("error", err),
			)
		}
		return c.Status(status).JSON(Response{
			Data:   fiber.Map{},
			Meta:   fiber.Map{},
			Errors: []ErrorItem{{Message: message}},
		})
	}
}

func classify(err error) (int, string) {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code, fiberErr.Message
	}

	if msg, ok := apperr.Message(err); ok {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			return http.StatusNotFound, msg
		case errors.Is(err, apperr.ErrInvalid):
			return http.StatusBadRequest, msg
		}
	}

	return http.StatusInternalServerError, "Internal server error."
}

// StatusOf returns the HTTP status ErrorHandler will answer for err.
func StatusOf(err error) int {
	status, _ := classify(err)
	return status
}
