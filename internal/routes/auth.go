package routes

import (
    "github.com/gofiber/fiber/v2"

    "github.com/pocket-budget/pocket_budget/internal/auth"
)

// RegisterAuthRoutes wires the phone verification endpoints.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, rateLimiter fiber.Handler) {
    group := r.Group("/customers")
    if rateLimiter != nil {
        group.Post("/auth", rateLimiter, h.Authorize)
    } else {
        group.Post("/auth", h.Authorize)
    }
    group.Post("/confirm", h.Confirm)
}
