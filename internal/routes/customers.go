package routes

import (
    "github.com/gofiber/fiber/v2"

    "github.com/pocket-budget/pocket_budget/internal/customer"
)

// RegisterCustomerRoutes wires the authenticated profile endpoints.
func RegisterCustomerRoutes(r fiber.Router, h *customer.Handler) {
    r.Get("/customers/profile", h.Profile)
    r.Put("/customers/profile", h.UpdateProfile)
}
