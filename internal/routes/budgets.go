package routes

import (
    "github.com/gofiber/fiber/v2"

    "github.com/pocket-budget/pocket_budget/internal/budgets"
)

// RegisterBudgetRoutes wires currencies, budgets, categories and operations.
func RegisterBudgetRoutes(r fiber.Router, h *budgets.Handler) {
    r.Get("/currencies", h.ListCurrencies)
    r.Get("/currencies/:shortName", h.GetCurrency)

    b := r.Group("/budgets")
    b.Get("/", h.ListBudgets)
    b.Post("/", h.CreateBudget)
    b.Get("/:id", h.GetBudget)
    b.Put("/:id", h.UpdateBudget)
    b.Delete("/:id", h.DeleteBudget)
    b.Get("/:id/operations", h.ListBudgetOperations)

    c := r.Group("/categories")
    c.Get("/", h.ListCategories)
    c.Post("/", h.CreateCategory)
    c.Get("/:id", h.GetCategory)
    c.Put("/:id", h.UpdateCategory)
    c.Delete("/:id", h.DeleteCategory)

    o := r.Group("/operations")
    o.Get("/", h.ListOperations)
    o.Post("/", h.CreateOperation)
    o.Get("/:id", h.GetOperation)
    o.Put("/:id", h.UpdateOperation)
    o.Delete("/:id", h.DeleteOperation)
}
