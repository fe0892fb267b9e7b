package api

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/pocket-budget/pocket_budget/internal/listing"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Data   any            `json:"data"`
	Meta   map[string]any `json:"meta"`
	Errors []ErrorItem    `json:"errors"`
}

// ErrorItem describes one failure in Response.Errors.
type ErrorItem struct {
	Message string `json:"message"`
}

// Detail wraps a single item.
type Detail[T any] struct {
	Item T `json:"item"`
}

// List wraps one page of items plus the window that produced it.
type List[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// Pagination echoes the requested window and the unpaginated total.
type Pagination struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
	Total  int `json:"total"`
}

// Message is the body of endpoints that only report an outcome.
type Message struct {
	Message string `json:"message"`
}

// NewList maps entities into schemas and attaches pagination.
func NewList[E, T any](entities []E, page listing.Page, total int, convert func(E) T) List[T] {
	items := make([]T, 0, len(entities))
	for _, e := range entities {
		items = append(items, convert(e))
	}
	page = page.Normalize()
	return List[T]{
		Items:      items,
		Pagination: Pagination{Offset: page.Offset, Limit: page.Limit, Total: total},
	}
}

// OK writes data inside the envelope with status 200.
func OK(c *fiber.Ctx, data any) error {
	return Write(c, http.StatusOK, data)
}

// Created writes data inside the envelope with status 201.
func Created(c *fiber.Ctx, data any) error {
	return Write(c, http.StatusCreated, data)
}

// Write writes data inside the envelope with the given status.
func Write(c *fiber.Ctx, status int, data any) error {
	if data == nil {
		data = fiber.Map{}
	}
	return c.Status(status).JSON(Response{Data: data, Meta: fiber.Map{}, Errors: []ErrorItem{}})
}
