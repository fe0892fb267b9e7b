package api

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/pocket-budget/pocket_budget/internal/apperr"
	"github.com/pocket-budget/pocket_budget/internal/listing"
)

// ListQuery reads ?search, ?offset and ?limit.
func ListQuery(c *fiber.Ctx) (listing.Filters, listing.Page, error) {
	filters := listing.Filters{Search: c.Query("search")}

	offset, err := nonNegative(c.Query("offset"), 0)
	if err != nil {
		return filters, listing.Page{}, apperr.Invalid("offset must be a non-negative integer.")
	}
	limit, err := nonNegative(c.Query("limit"), listing.DefaultLimit)
	if err != nil || limit == 0 {
		return filters, listing.Page{}, apperr.Invalid("limit must be a positive integer.")
	}

	return filters, listing.Page{Offset: offset, Limit: limit}.Normalize(), nil
}

func nonNegative(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, strconv.ErrRange
	}
	return n, nil
}

// Body parses the JSON request body, turning decode failures into a 400.
func Body(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperr.Invalid("Malformed request body.")
	}
	return nil
}
