package customer

import (
	"time"

	"github.com/pocket-budget/pocket_budget/internal/apperr"
)

// Customer is an account identified by phone number. Every budget,
// category and operation belongs to exactly one customer.
type Customer struct {
	ID        string
	Phone     string
	Username  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ErrNotFound is returned when no customer matches a phone, id or token.
var ErrNotFound = apperr.NotFound("Customer not found.")
