package budgets

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pocket-budget/pocket_budget/internal/apperr"
)

// Currency is global reference data; it is not owned by any customer.
type Currency struct {
	ID        string
	Name      string
	ShortName string
	Symbol    string
}

// Budget is a labelled container with an initial amount. It does not track
// a running balance.
type Budget struct {
	ID            string
	Title         string
	InitialAmount decimal.Decimal
	Currency      Currency
	CustomerID    string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Category groups operations of one customer.
type Category struct {
	ID         string
	Name       string
	CustomerID string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// OperationType says whether an operation adds to or subtracts from a budget.
type OperationType string

const (
	OperationAdd OperationType = "ADD"
	OperationSub OperationType = "SUB"
)

// ParseOperationType accepts ADD or SUB in any case. An empty value means ADD.
func ParseOperationType(raw string) (OperationType, error) {
	switch OperationType(strings.ToUpper(strings.TrimSpace(raw))) {
	case "", OperationAdd:
		return OperationAdd, nil
	case OperationSub:
		return OperationSub, nil
	default:
		return "", apperr.Invalid("Operation type must be ADD or SUB.")
	}
}

// Operation records an add or subtract event against a budget. It is owned
// by whoever owns its budget.
type Operation struct {
	ID        string
	Title     string
	Type      OperationType
	Amount    decimal.Decimal
	Budget    Budget
	Category  *Category
	CreatedAt time.Time
	UpdatedAt time.Time
}

var (
	ErrCurrencyNotFound  = apperr.NotFound("Currency not found.")
	ErrBudgetNotFound    = apperr.NotFound("Budget not found.")
	ErrCategoryNotFound  = apperr.NotFound("Category not found.")
	ErrOperationNotFound = apperr.NotFound("Operation not found.")
)

func now() time.Time {
	return time.Now().UTC()
}
