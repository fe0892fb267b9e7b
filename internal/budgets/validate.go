package budgets

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/pocket-budget/pocket_budget/internal/apperr"
)

const (
	maxBudgetTitleLen    = 255
	maxCategoryNameLen   = 255
	maxOperationTitleLen = 124
	amountPlaces         = 2
)

// amountLimit mirrors numeric(11,2).
var amountLimit = decimal.New(1, 9)

func checkAmount(field string, d decimal.Decimal) error {
	if !d.Equal(d.Round(amountPlaces)) {
		return apperr.Invalid(field + " must have at most two decimal places.")
	}
	if d.Abs().GreaterThanOrEqual(amountLimit) {
		return apperr.Invalid(field + " is too large.")
	}
	return nil
}

func checkText(field, value string, required bool, max int) (string, error) {
	value = strings.TrimSpace(value)
	if required && value == "" {
		return "", apperr.Invalid(field + " must not be empty.")
	}
	if utf8.RuneCountInString(value) > max {
		return "", apperr.Invalid(field + " is too long.")
	}
	return value, nil
}
