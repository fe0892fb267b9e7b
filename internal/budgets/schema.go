package budgets

import (
	"time"

	"github.com/shopspring/decimal"
)

type currencySchema struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
	Symbol    string `json:"symbol"`
}

type budgetSchema struct {
	ID                string         `json:"id"`
	Title             string         `json:"title"`
	InitialAmount     string         `json:"initial_amount"`
	RelatedCurrency   currencySchema `json:"related_currency"`
	RelatedCustomerID string         `json:"related_customer_id"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

type categorySchema struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	RelatedCustomerID string    `json:"related_customer_id"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type operationSchema struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	OperationType   string          `json:"operation_type"`
	Amount          string          `json:"amount"`
	RelatedBudget   budgetSchema    `json:"related_budget"`
	RelatedCategory *categorySchema `json:"related_category"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func money(d decimal.Decimal) string {
	return d.StringFixed(amountPlaces)
}

func toCurrencySchema(c Currency) currencySchema {
	return currencySchema{ID: c.ID, Name: c.Name, ShortName: c.ShortName, Symbol: c.Symbol}
}

func toBudgetSchema(b Budget) budgetSchema {
	return budgetSchema{
		ID:                b.ID,
		Title:             b.Title,
		InitialAmount:     money(b.InitialAmount),
		RelatedCurrency:   toCurrencySchema(b.Currency),
		RelatedCustomerID: b.CustomerID,
		CreatedAt:         b.CreatedAt,
		UpdatedAt:         b.UpdatedAt,
	}
}

func toCategorySchema(c Category) categorySchema {
	return categorySchema{
		ID:                c.ID,
		Name:              c.Name,
		RelatedCustomerID: c.CustomerID,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
}

func toOperationSchema(op Operation) operationSchema {
	out := operationSchema{
		ID:            op.ID,
		Title:         op.Title,
		OperationType: string(op.Type),
		Amount:        money(op.Amount),
		RelatedBudget: toBudgetSchema(op.Budget),
		CreatedAt:     op.CreatedAt,
		UpdatedAt:     op.UpdatedAt,
	}
	if op.Category != nil {
		cat := toCategorySchema(*op.Category)
		out.RelatedCategory = &cat
	}
	return out
}

type createBudgetRequest struct {
	Title             string           `json:"title"`
	InitialAmount     *decimal.Decimal `json:"initial_amount"`
	CurrencyShortName string           `json:"related_currency_short_name"`
}

type updateBudgetRequest struct {
	Title         *string          `json:"title"`
	InitialAmount *decimal.Decimal `json:"initial_amount"`
}

type createCategoryRequest struct {
	Name string `json:"name"`
}

type updateCategoryRequest struct {
	Name *string `json:"name"`
}

type createOperationRequest struct {
	Title      string           `json:"title"`
	Type       string           `json:"operation_type"`
	Amount     *decimal.Decimal `json:"amount"`
	BudgetID   string           `json:"related_budget_id"`
	CategoryID *string          `json:"related_category_id"`
}

type updateOperationRequest struct {
	Title      *string          `json:"title"`
	Type       *string          `json:"operation_type"`
	Amount     *decimal.Decimal `json:"amount"`
	BudgetID   *string          `json:"related_budget_id"`
	CategoryID *string          `json:"related_category_id"`
}
