package budgets

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pocket-budget/pocket_budget/internal/listing"
)

// BudgetRecord is the stored shape of a budget: foreign keys instead of
// nested entities.
type BudgetRecord struct {
	ID            string
	Title         string
	InitialAmount decimal.Decimal
	CurrencyID    string
	CustomerID    string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (r BudgetRecord) toEntity(currency Currency) Budget {
	return Budget{
		ID:            r.ID,
		Title:         r.Title,
		InitialAmount: r.InitialAmount,
		Currency:      currency,
		CustomerID:    r.CustomerID,
		CreatedAt:     r.CreatedAt.UTC(),
		UpdatedAt:     r.UpdatedAt.UTC(),
	}
}

func budgetRecord(b Budget) BudgetRecord {
	return BudgetRecord{
		ID:            b.ID,
		Title:         b.Title,
		InitialAmount: b.InitialAmount,
		CurrencyID:    b.Currency.ID,
		CustomerID:    b.CustomerID,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

// CategoryRecord is the stored shape of a category.
type CategoryRecord struct {
	ID         string
	Name       string
	CustomerID string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (r CategoryRecord) toEntity() Category {
	return Category{
		ID:         r.ID,
		Name:       r.Name,
		CustomerID: r.CustomerID,
		CreatedAt:  r.CreatedAt.UTC(),
		UpdatedAt:  r.UpdatedAt.UTC(),
	}
}

// OperationRecord is the stored shape of an operation. CategoryID is nil
// when the operation is uncategorised.
type OperationRecord struct {
	ID         string
	Title      string
	Type       OperationType
	Amount     decimal.Decimal
	BudgetID   string
	CategoryID *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func operationRecord(op Operation) OperationRecord {
	rec := OperationRecord{
		ID:        op.ID,
		Title:     op.Title,
		Type:      op.Type,
		Amount:    op.Amount,
		BudgetID:  op.Budget.ID,
		CreatedAt: op.CreatedAt,
		UpdatedAt: op.UpdatedAt,
	}
	if op.Category != nil {
		id := op.Category.ID
		rec.CategoryID = &id
	}
	return rec
}

// CurrencyRepository reads the global currency table.
type CurrencyRepository interface {
	ListCurrencies(ctx context.Context, filters listing.Filters, page listing.Page) ([]Currency, error)
	CountCurrencies(ctx context.Context, filters listing.Filters) (int, error)
	CurrencyByShortName(ctx context.Context, shortName string) (Currency, error)
	CreateCurrency(ctx context.Context, currency Currency) (Currency, error)
}

// BudgetRepository stores budgets. Every method is scoped by the owning
// customer; a budget of another customer behaves as if it did not exist.
type BudgetRepository interface {
	ListBudgets(ctx context.Context, customerID string, filters listing.Filters, page listing.Page) ([]Budget, error)
	CountBudgets(ctx context.Context, customerID string, filters listing.Filters) (int, error)
	GetBudget(ctx context.Context, customerID, id string) (Budget, error)
	CreateBudget(ctx context.Context, rec BudgetRecord) (Budget, error)
	UpdateBudget(ctx context.Context, rec BudgetRecord) (Budget, error)
	// DeleteBudget removes the budget together with its operations.
	DeleteBudget(ctx context.Context, customerID, id string) error
}

// CategoryRepository stores categories, scoped like BudgetRepository.
type CategoryRepository interface {
	ListCategories(ctx context.Context, customerID string, filters listing.Filters, page listing.Page) ([]Category, error)
	CountCategories(ctx context.Context, customerID string, filters listing.Filters) (int, error)
	GetCategory(ctx context.Context, customerID, id string) (Category, error)
	CreateCategory(ctx context.Context, rec CategoryRecord) (Category, error)
	UpdateCategory(ctx context.Context, rec CategoryRecord) (Category, error)
	// DeleteCategory removes the category and detaches it from operations.
	DeleteCategory(ctx context.Context, customerID, id string) error
}

// OperationRepository stores operations. Ownership is checked through the
// operation's budget.
type OperationRepository interface {
	ListOperations(ctx context.Context, customerID string, filters listing.Filters, page listing.Page) ([]Operation, error)
	CountOperations(ctx context.Context, customerID string, filters listing.Filters) (int, error)
	ListBudgetOperations(ctx context.Context, customerID, budgetID string, filters listing.Filters, page listing.Page) ([]Operation, error)
	CountBudgetOperations(ctx context.Context, customerID, budgetID string, filters listing.Filters) (int, error)
	GetOperation(ctx context.Context, customerID, id string) (Operation, error)
	CreateOperation(ctx context.Context, customerID string, rec OperationRecord) (Operation, error)
	UpdateOperation(ctx context.Context, customerID string, rec OperationRecord) (Operation, error)
	DeleteOperation(ctx context.Context, customerID, id string) error
}

// Store is the full persistence surface of the package.
type Store interface {
	CurrencyRepository
	BudgetRepository
	CategoryRepository
	OperationRepository
}
