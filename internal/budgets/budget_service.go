package budgets

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pocket-budget/pocket_budget/internal/customer"
	"github.com/pocket-budget/pocket_budget/internal/listing"
)

// CreateBudgetInput carries a new budget. A nil InitialAmount means zero and
// an empty CurrencyShortName means the service default.
type CreateBudgetInput struct {
	Title             string
	InitialAmount     *decimal.Decimal
	CurrencyShortName string
}

// UpdateBudgetInput is a partial update; nil fields keep their value.
type UpdateBudgetInput struct {
	Title         *string
	InitialAmount *decimal.Decimal
}

// BudgetService manages the budgets of one customer at a time.
type BudgetService struct {
	budgets         BudgetRepository
	currencies      CurrencyRepository
	operations      OperationRepository
	defaultCurrency string
}

// NewBudgetService builds a budget service. Budgets created without a
// currency get defaultCurrency.
func NewBudgetService(store Store, defaultCurrency string) *BudgetService {
	if defaultCurrency == "" {
		defaultCurrency = "USD"
	}
	return &BudgetService{
		budgets:         store,
		currencies:      store,
		operations:      store,
		defaultCurrency: defaultCurrency,
	}
}

func (s *BudgetService) List(ctx context.Context, owner customer.Customer, filters listing.Filters, page listing.Page) ([]Budget, error) {
	return s.budgets.ListBudgets(ctx, owner.ID, filters, page)
}

func (s *BudgetService) Count(ctx context.Context, owner customer.Customer, filters listing.Filters) (int, error) {
	return s.budgets.CountBudgets(ctx, owner.ID, filters)
}

// Get returns the budget if owner owns it, ErrBudgetNotFound otherwise.
func (s *BudgetService) Get(ctx context.Context, owner customer.Customer, id string) (Budget, error) {
	return s.budgets.GetBudget(ctx, owner.ID, id)
}

func (s *BudgetService) Create(ctx context.Context, owner customer.Customer, in CreateBudgetInput) (Budget, error) {
	title, err := checkText("Title", in.Title, true, maxBudgetTitleLen)
	if err != nil {
		return Budget{}, err
	}
	amount := decimal.Zero
	if in.InitialAmount != nil {
		amount = *in.InitialAmount
	}
	if err := checkAmount("Initial amount", amount); err != nil {
		return Budget{}, err
	}

	shortName := strings.TrimSpace(in.CurrencyShortName)
	if shortName == "" {
		shortName = s.defaultCurrency
	}
	currency, err := s.currencies.CurrencyByShortName(ctx, shortName)
	if err != nil {
		return Budget{}, err
	}

	ts := now()
	return s.budgets.CreateBudget(ctx, BudgetRecord{
		ID:            uuid.NewString(),
		Title:         title,
		InitialAmount: amount,
		CurrencyID:    currency.ID,
		CustomerID:    owner.ID,
		CreatedAt:     ts,
		UpdatedAt:     ts,
	})
}

func (s *BudgetService) Update(ctx context.Context, owner customer.Customer, id string, in UpdateBudgetInput) (Budget, error) {
	current, err := s.budgets.GetBudget(ctx, owner.ID, id)
	if err != nil {
		return Budget{}, err
	}
	if in.Title != nil {
		if current.Title, err = checkText("Title", *in.Title, true, maxBudgetTitleLen); err != nil {
			return Budget{}, err
		}
	}
	if in.InitialAmount != nil {
		if err := checkAmount("Initial amount", *in.InitialAmount); err != nil {
			return Budget{}, err
		}
		current.InitialAmount = *in.InitialAmount
	}
	current.UpdatedAt = now()
	return s.budgets.UpdateBudget(ctx, budgetRecord(current))
}

// Delete removes the budget and every operation recorded against it.
func (s *BudgetService) Delete(ctx context.Context, owner customer.Customer, id string) error {
	return s.budgets.DeleteBudget(ctx, owner.ID, id)
}

// ListOperations pages through the operations of one owned budget.
func (s *BudgetService) ListOperations(ctx context.Context, owner customer.Customer, id string, filters listing.Filters, page listing.Page) ([]Operation, error) {
	if _, err := s.budgets.GetBudget(ctx, owner.ID, id); err != nil {
		return nil, err
	}
	return s.operations.ListBudgetOperations(ctx, owner.ID, id, filters, page)
}

func (s *BudgetService) CountOperations(ctx context.Context, owner customer.Customer, id string, filters listing.Filters) (int, error) {
	if _, err := s.budgets.GetBudget(ctx, owner.ID, id); err != nil {
		return 0, err
	}
	return s.operations.CountBudgetOperations(ctx, owner.ID, id, filters)
}
