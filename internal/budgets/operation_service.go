package budgets

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pocket-budget/pocket_budget/internal/apperr"
	"github.com/pocket-budget/pocket_budget/internal/customer"
	"github.com/pocket-budget/pocket_budget/internal/listing"
)

// CreateOperationInput carries a new operation. An empty Type means ADD and
// a nil CategoryID leaves the operation uncategorised.
type CreateOperationInput struct {
	Title      string
	Type       string
	Amount     *decimal.Decimal
	BudgetID   string
	CategoryID *string
}

// UpdateOperationInput is a partial update; nil fields keep their value.
// An empty CategoryID detaches the category.
type UpdateOperationInput struct {
	Title      *string
	Type       *string
	Amount     *decimal.Decimal
	BudgetID   *string
	CategoryID *string
}

// OperationService manages operations. An operation belongs to whoever owns
// its budget, so every lookup goes through the budget.
type OperationService struct {
	operations OperationRepository
	budgets    BudgetRepository
	categories CategoryRepository
}

func NewOperationService(store Store) *OperationService {
	return &OperationService{operations: store, budgets: store, categories: store}
}

func (s *OperationService) List(ctx context.Context, owner customer.Customer, filters listing.Filters, page listing.Page) ([]Operation, error) {
	return s.operations.ListOperations(ctx, owner.ID, filters, page)
}

func (s *OperationService) Count(ctx context.Context, owner customer.Customer, filters listing.Filters) (int, error) {
	return s.operations.CountOperations(ctx, owner.ID, filters)
}

func (s *OperationService) Get(ctx context.Context, owner customer.Customer, id string) (Operation, error) {
	return s.operations.GetOperation(ctx, owner.ID, id)
}

func (s *OperationService) Create(ctx context.Context, owner customer.Customer, in CreateOperationInput) (Operation, error) {
	title, err := checkText("Title", in.Title, false, maxOperationTitleLen)
	if err != nil {
		return Operation{}, err
	}
	opType, err := ParseOperationType(in.Type)
	if err != nil {
		return Operation{}, err
	}
	if in.Amount == nil {
		return Operation{}, apperr.Invalid("Amount is required.")
	}
	if err := checkOperationAmount(*in.Amount); err != nil {
		return Operation{}, err
	}

	budget, err := s.budgets.GetBudget(ctx, owner.ID, strings.TrimSpace(in.BudgetID))
	if err != nil {
		return Operation{}, err
	}
	category, err := s.resolveCategory(ctx, owner, in.CategoryID)
	if err != nil {
		return Operation{}, err
	}

	ts := now()
	return s.operations.CreateOperation(ctx, owner.ID, operationRecord(Operation{
		ID:        uuid.NewString(),
		Title:     title,
		Type:      opType,
		Amount:    *in.Amount,
		Budget:    budget,
		Category:  category,
		CreatedAt: ts,
		UpdatedAt: ts,
	}))
}

func (s *OperationService) Update(ctx context.Context, owner customer.Customer, id string, in UpdateOperationInput) (Operation, error) {
	current, err := s.operations.GetOperation(ctx, owner.ID, id)
	if err != nil {
		return Operation{}, err
	}
	if in.Title != nil {
		if current.Title, err = checkText("Title", *in.Title, false, maxOperationTitleLen); err != nil {
			return Operation{}, err
		}
	}
	if in.Type != nil {
		if current.Type, err = ParseOperationType(*in.Type); err != nil {
			return Operation{}, err
		}
	}
	if in.Amount != nil {
		if err := checkOperationAmount(*in.Amount); err != nil {
			return Operation{}, err
		}
		current.Amount = *in.Amount
	}
	if in.BudgetID != nil {
		if current.Budget, err = s.budgets.GetBudget(ctx, owner.ID, strings.TrimSpace(*in.BudgetID)); err != nil {
			return Operation{}, err
		}
	}
	if in.CategoryID != nil {
		if current.Category, err = s.resolveCategory(ctx, owner, in.CategoryID); err != nil {
			return Operation{}, err
		}
	}
	current.UpdatedAt = now()
	return s.operations.UpdateOperation(ctx, owner.ID, operationRecord(current))
}

func (s *OperationService) Delete(ctx context.Context, owner customer.Customer, id string) error {
	return s.operations.DeleteOperation(ctx, owner.ID, id)
}

// resolveCategory returns nil for an absent or empty id and otherwise the
// owned category.
func (s *OperationService) resolveCategory(ctx context.Context, owner customer.Customer, id *string) (*Category, error) {
	if id == nil || strings.TrimSpace(*id) == "" {
		return nil, nil
	}
	category, err := s.categories.GetCategory(ctx, owner.ID, strings.TrimSpace(*id))
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func checkOperationAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return apperr.Invalid("Amount must not be negative.")
	}
	return checkAmount("Amount", amount)
}
