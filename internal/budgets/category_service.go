package budgets

import (
	"context"

	"github.com/google/uuid"

	"github.com/pocket-budget/pocket_budget/internal/customer"
	"github.com/pocket-budget/pocket_budget/internal/listing"
)

// CategoryService manages the categories of one customer at a time.
type CategoryService struct {
	repo CategoryRepository
}

func NewCategoryService(repo CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

func (s *CategoryService) List(ctx context.Context, owner customer.Customer, filters listing.Filters, page listing.Page) ([]Category, error) {
	return s.repo.ListCategories(ctx, owner.ID, filters, page)
}

func (s *CategoryService) Count(ctx context.Context, owner customer.Customer, filters listing.Filters) (int, error) {
	return s.repo.CountCategories(ctx, owner.ID, filters)
}

func (s *CategoryService) Get(ctx context.Context, owner customer.Customer, id string) (Category, error) {
	return s.repo.GetCategory(ctx, owner.ID, id)
}

func (s *CategoryService) Create(ctx context.Context, owner customer.Customer, name string) (Category, error) {
	name, err := checkText("Name", name, true, maxCategoryNameLen)
	if err != nil {
		return Category{}, err
	}
	ts := now()
	return s.repo.CreateCategory(ctx, CategoryRecord{
		ID:         uuid.NewString(),
		Name:       name,
		CustomerID: owner.ID,
		CreatedAt:  ts,
		UpdatedAt:  ts,
	})
}

// Update renames the category. A nil name leaves it unchanged.
func (s *CategoryService) Update(ctx context.Context, owner customer.Customer, id string, name *string) (Category, error) {
	current, err := s.repo.GetCategory(ctx, owner.ID, id)
	if err != nil {
		return Category{}, err
	}
	if name == nil {
		return current, nil
	}
	if current.Name, err = checkText("Name", *name, true, maxCategoryNameLen); err != nil {
		return Category{}, err
	}
	return s.repo.UpdateCategory(ctx, CategoryRecord{
		ID:         current.ID,
		Name:       current.Name,
		CustomerID: current.CustomerID,
		CreatedAt:  current.CreatedAt,
		UpdatedAt:  now(),
	})
}

// Delete removes the category. Its operations stay, uncategorised.
func (s *CategoryService) Delete(ctx context.Context, owner customer.Customer, id string) error {
	return s.repo.DeleteCategory(ctx, owner.ID, id)
}
