package budgets

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pocket-budget/pocket_budget/internal/apperr"
	"github.com/pocket-budget/pocket_budget/internal/customer"
	"github.com/pocket-budget/pocket_budget/internal/listing"
)

type fixture struct {
	store      Store
	currencies *CurrencyService
	budgets    *BudgetService
	categories *CategoryService
	operations *OperationService
	alice      customer.Customer
	bob        customer.Customer
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	return newStoreFixture(t, NewMemoryStore(),
		customer.Customer{ID: uuid.NewString(), Phone: "15550001111"},
		customer.Customer{ID: uuid.NewString(), Phone: "15550002222"},
	)
}

// newStoreFixture wires the services over store and makes sure the USD and
// EUR currencies exist.
func newStoreFixture(t *testing.T, store Store, alice, bob customer.Customer) fixture {
	t.Helper()
	f := fixture{
		store:      store,
		currencies: NewCurrencyService(store),
		budgets:    NewBudgetService(store, "USD"),
		categories: NewCategoryService(store),
		operations: NewOperationService(store),
		alice:      alice,
		bob:        bob,
	}
	ctx := context.Background()
	_, err := f.currencies.Ensure(ctx, Currency{Name: "US Dollar", ShortName: "USD", Symbol: "$"})
	require.NoError(t, err)
	_, err = f.currencies.Ensure(ctx, Currency{Name: "Euro", ShortName: "EUR", Symbol: "€"})
	require.NoError(t, err)
	return f
}

func amount(t *testing.T, raw string) *decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(raw)
	require.NoError(t, err)
	return &d
}

func (f fixture) budget(t *testing.T, owner customer.Customer, title string) Budget {
	t.Helper()
	b, err := f.budgets.Create(context.Background(), owner, CreateBudgetInput{Title: title, InitialAmount: amount(t, "100.00")})
	require.NoError(t, err)
	return b
}

func TestBudgetDefaultsToUSD(t *testing.T) {
	f := newFixture(t)

	b, err := f.budgets.Create(context.Background(), f.alice, CreateBudgetInput{Title: "Groceries", InitialAmount: amount(t, "100.00")})
	require.NoError(t, err)
	assert.Equal(t, "USD", b.Currency.ShortName)
	assert.Equal(t, f.alice.ID, b.CustomerID)
	assert.True(t, b.InitialAmount.Equal(decimal.NewFromInt(100)))
}

func TestBudgetCurrencyLookupIgnoresCase(t *testing.T) {
	f := newFixture(t)

	b, err := f.budgets.Create(context.Background(), f.alice, CreateBudgetInput{Title: "Trip", CurrencyShortName: "eur"})
	require.NoError(t, err)
	assert.Equal(t, "EUR", b.Currency.ShortName)
	assert.True(t, b.InitialAmount.IsZero())

	_, err = f.budgets.Create(context.Background(), f.alice, CreateBudgetInput{Title: "Trip", CurrencyShortName: "XXX"})
	assert.ErrorIs(t, err, ErrCurrencyNotFound)
}

func TestBudgetsAreScopedToOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.budget(t, f.alice, "Alice budget")
	theirs := f.budget(t, f.bob, "Bob budget")

	items, err := f.budgets.List(ctx, f.alice, listing.Filters{}, listing.Page{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Alice budget", items[0].Title)

	total, err := f.budgets.Count(ctx, f.alice, listing.Filters{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	_, err = f.budgets.Get(ctx, f.alice, theirs.ID)
	assert.ErrorIs(t, err, ErrBudgetNotFound)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.budgets.Update(ctx, f.alice, theirs.ID, UpdateBudgetInput{Title: strPtr("mine")})
	assert.ErrorIs(t, err, ErrBudgetNotFound)
	assert.ErrorIs(t, f.budgets.Delete(ctx, f.alice, theirs.ID), ErrBudgetNotFound)

	still, err := f.budgets.Get(ctx, f.bob, theirs.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bob budget", still.Title)
}

func TestBudgetPartialUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.budget(t, f.alice, "Rent")

	updated, err := f.budgets.Update(ctx, f.alice, b.ID, UpdateBudgetInput{InitialAmount: amount(t, "250.50")})
	require.NoError(t, err)
	assert.Equal(t, "Rent", updated.Title)
	assert.Equal(t, "250.50", updated.InitialAmount.StringFixed(2))

	updated, err = f.budgets.Update(ctx, f.alice, b.ID, UpdateBudgetInput{Title: strPtr("Housing")})
	require.NoError(t, err)
	assert.Equal(t, "Housing", updated.Title)
	assert.Equal(t, "250.50", updated.InitialAmount.StringFixed(2))
	assert.False(t, updated.UpdatedAt.Before(b.UpdatedAt))
}

func TestBudgetRejectsInvalidInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.budgets.Create(ctx, f.alice, CreateBudgetInput{Title: "   "})
	assert.ErrorIs(t, err, apperr.ErrInvalid)

	_, err = f.budgets.Create(ctx, f.alice, CreateBudgetInput{Title: "Precise", InitialAmount: amount(t, "1.005")})
	assert.ErrorIs(t, err, apperr.ErrInvalid)

	_, err = f.budgets.Create(ctx, f.alice, CreateBudgetInput{Title: "Huge", InitialAmount: amount(t, "1000000000")})
	assert.ErrorIs(t, err, apperr.ErrInvalid)
}

func TestPaginationWindowAndTotal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, c := range []Currency{
		{Name: "Pound", ShortName: "GBP", Symbol: "£"},
		{Name: "Yen", ShortName: "JPY", Symbol: "¥"},
		{Name: "Franc", ShortName: "CHF", Symbol: "Fr"},
	} {
		_, err := f.currencies.Ensure(ctx, c)
		require.NoError(t, err)
	}

	page, err := f.currencies.List(ctx, listing.Filters{}, listing.Page{Offset: 0, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page, 2)
	total, err := f.currencies.Count(ctx, listing.Filters{})
	require.NoError(t, err)
	assert.Equal(t, 5, total)

	seen := 0
	for offset := 0; offset < total; offset += 2 {
		items, err := f.currencies.List(ctx, listing.Filters{}, listing.Page{Offset: offset, Limit: 2})
		require.NoError(t, err)
		seen += len(items)
	}
	assert.Equal(t, total, seen)
}

func TestCurrencySearch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	byName, err := f.currencies.List(ctx, listing.Filters{Search: "dol"}, listing.Page{})
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "USD", byName[0].ShortName)

	byShort, err := f.currencies.List(ctx, listing.Filters{Search: "eur"}, listing.Page{})
	require.NoError(t, err)
	require.Len(t, byShort, 1)
	assert.Equal(t, "EUR", byShort[0].ShortName)

	cur, err := f.currencies.GetByShortName(ctx, "usd")
	require.NoError(t, err)
	assert.Equal(t, "US Dollar", cur.Name)

	_, err = f.currencies.GetByShortName(ctx, "ZZZ")
	assert.ErrorIs(t, err, ErrCurrencyNotFound)
}

func TestCategoriesAreScopedToOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mine, err := f.categories.Create(ctx, f.alice, "Food")
	require.NoError(t, err)
	theirs, err := f.categories.Create(ctx, f.bob, "Food")
	require.NoError(t, err)

	items, err := f.categories.List(ctx, f.alice, listing.Filters{Search: "foo"}, listing.Page{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, mine.ID, items[0].ID)

	_, err = f.categories.Get(ctx, f.alice, theirs.ID)
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	renamed, err := f.categories.Update(ctx, f.alice, mine.ID, strPtr("Groceries"))
	require.NoError(t, err)
	assert.Equal(t, "Groceries", renamed.Name)

	unchanged, err := f.categories.Update(ctx, f.alice, mine.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "Groceries", unchanged.Name)
}

func TestOperationDefaultsAndOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mine := f.budget(t, f.alice, "Mine")
	theirs := f.budget(t, f.bob, "Theirs")

	op, err := f.operations.Create(ctx, f.alice, CreateOperationInput{Title: "Salary", Amount: amount(t, "10"), BudgetID: mine.ID})
	require.NoError(t, err)
	assert.Equal(t, OperationAdd, op.Type)
	assert.Nil(t, op.Category)
	assert.Equal(t, mine.ID, op.Budget.ID)

	_, err = f.operations.Create(ctx, f.alice, CreateOperationInput{Amount: amount(t, "10"), BudgetID: theirs.ID})
	assert.ErrorIs(t, err, ErrBudgetNotFound)

	_, err = f.operations.Get(ctx, f.bob, op.ID)
	assert.ErrorIs(t, err, ErrOperationNotFound)
	assert.ErrorIs(t, f.operations.Delete(ctx, f.bob, op.ID), ErrOperationNotFound)

	_, err = f.operations.Create(ctx, f.alice, CreateOperationInput{Type: "mul", Amount: amount(t, "1"), BudgetID: mine.ID})
	assert.ErrorIs(t, err, apperr.ErrInvalid)

	_, err = f.operations.Create(ctx, f.alice, CreateOperationInput{BudgetID: mine.ID})
	assert.ErrorIs(t, err, apperr.ErrInvalid)
}

func TestOperationRejectsForeignCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mine := f.budget(t, f.alice, "Mine")
	theirs, err := f.categories.Create(ctx, f.bob, "Secret")
	require.NoError(t, err)

	_, err = f.operations.Create(ctx, f.alice, CreateOperationInput{Amount: amount(t, "5"), BudgetID: mine.ID, CategoryID: &theirs.ID})
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestOperationPartialUpdateMovesBudget(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.budget(t, f.alice, "First")
	second := f.budget(t, f.alice, "Second")
	cat, err := f.categories.Create(ctx, f.alice, "Fun")
	require.NoError(t, err)

	op, err := f.operations.Create(ctx, f.alice, CreateOperationInput{Title: "Cinema", Type: "sub", Amount: amount(t, "12.50"), BudgetID: first.ID, CategoryID: &cat.ID})
	require.NoError(t, err)
	assert.Equal(t, OperationSub, op.Type)

	moved, err := f.operations.Update(ctx, f.alice, op.ID, UpdateOperationInput{BudgetID: &second.ID})
	require.NoError(t, err)
	assert.Equal(t, second.ID, moved.Budget.ID)
	assert.Equal(t, "Cinema", moved.Title)
	assert.Equal(t, "12.50", moved.Amount.StringFixed(2))
	require.NotNil(t, moved.Category)
	assert.Equal(t, cat.ID, moved.Category.ID)

	detached, err := f.operations.Update(ctx, f.alice, op.ID, UpdateOperationInput{CategoryID: strPtr("")})
	require.NoError(t, err)
	assert.Nil(t, detached.Category)
}

func TestBudgetDeleteCascadesToOperations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doomed := f.budget(t, f.alice, "Doomed")
	kept := f.budget(t, f.alice, "Kept")

	gone, err := f.operations.Create(ctx, f.alice, CreateOperationInput{Amount: amount(t, "1"), BudgetID: doomed.ID})
	require.NoError(t, err)
	stays, err := f.operations.Create(ctx, f.alice, CreateOperationInput{Amount: amount(t, "2"), BudgetID: kept.ID})
	require.NoError(t, err)

	require.NoError(t, f.budgets.Delete(ctx, f.alice, doomed.ID))

	_, err = f.operations.Get(ctx, f.alice, gone.ID)
	assert.ErrorIs(t, err, ErrOperationNotFound)
	_, err = f.operations.Get(ctx, f.alice, stays.ID)
	assert.NoError(t, err)
	_, err = f.budgets.Get(ctx, f.alice, doomed.ID)
	assert.ErrorIs(t, err, ErrBudgetNotFound)
}

func TestCategoryDeleteDetachesOperations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.budget(t, f.alice, "Daily")
	cat, err := f.categories.Create(ctx, f.alice, "Coffee")
	require.NoError(t, err)
	op, err := f.operations.Create(ctx, f.alice, CreateOperationInput{Amount: amount(t, "3.20"), BudgetID: b.ID, CategoryID: &cat.ID})
	require.NoError(t, err)
	require.NotNil(t, op.Category)

	require.NoError(t, f.categories.Delete(ctx, f.alice, cat.ID))

	after, err := f.operations.Get(ctx, f.alice, op.ID)
	require.NoError(t, err)
	assert.Nil(t, after.Category)
}

func TestOperationSearch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	travel := f.budget(t, f.alice, "Travel")
	home := f.budget(t, f.alice, "Home")
	cat, err := f.categories.Create(ctx, f.alice, "Utilities")
	require.NoError(t, err)

	_, err = f.operations.Create(ctx, f.alice, CreateOperationInput{Title: "Train ticket", Type: "SUB", Amount: amount(t, "40"), BudgetID: travel.ID})
	require.NoError(t, err)
	_, err = f.operations.Create(ctx, f.alice, CreateOperationInput{Title: "Electricity", Type: "SUB", Amount: amount(t, "60"), BudgetID: home.ID, CategoryID: &cat.ID})
	require.NoError(t, err)
	_, err = f.operations.Create(ctx, f.alice, CreateOperationInput{Title: "Refund", Amount: amount(t, "5"), BudgetID: home.ID})
	require.NoError(t, err)

	cases := map[string]int{
		"train":     1,
		"sub":       2,
		"add":       1,
		"travel":    1,
		"utilities": 1,
		"":          3,
	}
	for term, want := range cases {
		items, err := f.operations.List(ctx, f.alice, listing.Filters{Search: term}, listing.Page{})
		require.NoError(t, err)
		assert.Len(t, items, want, "search %q", term)
		total, err := f.operations.Count(ctx, f.alice, listing.Filters{Search: term})
		require.NoError(t, err)
		assert.Equal(t, want, total, "count %q", term)
	}

	inHome, err := f.budgets.ListOperations(ctx, f.alice, home.ID, listing.Filters{Search: "sub"}, listing.Page{})
	require.NoError(t, err)
	require.Len(t, inHome, 1)
	assert.Equal(t, "Electricity", inHome[0].Title)

	_, err = f.budgets.ListOperations(ctx, f.bob, home.ID, listing.Filters{}, listing.Page{})
	assert.ErrorIs(t, err, ErrBudgetNotFound)
}

func strPtr(s string) *string {
	return &s
}
