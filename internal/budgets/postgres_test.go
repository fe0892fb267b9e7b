package budgets

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pocket-budget/pocket_budget/internal/customer"
	"github.com/pocket-budget/pocket_budget/internal/listing"
	"github.com/pocket-budget/pocket_budget/internal/testhelpers"
)

// TestPostgresStore runs the ownership and foreign key properties against a
// real database. Every subtest registers its own customers, so they share
// one container.
func TestPostgresStore(t *testing.T) {
	pool := testhelpers.StartPostgres(t)
	store := NewPostgresStore(pool)
	customers := customer.NewPostgresRepository(pool)

	newPair := func(t *testing.T) fixture {
		t.Helper()
		ctx := context.Background()
		alice, err := customers.GetOrCreate(ctx, "1555"+uuid.NewString()[:8], "alice")
		require.NoError(t, err)
		bob, err := customers.GetOrCreate(ctx, "1555"+uuid.NewString()[:8], "bob")
		require.NoError(t, err)
		return newStoreFixture(t, store, alice, bob)
	}

	t.Run("budgets are scoped to owner", func(t *testing.T) {
		f := newPair(t)
		ctx := context.Background()
		mine := f.budget(t, f.alice, "Alice budget")
		theirs := f.budget(t, f.bob, "Bob budget")

		items, err := f.budgets.List(ctx, f.alice, listing.Filters{}, listing.Page{})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, mine.ID, items[0].ID)
		assert.Equal(t, "100.00", items[0].InitialAmount.StringFixed(2))
		assert.Equal(t, "USD", items[0].Currency.ShortName)

		total, err := f.budgets.Count(ctx, f.alice, listing.Filters{})
		require.NoError(t, err)
		assert.Equal(t, 1, total)

		_, err = f.budgets.Get(ctx, f.alice, theirs.ID)
		assert.ErrorIs(t, err, ErrBudgetNotFound)
		_, err = f.budgets.Update(ctx, f.alice, theirs.ID, UpdateBudgetInput{Title: strPtr("mine")})
		assert.ErrorIs(t, err, ErrBudgetNotFound)
		assert.ErrorIs(t, store.DeleteBudget(ctx, f.alice.ID, theirs.ID), ErrBudgetNotFound)

		still, err := f.budgets.Get(ctx, f.bob, theirs.ID)
		require.NoError(t, err)
		assert.Equal(t, "Bob budget", still.Title)
	})

	t.Run("malformed ids are not found", func(t *testing.T) {
		f := newPair(t)
		ctx := context.Background()

		_, err := store.GetBudget(ctx, f.alice.ID, "not-a-uuid")
		assert.ErrorIs(t, err, ErrBudgetNotFound)
		_, err = store.GetCategory(ctx, f.alice.ID, "not-a-uuid")
		assert.ErrorIs(t, err, ErrCategoryNotFound)
		_, err = store.GetOperation(ctx, f.alice.ID, "not-a-uuid")
		assert.ErrorIs(t, err, ErrOperationNotFound)
	})

	t.Run("categories are scoped to owner", func(t *testing.T) {
		f := newPair(t)
		ctx := context.Background()
		theirs, err := f.categories.Create(ctx, f.bob, "Secret")
		require.NoError(t, err)

		_, err = f.categories.Get(ctx, f.alice, theirs.ID)
		assert.ErrorIs(t, err, ErrCategoryNotFound)
		assert.ErrorIs(t, store.DeleteCategory(ctx, f.alice.ID, theirs.ID), ErrCategoryNotFound)

		items, err := f.categories.List(ctx, f.alice, listing.Filters{}, listing.Page{})
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("operation insert checks budget and category owner", func(t *testing.T) {
		f := newPair(t)
		ctx := context.Background()
		mine := f.budget(t, f.alice, "Mine")
		theirs := f.budget(t, f.bob, "Theirs")
		theirCategory, err := f.categories.Create(ctx, f.bob, "Secret")
		require.NoError(t, err)

		rec := OperationRecord{
			ID:        uuid.NewString(),
			Type:      OperationAdd,
			Amount:    *amount(t, "1.00"),
			BudgetID:  theirs.ID,
			CreatedAt: now(),
			UpdatedAt: now(),
		}
		_, err = store.CreateOperation(ctx, f.alice.ID, rec)
		assert.ErrorIs(t, err, ErrBudgetNotFound)

		rec.BudgetID = mine.ID
		rec.CategoryID = &theirCategory.ID
		_, err = store.CreateOperation(ctx, f.alice.ID, rec)
		assert.ErrorIs(t, err, ErrBudgetNotFound)

		rec.CategoryID = nil
		op, err := store.CreateOperation(ctx, f.alice.ID, rec)
		require.NoError(t, err)
		assert.Equal(t, mine.ID, op.Budget.ID)
		assert.Nil(t, op.Category)

		_, err = store.GetOperation(ctx, f.bob.ID, op.ID)
		assert.ErrorIs(t, err, ErrOperationNotFound)

		rec.BudgetID = theirs.ID
		_, err = store.UpdateOperation(ctx, f.alice.ID, rec)
		assert.ErrorIs(t, err, ErrOperationNotFound)
		assert.ErrorIs(t, store.DeleteOperation(ctx, f.bob.ID, op.ID), ErrOperationNotFound)
	})

	t.Run("operation update moves budget and detaches category", func(t *testing.T) {
		f := newPair(t)
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
		assert.Equal(t, "12.50", moved.Amount.StringFixed(2))
		require.NotNil(t, moved.Category)
		assert.Equal(t, cat.ID, moved.Category.ID)

		detached, err := f.operations.Update(ctx, f.alice, op.ID, UpdateOperationInput{CategoryID: strPtr("")})
		require.NoError(t, err)
		assert.Nil(t, detached.Category)
	})

	t.Run("budget delete cascades to operations", func(t *testing.T) {
		f := newPair(t)
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

		total, err := f.operations.Count(ctx, f.alice, listing.Filters{})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
	})

	t.Run("category delete sets operations uncategorised", func(t *testing.T) {
		f := newPair(t)
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
		assert.Equal(t, "3.20", after.Amount.StringFixed(2))
	})

	t.Run("budget operations listing and search", func(t *testing.T) {
		f := newPair(t)
		ctx := context.Background()
		travel := f.budget(t, f.alice, "Travel")
		home := f.budget(t, f.alice, "Home")

		_, err := f.operations.Create(ctx, f.alice, CreateOperationInput{Title: "Train ticket", Type: "SUB", Amount: amount(t, "40"), BudgetID: travel.ID})
		require.NoError(t, err)
		_, err = f.operations.Create(ctx, f.alice, CreateOperationInput{Title: "Refund", Amount: amount(t, "5"), BudgetID: home.ID})
		require.NoError(t, err)

		items, err := f.budgets.ListOperations(ctx, f.alice, travel.ID, listing.Filters{}, listing.Page{})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "Train ticket", items[0].Title)

		_, err = f.budgets.ListOperations(ctx, f.bob, travel.ID, listing.Filters{}, listing.Page{})
		assert.ErrorIs(t, err, ErrBudgetNotFound)

		found, err := f.operations.List(ctx, f.alice, listing.Filters{Search: "home"}, listing.Page{})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "Refund", found[0].Title)
	})

	t.Run("currency lookup ignores case", func(t *testing.T) {
		cur, err := store.CurrencyByShortName(context.Background(), "eur")
		require.NoError(t, err)
		assert.Equal(t, "EUR", cur.ShortName)

		_, err = store.CurrencyByShortName(context.Background(), "XXX")
		assert.ErrorIs(t, err, ErrCurrencyNotFound)
	})
}
