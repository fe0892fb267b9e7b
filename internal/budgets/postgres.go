package budgets

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/pocket-budget/pocket_budget/internal/listing"
)

// PostgresStore implements Store on PostgreSQL. Cascades on budget and
// category deletion are enforced by foreign keys (see db/schema.sql).
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore builds a Postgres-backed budget store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// parseIDs parses every id, reporting false when any is malformed. A
// malformed id cannot name a stored row, so callers answer not found.
func parseIDs(ids ...string) ([]uuid.UUID, bool) {
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, false
		}
		out = append(out, parsed)
	}
	return out, true
}

func searchArgs(filters listing.Filters) (string, string) {
	term := filters.Term()
	return term, listing.LikePattern(term)
}

func notFoundOr(err error, notFound error, op string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func parseAmount(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse stored amount %q: %w", raw, err)
	}
	return d, nil
}

// ----- currencies -----

const (
	currencyColumns = `id, name, short_name, symbol`
	currencyWhere   = `WHERE ($1 = '' OR name ILIKE $2 OR lower(short_name) = lower($1))`
)

func scanCurrency(row pgx.Row) (Currency, error) {
	var (
		id  uuid.UUID
		cur Currency
	)
	if err := row.Scan(&id, &cur.Name, &cur.ShortName, &cur.Symbol); err != nil {
		return Currency{}, err
	}
	cur.ID = id.String()
	return cur, nil
}

func (s *PostgresStore) ListCurrencies(ctx context.Context, filters listing.Filters, page listing.Page) ([]Currency, error) {
	term, pattern := searchArgs(filters)
	page = page.Normalize()
	rows, err := s.db.Query(ctx, `SELECT `+currencyColumns+` FROM currencies `+currencyWhere+`
        ORDER BY short_name, id LIMIT $3 OFFSET $4`, term, pattern, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("list currencies: %w", err)
	}
	return pgx.CollectRows(rows, func(r pgx.CollectableRow) (Currency, error) { return scanCurrency(r) })
}

func (s *PostgresStore) CountCurrencies(ctx context.Context, filters listing.Filters) (int, error) {
	term, pattern := searchArgs(filters)
	var n int
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM currencies `+currencyWhere, term, pattern).Scan(&n); err != nil {
		return 0, fmt.Errorf("count currencies: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) CurrencyByShortName(ctx context.Context, shortName string) (Currency, error) {
	cur, err := scanCurrency(s.db.QueryRow(ctx,
		`SELECT `+currencyColumns+` FROM currencies WHERE lower(short_name) = lower($1)`, shortName))
	if err != nil {
		return Currency{}, notFoundOr(err, ErrCurrencyNotFound, "get currency")
	}
	return cur, nil
}

func (s *PostgresStore) CreateCurrency(ctx context.Context, cur Currency) (Currency, error) {
	id := uuid.New()
	_, err := s.db.Exec(ctx, `INSERT INTO currencies (id, name, short_name, symbol) VALUES ($1, $2, $3, $4)`,
		id, cur.Name, cur.ShortName, cur.Symbol)
	if err != nil {
		return Currency{}, fmt.Errorf("create currency: %w", err)
	}
	cur.ID = id.String()
	return cur, nil
}

// ----- budgets -----

const (
	budgetSelect = `SELECT b.id, b.title, b.initial_amount::text, b.customer_id, b.created_at, b.updated_at,
            cur.id, cur.name, cur.short_name, cur.symbol
        FROM budgets b
        JOIN currencies cur ON cur.id = b.currency_id`
	budgetWhere = ` WHERE b.customer_id = $1 AND ($2 = '' OR b.title ILIKE $3)`
)

func scanBudget(row pgx.Row) (Budget, error) {
	var (
		rec                   BudgetRecord
		id, customerID, curID uuid.UUID
		amount                string
		cur                   Currency
	)
	if err := row.Scan(&id, &rec.Title, &amount, &customerID, &rec.CreatedAt, &rec.UpdatedAt,
		&curID, &cur.Name, &cur.ShortName, &cur.Symbol); err != nil {
		return Budget{}, err
	}
	var err error
	if rec.InitialAmount, err = parseAmount(amount); err != nil {
		return Budget{}, err
	}
	rec.ID = id.String()
	rec.CustomerID = customerID.String()
	cur.ID = curID.String()
	rec.CurrencyID = cur.ID
	return rec.toEntity(cur), nil
}

func (s *PostgresStore) ListBudgets(ctx context.Context, customerID string, filters listing.Filters, page listing.Page) ([]Budget, error) {
	ids, ok := parseIDs(customerID)
	if !ok {
		return []Budget{}, nil
	}
	term, pattern := searchArgs(filters)
	page = page.Normalize()
	rows, err := s.db.Query(ctx, budgetSelect+budgetWhere+` ORDER BY b.created_at, b.id LIMIT $4 OFFSET $5`,
		ids[0], term, pattern, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	return pgx.CollectRows(rows, func(r pgx.CollectableRow) (Budget, error) { return scanBudget(r) })
}

func (s *PostgresStore) CountBudgets(ctx context.Context, customerID string, filters listing.Filters) (int, error) {
	ids, ok := parseIDs(customerID)
	if !ok {
		return 0, nil
	}
	term, pattern := searchArgs(filters)
	var n int
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM budgets b`+budgetWhere, ids[0], term, pattern).Scan(&n); err != nil {
		return 0, fmt.Errorf("count budgets: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) GetBudget(ctx context.Context, customerID, id string) (Budget, error) {
	ids, ok := parseIDs(customerID, id)
	if !ok {
		return Budget{}, ErrBudgetNotFound
	}
	b, err := scanBudget(s.db.QueryRow(ctx, budgetSelect+` WHERE b.customer_id = $1 AND b.id = $2`, ids[0], ids[1]))
	if err != nil {
		return Budget{}, notFoundOr(err, ErrBudgetNotFound, "get budget")
	}
	return b, nil
}

func (s *PostgresStore) CreateBudget(ctx context.Context, rec BudgetRecord) (Budget, error) {
	ids, ok := parseIDs(rec.ID, rec.CurrencyID, rec.CustomerID)
	if !ok {
		return Budget{}, fmt.Errorf("create budget: malformed id")
	}
	_, err := s.db.Exec(ctx, `INSERT INTO budgets (id, title, initial_amount, currency_id, customer_id, created_at, updated_at)
        VALUES ($1, $2, $3::text::numeric, $4, $5, $6, $7)`,
		ids[0], rec.Title, rec.InitialAmount.String(), ids[1], ids[2], rec.CreatedAt.UTC(), rec.UpdatedAt.UTC())
	if err != nil {
		return Budget{}, fmt.Errorf("create budget: %w", err)
	}
	return s.GetBudget(ctx, rec.CustomerID, rec.ID)
}

func (s *PostgresStore) UpdateBudget(ctx context.Context, rec BudgetRecord) (Budget, error) {
	ids, ok := parseIDs(rec.ID, rec.CustomerID)
	if !ok {
		return Budget{}, ErrBudgetNotFound
	}
	cmd, err := s.db.Exec(ctx, `UPDATE budgets SET title = $1, initial_amount = $2::text::numeric, updated_at = $3
        WHERE id = $4 AND customer_id = $5`,
		rec.Title, rec.InitialAmount.String(), rec.UpdatedAt.UTC(), ids[0], ids[1])
	if err != nil {
		return Budget{}, fmt.Errorf("update budget: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return Budget{}, ErrBudgetNotFound
	}
	return s.GetBudget(ctx, rec.CustomerID, rec.ID)
}

func (s *PostgresStore) DeleteBudget(ctx context.Context, customerID, id string) error {
	ids, ok := parseIDs(customerID, id)
	if !ok {
		return ErrBudgetNotFound
	}
	cmd, err := s.db.Exec(ctx, `DELETE FROM budgets WHERE customer_id = $1 AND id = $2`, ids[0], ids[1])
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrBudgetNotFound
	}
	return nil
}

// ----- categories -----

const (
	categoryColumns = `id, name, customer_id, created_at, updated_at`
	categoryWhere   = ` WHERE customer_id = $1 AND ($2 = '' OR name ILIKE $3)`
)

func scanCategory(row pgx.Row) (Category, error) {
	var (
		rec            CategoryRecord
		id, customerID uuid.UUID
	)
	if err := row.Scan(&id, &rec.Name, &customerID, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return Category{}, err
	}
	rec.ID = id.String()
	rec.CustomerID = customerID.String()
	return rec.toEntity(), nil
}

func (s *PostgresStore) ListCategories(ctx context.Context, customerID string, filters listing.Filters, page listing.Page) ([]Category, error) {
	ids, ok := parseIDs(customerID)
	if !ok {
		return []Category{}, nil
	}
	term, pattern := searchArgs(filters)
	page = page.Normalize()
	rows, err := s.db.Query(ctx, `SELECT `+categoryColumns+` FROM categories`+categoryWhere+`
        ORDER BY created_at, id LIMIT $4 OFFSET $5`, ids[0], term, pattern, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return pgx.CollectRows(rows, func(r pgx.CollectableRow) (Category, error) { return scanCategory(r) })
}

func (s *PostgresStore) CountCategories(ctx context.Context, customerID string, filters listing.Filters) (int, error) {
	ids, ok := parseIDs(customerID)
	if !ok {
		return 0, nil
	}
	term, pattern := searchArgs(filters)
	var n int
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM categories`+categoryWhere, ids[0], term, pattern).Scan(&n); err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) GetCategory(ctx context.Context, customerID, id string) (Category, error) {
	ids, ok := parseIDs(customerID, id)
	if !ok {
		return Category{}, ErrCategoryNotFound
	}
	c, err := scanCategory(s.db.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories
        WHERE customer_id = $1 AND id = $2`, ids[0], ids[1]))
	if err != nil {
		return Category{}, notFoundOr(err, ErrCategoryNotFound, "get category")
	}
	return c, nil
}

func (s *PostgresStore) CreateCategory(ctx context.Context, rec CategoryRecord) (Category, error) {
	ids, ok := parseIDs(rec.ID, rec.CustomerID)
	if !ok {
		return Category{}, fmt.Errorf("create category: malformed id")
	}
	c, err := scanCategory(s.db.QueryRow(ctx, `INSERT INTO categories (id, name, customer_id, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5) RETURNING `+categoryColumns,
		ids[0], rec.Name, ids[1], rec.CreatedAt.UTC(), rec.UpdatedAt.UTC()))
	if err != nil {
		return Category{}, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) UpdateCategory(ctx context.Context, rec CategoryRecord) (Category, error) {
	ids, ok := parseIDs(rec.ID, rec.CustomerID)
	if !ok {
		return Category{}, ErrCategoryNotFound
	}
	c, err := scanCategory(s.db.QueryRow(ctx, `UPDATE categories SET name = $1, updated_at = $2
        WHERE id = $3 AND customer_id = $4 RETURNING `+categoryColumns,
		rec.Name, rec.UpdatedAt.UTC(), ids[0], ids[1]))
	if err != nil {
		return Category{}, notFoundOr(err, ErrCategoryNotFound, "update category")
	}
	return c, nil
}

func (s *PostgresStore) DeleteCategory(ctx context.Context, customerID, id string) error {
	ids, ok := parseIDs(customerID, id)
	if !ok {
		return ErrCategoryNotFound
	}
	cmd, err := s.db.Exec(ctx, `DELETE FROM categories WHERE customer_id = $1 AND id = $2`, ids[0], ids[1])
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// ----- operations -----

const (
	operationFrom = ` FROM operations o
        JOIN budgets b ON b.id = o.budget_id
        JOIN currencies cur ON cur.id = b.currency_id
        LEFT JOIN categories c ON c.id = o.category_id`
	operationSelect = `SELECT o.id, o.title, o.operation_type, o.amount::text, o.created_at, o.updated_at,
            b.id, b.title, b.initial_amount::text, b.customer_id, b.created_at, b.updated_at,
            cur.id, cur.name, cur.short_name, cur.symbol,
            c.id, c.name, c.created_at, c.updated_at` + operationFrom
	operationWhere = ` WHERE b.customer_id = $1 AND ($2 = '' OR o.title ILIKE $3 OR upper(o.operation_type) = upper($2)
            OR b.title ILIKE $3 OR c.name ILIKE $3)`
	budgetOperationWhere = ` WHERE b.customer_id = $1 AND o.budget_id = $4
            AND ($2 = '' OR o.title ILIKE $3 OR upper(o.operation_type) = upper($2))`
	operationOrder = ` ORDER BY o.created_at, o.id`
)

func scanOperation(row pgx.Row) (Operation, error) {
	var (
		op                           Operation
		opID, budgetID, customerID   uuid.UUID
		curID                        uuid.UUID
		opType, amount, budgetAmount string
		budget                       BudgetRecord
		cur                          Currency
		catID                        pgtype.UUID
		catName                      pgtype.Text
		catCreated, catUpdated       pgtype.Timestamptz
	)
	if err := row.Scan(&opID, &op.Title, &opType, &amount, &op.CreatedAt, &op.UpdatedAt,
		&budgetID, &budget.Title, &budgetAmount, &customerID, &budget.CreatedAt, &budget.UpdatedAt,
		&curID, &cur.Name, &cur.ShortName, &cur.Symbol,
		&catID, &catName, &catCreated, &catUpdated); err != nil {
		return Operation{}, err
	}

	var err error
	if op.Amount, err = parseAmount(amount); err != nil {
		return Operation{}, err
	}
	if budget.InitialAmount, err = parseAmount(budgetAmount); err != nil {
		return Operation{}, err
	}
	op.ID = opID.String()
	op.Type = OperationType(opType)
	op.CreatedAt = op.CreatedAt.UTC()
	op.UpdatedAt = op.UpdatedAt.UTC()
	cur.ID = curID.String()
	budget.ID = budgetID.String()
	budget.CustomerID = customerID.String()
	budget.CurrencyID = cur.ID
	op.Budget = budget.toEntity(cur)

	if catID.Valid {
		cat := CategoryRecord{
			ID:         uuid.UUID(catID.Bytes).String(),
			Name:       catName.String,
			CustomerID: budget.CustomerID,
			CreatedAt:  catCreated.Time,
			UpdatedAt:  catUpdated.Time,
		}.toEntity()
		op.Category = &cat
	}
	return op, nil
}

func collectOperations(rows pgx.Rows) ([]Operation, error) {
	return pgx.CollectRows(rows, func(r pgx.CollectableRow) (Operation, error) { return scanOperation(r) })
}

func (s *PostgresStore) ListOperations(ctx context.Context, customerID string, filters listing.Filters, page listing.Page) ([]Operation, error) {
	ids, ok := parseIDs(customerID)
	if !ok {
		return []Operation{}, nil
	}
	term, pattern := searchArgs(filters)
	page = page.Normalize()
	rows, err := s.db.Query(ctx, operationSelect+operationWhere+operationOrder+` LIMIT $4 OFFSET $5`,
		ids[0], term, pattern, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("list operations: %w", err)
	}
	return collectOperations(rows)
}

func (s *PostgresStore) CountOperations(ctx context.Context, customerID string, filters listing.Filters) (int, error) {
	ids, ok := parseIDs(customerID)
	if !ok {
		return 0, nil
	}
	term, pattern := searchArgs(filters)
	var n int
	if err := s.db.QueryRow(ctx, `SELECT count(*)`+operationFrom+operationWhere, ids[0], term, pattern).Scan(&n); err != nil {
		return 0, fmt.Errorf("count operations: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) ListBudgetOperations(ctx context.Context, customerID, budgetID string, filters listing.Filters, page listing.Page) ([]Operation, error) {
	ids, ok := parseIDs(customerID, budgetID)
	if !ok {
		return []Operation{}, nil
	}
	term, pattern := searchArgs(filters)
	page = page.Normalize()
	rows, err := s.db.Query(ctx, operationSelect+budgetOperationWhere+operationOrder+` LIMIT $5 OFFSET $6`,
		ids[0], term, pattern, ids[1], page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("list budget operations: %w", err)
	}
	return collectOperations(rows)
}

func (s *PostgresStore) CountBudgetOperations(ctx context.Context, customerID, budgetID string, filters listing.Filters) (int, error) {
	ids, ok := parseIDs(customerID, budgetID)
	if !ok {
		return 0, nil
	}
	term, pattern := searchArgs(filters)
	var n int
	if err := s.db.QueryRow(ctx, `SELECT count(*)`+operationFrom+budgetOperationWhere,
		ids[0], term, pattern, ids[1]).Scan(&n); err != nil {
		return 0, fmt.Errorf("count budget operations: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) GetOperation(ctx context.Context, customerID, id string) (Operation, error) {
	ids, ok := parseIDs(customerID, id)
	if !ok {
		return Operation{}, ErrOperationNotFound
	}
	op, err := scanOperation(s.db.QueryRow(ctx, operationSelect+` WHERE b.customer_id = $1 AND o.id = $2`, ids[0], ids[1]))
	if err != nil {
		return Operation{}, notFoundOr(err, ErrOperationNotFound, "get operation")
	}
	return op, nil
}

func categoryParam(id *string) (pgtype.UUID, bool) {
	if id == nil {
		return pgtype.UUID{}, true
	}
	parsed, err := uuid.Parse(*id)
	if err != nil {
		return pgtype.UUID{}, false
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}, true
}

// CreateOperation inserts only if the budget, and the category when given,
// belong to customerID.
func (s *PostgresStore) CreateOperation(ctx context.Context, customerID string, rec OperationRecord) (Operation, error) {
	ids, ok := parseIDs(rec.ID, rec.BudgetID, customerID)
	if !ok {
		return Operation{}, ErrBudgetNotFound
	}
	catID, ok := categoryParam(rec.CategoryID)
	if !ok {
		return Operation{}, ErrCategoryNotFound
	}
	cmd, err := s.db.Exec(ctx, `INSERT INTO operations (id, title, operation_type, amount, budget_id, category_id, created_at, updated_at)
        SELECT $1, $2, $3, $4::text::numeric, b.id, $6, $7, $8
        FROM budgets b
        WHERE b.id = $5 AND b.customer_id = $9
          AND ($6::uuid IS NULL OR EXISTS (SELECT 1 FROM categories c WHERE c.id = $6 AND c.customer_id = $9))`,
		ids[0], rec.Title, string(rec.Type), rec.Amount.String(), ids[1], catID,
		rec.CreatedAt.UTC(), rec.UpdatedAt.UTC(), ids[2])
	if err != nil {
		return Operation{}, fmt.Errorf("create operation: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return Operation{}, ErrBudgetNotFound
	}
	return s.GetOperation(ctx, customerID, rec.ID)
}

// UpdateOperation rewrites the operation if both its current and its target
// budget belong to customerID.
func (s *PostgresStore) UpdateOperation(ctx context.Context, customerID string, rec OperationRecord) (Operation, error) {
	ids, ok := parseIDs(rec.ID, rec.BudgetID, customerID)
	if !ok {
		return Operation{}, ErrOperationNotFound
	}
	catID, ok := categoryParam(rec.CategoryID)
	if !ok {
		return Operation{}, ErrCategoryNotFound
	}
	cmd, err := s.db.Exec(ctx, `UPDATE operations o
        SET title = $1, operation_type = $2, amount = $3::text::numeric, budget_id = $4, category_id = $5, updated_at = $6
        FROM budgets b
        WHERE o.id = $7 AND b.id = o.budget_id AND b.customer_id = $8
          AND EXISTS (SELECT 1 FROM budgets nb WHERE nb.id = $4 AND nb.customer_id = $8)
          AND ($5::uuid IS NULL OR EXISTS (SELECT 1 FROM categories c WHERE c.id = $5 AND c.customer_id = $8))`,
		rec.Title, string(rec.Type), rec.Amount.String(), ids[1], catID, rec.UpdatedAt.UTC(), ids[0], ids[2])
	if err != nil {
		return Operation{}, fmt.Errorf("update operation: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return Operation{}, ErrOperationNotFound
	}
	return s.GetOperation(ctx, customerID, rec.ID)
}

func (s *PostgresStore) DeleteOperation(ctx context.Context, customerID, id string) error {
	ids, ok := parseIDs(customerID, id)
	if !ok {
		return ErrOperationNotFound
	}
	cmd, err := s.db.Exec(ctx, `DELETE FROM operations o USING budgets b
        WHERE o.id = $2 AND b.id = o.budget_id AND b.customer_id = $1`, ids[0], ids[1])
	if err != nil {
		return fmt.Errorf("delete operation: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrOperationNotFound
	}
	return nil
}

var _ Store = (*PostgresStore)(nil)
