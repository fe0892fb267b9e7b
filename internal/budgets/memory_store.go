package budgets

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/pocket-budget/pocket_budget/internal/apperr"
	"github.com/pocket-budget/pocket_budget/internal/listing"
)

type memoryBudget struct {
	seq int
	rec BudgetRecord
}

type memoryCategory struct {
	seq int
	rec CategoryRecord
}

type memoryOperation struct {
	seq int
	rec OperationRecord
}

// MemoryStore is the in-memory Store used for development and tests. It
// mirrors the foreign key behaviour of the Postgres schema: deleting a budget
// drops its operations, deleting a category detaches it.
type MemoryStore struct {
	mu         sync.RWMutex
	seq        int
	currencies map[string]Currency
	budgets    map[string]memoryBudget
	categories map[string]memoryCategory
	operations map[string]memoryOperation
}

// NewMemoryStore builds an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		currencies: make(map[string]Currency),
		budgets:    make(map[string]memoryBudget),
		categories: make(map[string]memoryCategory),
		operations: make(map[string]memoryOperation),
	}
}

func (s *MemoryStore) next() int {
	s.seq++
	return s.seq
}

func window[T any](items []T, page listing.Page) []T {
	start, end := page.Window(len(items))
	return append([]T{}, items[start:end]...)
}

// ----- currencies -----

func currencyMatches(cur Currency, term string) bool {
	return term == "" || listing.ContainsFold(cur.Name, term) || strings.EqualFold(cur.ShortName, term)
}

func (s *MemoryStore) filterCurrencies(filters listing.Filters) []Currency {
	term := filters.Term()
	out := make([]Currency, 0, len(s.currencies))
	for _, cur := range s.currencies {
		if currencyMatches(cur, term) {
			out = append(out, cur)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ShortName == out[j].ShortName {
			return out[i].ID < out[j].ID
		}
		return out[i].ShortName < out[j].ShortName
	})
	return out
}

func (s *MemoryStore) ListCurrencies(_ context.Context, filters listing.Filters, page listing.Page) ([]Currency, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return window(s.filterCurrencies(filters), page), nil
}

func (s *MemoryStore) CountCurrencies(_ context.Context, filters listing.Filters) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.filterCurrencies(filters)), nil
}

func (s *MemoryStore) CurrencyByShortName(_ context.Context, shortName string) (Currency, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cur, ok := s.currencies[strings.ToUpper(shortName)]
	if !ok {
		return Currency{}, ErrCurrencyNotFound
	}
	return cur, nil
}

func (s *MemoryStore) CreateCurrency(_ context.Context, cur Currency) (Currency, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToUpper(cur.ShortName)
	if _, exists := s.currencies[key]; exists {
		return Currency{}, apperr.Invalid("Currency already exists.")
	}
	cur.ID = uuid.NewString()
	s.currencies[key] = cur
	return cur, nil
}

func (s *MemoryStore) currencyByID(id string) Currency {
	for _, cur := range s.currencies {
		if cur.ID == id {
			return cur
		}
	}
	return Currency{ID: id}
}

// ----- budgets -----

func (s *MemoryStore) budgetEntity(rec BudgetRecord) Budget {
	return rec.toEntity(s.currencyByID(rec.CurrencyID))
}

func (s *MemoryStore) filterBudgets(customerID string, filters listing.Filters) []memoryBudget {
	term := filters.Term()
	out := make([]memoryBudget, 0)
	for _, b := range s.budgets {
		if b.rec.CustomerID != customerID {
			continue
		}
		if term == "" || listing.ContainsFold(b.rec.Title, term) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

func (s *MemoryStore) ListBudgets(_ context.Context, customerID string, filters listing.Filters, page listing.Page) ([]Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := window(s.filterBudgets(customerID, filters), page)
	out := make([]Budget, 0, len(items))
	for _, b := range items {
		out = append(out, s.budgetEntity(b.rec))
	}
	return out, nil
}

func (s *MemoryStore) CountBudgets(_ context.Context, customerID string, filters listing.Filters) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.filterBudgets(customerID, filters)), nil
}

func (s *MemoryStore) ownedBudget(customerID, id string) (memoryBudget, bool) {
	b, ok := s.budgets[id]
	if !ok || b.rec.CustomerID != customerID {
		return memoryBudget{}, false
	}
	return b, true
}

func (s *MemoryStore) GetBudget(_ context.Context, customerID, id string) (Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.ownedBudget(customerID, id)
	if !ok {
		return Budget{}, ErrBudgetNotFound
	}
	return s.budgetEntity(b.rec), nil
}

func (s *MemoryStore) CreateBudget(_ context.Context, rec BudgetRecord) (Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgets[rec.ID] = memoryBudget{seq: s.next(), rec: rec}
	return s.budgetEntity(rec), nil
}

func (s *MemoryStore) UpdateBudget(_ context.Context, rec BudgetRecord) (Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.ownedBudget(rec.CustomerID, rec.ID)
	if !ok {
		return Budget{}, ErrBudgetNotFound
	}
	b.rec.Title = rec.Title
	b.rec.InitialAmount = rec.InitialAmount
	b.rec.UpdatedAt = rec.UpdatedAt
	s.budgets[rec.ID] = b
	return s.budgetEntity(b.rec), nil
}

func (s *MemoryStore) DeleteBudget(_ context.Context, customerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ownedBudget(customerID, id); !ok {
		return ErrBudgetNotFound
	}
	delete(s.budgets, id)
	for opID, op := range s.operations {
		if op.rec.BudgetID == id {
			delete(s.operations, opID)
		}
	}
	return nil
}

// ----- categories -----

func (s *MemoryStore) filterCategories(customerID string, filters listing.Filters) []memoryCategory {
	term := filters.Term()
	out := make([]memoryCategory, 0)
	for _, c := range s.categories {
		if c.rec.CustomerID != customerID {
			continue
		}
		if term == "" || listing.ContainsFold(c.rec.Name, term) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

func (s *MemoryStore) ListCategories(_ context.Context, customerID string, filters listing.Filters, page listing.Page) ([]Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := window(s.filterCategories(customerID, filters), page)
	out := make([]Category, 0, len(items))
	for _, c := range items {
		out = append(out, c.rec.toEntity())
	}
	return out, nil
}

func (s *MemoryStore) CountCategories(_ context.Context, customerID string, filters listing.Filters) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.filterCategories(customerID, filters)), nil
}

func (s *MemoryStore) ownedCategory(customerID, id string) (memoryCategory, bool) {
	c, ok := s.categories[id]
	if !ok || c.rec.CustomerID != customerID {
		return memoryCategory{}, false
	}
	return c, true
}

func (s *MemoryStore) GetCategory(_ context.Context, customerID, id string) (Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.ownedCategory(customerID, id)
	if !ok {
		return Category{}, ErrCategoryNotFound
	}
	return c.rec.toEntity(), nil
}

func (s *MemoryStore) CreateCategory(_ context.Context, rec CategoryRecord) (Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[rec.ID] = memoryCategory{seq: s.next(), rec: rec}
	return rec.toEntity(), nil
}

func (s *MemoryStore) UpdateCategory(_ context.Context, rec CategoryRecord) (Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.ownedCategory(rec.CustomerID, rec.ID)
	if !ok {
		return Category{}, ErrCategoryNotFound
	}
	c.rec.Name = rec.Name
	c.rec.UpdatedAt = rec.UpdatedAt
	s.categories[rec.ID] = c
	return c.rec.toEntity(), nil
}

func (s *MemoryStore) DeleteCategory(_ context.Context, customerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ownedCategory(customerID, id); !ok {
		return ErrCategoryNotFound
	}
	delete(s.categories, id)
	for opID, op := range s.operations {
		if op.rec.CategoryID != nil && *op.rec.CategoryID == id {
			op.rec.CategoryID = nil
			s.operations[opID] = op
		}
	}
	return nil
}

// ----- operations -----

func (s *MemoryStore) operationEntity(rec OperationRecord) Operation {
	op := Operation{
		ID:        rec.ID,
		Title:     rec.Title,
		Type:      rec.Type,
		Amount:    rec.Amount,
		Budget:    s.budgetEntity(s.budgets[rec.BudgetID].rec),
		CreatedAt: rec.CreatedAt.UTC(),
		UpdatedAt: rec.UpdatedAt.UTC(),
	}
	if rec.CategoryID != nil {
		if c, ok := s.categories[*rec.CategoryID]; ok {
			cat := c.rec.toEntity()
			op.Category = &cat
		}
	}
	return op
}

func (s *MemoryStore) operationMatches(rec OperationRecord, term string, acrossBudgets bool) bool {
	if term == "" || listing.ContainsFold(rec.Title, term) || strings.EqualFold(string(rec.Type), term) {
		return true
	}
	if !acrossBudgets {
		return false
	}
	if listing.ContainsFold(s.budgets[rec.BudgetID].rec.Title, term) {
		return true
	}
	if rec.CategoryID != nil {
		if c, ok := s.categories[*rec.CategoryID]; ok && listing.ContainsFold(c.rec.Name, term) {
			return true
		}
	}
	return false
}

// filterOperations returns the customer's operations, limited to budgetID
// when it is not empty.
func (s *MemoryStore) filterOperations(customerID, budgetID string, filters listing.Filters) []memoryOperation {
	term := filters.Term()
	out := make([]memoryOperation, 0)
	for _, op := range s.operations {
		if _, owned := s.ownedBudget(customerID, op.rec.BudgetID); !owned {
			continue
		}
		if budgetID != "" && op.rec.BudgetID != budgetID {
			continue
		}
		if s.operationMatches(op.rec, term, budgetID == "") {
			out = append(out, op)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

func (s *MemoryStore) operationEntities(items []memoryOperation, page listing.Page) []Operation {
	items = window(items, page)
	out := make([]Operation, 0, len(items))
	for _, op := range items {
		out = append(out, s.operationEntity(op.rec))
	}
	return out
}

func (s *MemoryStore) ListOperations(_ context.Context, customerID string, filters listing.Filters, page listing.Page) ([]Operation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.operationEntities(s.filterOperations(customerID, "", filters), page), nil
}

func (s *MemoryStore) CountOperations(_ context.Context, customerID string, filters listing.Filters) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.filterOperations(customerID, "", filters)), nil
}

func (s *MemoryStore) ListBudgetOperations(_ context.Context, customerID, budgetID string, filters listing.Filters, page listing.Page) ([]Operation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if budgetID == "" {
		return []Operation{}, nil
	}
	return s.operationEntities(s.filterOperations(customerID, budgetID, filters), page), nil
}

func (s *MemoryStore) CountBudgetOperations(_ context.Context, customerID, budgetID string, filters listing.Filters) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if budgetID == "" {
		return 0, nil
	}
	return len(s.filterOperations(customerID, budgetID, filters)), nil
}

func (s *MemoryStore) ownedOperation(customerID, id string) (memoryOperation, bool) {
	op, ok := s.operations[id]
	if !ok {
		return memoryOperation{}, false
	}
	if _, owned := s.ownedBudget(customerID, op.rec.BudgetID); !owned {
		return memoryOperation{}, false
	}
	return op, true
}

func (s *MemoryStore) GetOperation(_ context.Context, customerID, id string) (Operation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	op, ok := s.ownedOperation(customerID, id)
	if !ok {
		return Operation{}, ErrOperationNotFound
	}
	return s.operationEntity(op.rec), nil
}

func (s *MemoryStore) checkReferences(customerID string, rec OperationRecord) error {
	if _, ok := s.ownedBudget(customerID, rec.BudgetID); !ok {
		return ErrBudgetNotFound
	}
	if rec.CategoryID != nil {
		if _, ok := s.ownedCategory(customerID, *rec.CategoryID); !ok {
			return ErrCategoryNotFound
		}
	}
	return nil
}

func (s *MemoryStore) CreateOperation(_ context.Context, customerID string, rec OperationRecord) (Operation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkReferences(customerID, rec); err != nil {
		return Operation{}, err
	}
	s.operations[rec.ID] = memoryOperation{seq: s.next(), rec: rec}
	return s.operationEntity(rec), nil
}

func (s *MemoryStore) UpdateOperation(_ context.Context, customerID string, rec OperationRecord) (Operation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	op, ok := s.ownedOperation(customerID, rec.ID)
	if !ok {
		return Operation{}, ErrOperationNotFound
	}
	if err := s.checkReferences(customerID, rec); err != nil {
		return Operation{}, err
	}
	rec.CreatedAt = op.rec.CreatedAt
	op.rec = rec
	s.operations[rec.ID] = op
	return s.operationEntity(rec), nil
}

func (s *MemoryStore) DeleteOperation(_ context.Context, customerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ownedOperation(customerID, id); !ok {
		return ErrOperationNotFound
	}
	delete(s.operations, id)
	return nil
}

var _ Store = (*MemoryStore)(nil)
