package budgets

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/pocket-budget/pocket_budget/internal/api"
	"github.com/pocket-budget/pocket_budget/internal/customer"
)

// Handler exposes currencies, budgets, categories and operations over HTTP.
// Every route except the currency ones acts on the authenticated customer's
// data only.
type Handler struct {
	currencies *CurrencyService
	budgets    *BudgetService
	categories *CategoryService
	operations *OperationService
}

// NewHandler builds the budget management HTTP handler.
func NewHandler(currencies *CurrencyService, budgets *BudgetService, categories *CategoryService, operations *OperationService) *Handler {
	return &Handler{currencies: currencies, budgets: budgets, categories: categories, operations: operations}
}

func owner(c *fiber.Ctx) (customer.Customer, error) {
	cust, ok := customer.Current(c)
	if !ok {
		return customer.Customer{}, fiber.NewError(http.StatusUnauthorized, "Unauthorized")
	}
	return cust, nil
}

func deleted(c *fiber.Ctx, entity string) error {
	return api.OK(c, api.Message{Message: entity + " deleted successfully."})
}

// ListCurrencies pages through currencies matching ?search.
func (h *Handler) ListCurrencies(c *fiber.Ctx) error {
	filters, page, err := api.ListQuery(c)
	if err != nil {
		return err
	}
	items, err := h.currencies.List(c.UserContext(), filters, page)
	if err != nil {
		return err
	}
	total, err := h.currencies.Count(c.UserContext(), filters)
	if err != nil {
		return err
	}
	return api.OK(c, api.NewList(items, page, total, toCurrencySchema))
}

// GetCurrency returns the currency named by :shortName.
func (h *Handler) GetCurrency(c *fiber.Ctx) error {
	cur, err := h.currencies.GetByShortName(c.UserContext(), c.Params("shortName"))
	if err != nil {
		return err
	}
	return api.OK(c, api.Detail[currencySchema]{Item: toCurrencySchema(cur)})
}

func (h *Handler) ListBudgets(c *fiber.Ctx) error {
	cust, err := owner(c)
	if err != nil {
		return err
	}
	filters, page, err := api.ListQuery(c)
	if err != nil {
		return err
	}
	items, err := h.budgets.List(c.UserContext(), cust, filters, page)
	if err != nil {
		return err
	}
	total, err := h.budgets.Count(c.UserContext(), cust, filters)
	if err != nil {
		return err
	}
	return api.OK(c, api.NewList(items, page, total, toBudgetSchema))
}

func (h *Handler) GetBudget(c *fiber.Ctx) error {
	cust, err := owner(c)
	if err != nil {
		return err
	}
	b, err := h.budgets.Get(c.UserContext(), cust, c.Params("id"))
	if err != nil {
		return err
	}
	return api.OK(c, api.Detail[budgetSchema]{Item: toBudgetSchema(b)})
}

func (h *Handler) CreateBudget(c *fiber.Ctx) error {
	cust, err := owner(c)
	if err != nil {
		return err
	}
	var req createBudgetRequest
	if err := api.Body(c, &req); err != nil {
		return err
	}
	b, err := h.budgets.Create(c.UserContext(), cust, CreateBudgetInput{
		Title:             req.Title,
		InitialAmount:     req.InitialAmount,
		CurrencyShortName: req.CurrencyShortName,
	})
	if err != nil {
		return err
	}
	return api.Created(c, api.Detail[budgetSchema]{Item: toBudgetSchema(b)})
}

func (h *Handler) UpdateBudget(c *fiber.Ctx) error {
	cust, err := owner(c)
	if err != nil {
		return err
	}
	var req updateBudgetRequest
	if err := api.Body(c, &req); err != nil {
		return err
	}
	b, err := h.budgets.Update(c.UserContext(), cust, c.Params("id"), UpdateBudgetInput{
		Title:         req.Title,
		InitialAmount: req.InitialAmount,
	})
	if err != nil {
		return err
	}
	return api.OK(c, api.Detail[budgetSchema]{Item: toBudgetSchema(b)})
}

func (h *Handler) DeleteBudget(c *fiber.Ctx) error {
	cust, err := owner(c)
	if err != nil {
		return err
	}
	if err := h.budgets.Delete(c.UserContext(), cust, c.Params("id")); err != nil {
		return err
	}
	return deleted(c, "Budget")
}

// ListBudgetOperations pages through the operations of budget :id.
func (h *Handler) ListBudgetOperations(c *fiber.Ctx) error {
	cust, err := owner(c)
	if err != nil {
		return err
	}
	filters, page, err := api.ListQuery(c)
	if err != nil {
		return err
	}
	id := c.Params("id")
	items, err := h.budgets.ListOperations(c.UserContext(), cust, id, filters, page)
	if err != nil {
		return err
	}
	total, err := h.budgets.CountOperations(c.UserContext(), cust, id, filters)
	if err != nil {
		return err
	}
	return api.OK(c, api.NewList(items, page, total, toOperationSchema))
}

func (h *Handler) ListCategories(c *fiber.Ctx) error {
	cust, err := owner(c)
	if err != nil {
		return err
	}
	filters, page, err := api.ListQuery(c)
	if err != nil {
		return err
	}
	items, err := h.categories.List(c.UserContext(), cust, filters, page)
	if err != nil {
		return err
	}
	total, err := h.categories.Count(c.UserContext(), cust, filters)
	if err != nil {
		return err
	}
	return api.OK(c, api.NewList(items, page, total, toCategorySchema))
}

func (h *Handler) GetCategory(c *fiber.Ctx) error {
	cust, err := owner(c)
	if err != nil {
		return err
	}
	cat, err := h.categories.Get(c.UserContext(), cust, c.Params("id"))
	if err != nil {
		return err
	}
	return api.OK(c, api.Detail[categorySchema]{Item: toCategorySchema(cat)})
}

func (h *Handler) CreateCategory(c *fiber.Ctx) error {
	cust, err := owner(c)
	if err != nil {
		return err
	}
	var req createCategoryRequest
	if err := api.Body(c, &req); err != nil {
		return err
	}
	cat, err := h.categories.Create(c.UserContext(), cust, req.Name)
	if err != nil {
		return err
	}
	return api.Created(c, api.Detail[categorySchema]{Item: toCategorySchema(cat)})
}

func (h *Handler) UpdateCategory(c *fiber.Ctx) error {
	cust, err := owner(c)
	if err != nil {
		return err
	}
	var req updateCategoryRequest
	if err := api.Body(c, &req); err != nil {
		return err
	}
	cat, err := h.categories.Update(c.UserContext(), cust, c.Params("id"), req.Name)
	if err != nil {
		return err
	}
	return api.OK(c, api.Detail[categorySchema]{Item: toCategorySchema(cat)})
}

func (h *Handler) DeleteCategory(c *fiber.Ctx) error {
	cust, err := owner(c)
	if err != nil {
		return err
	}
	if err := h.categories.Delete(c.UserContext(), cust, c.Params("id")); err != nil {
		return err
	}
	return deleted(c, "Category")
}

func (h *Handler) ListOperations(c *fiber.Ctx) error {
	cust, err := owner(c)
	if err != nil {
		return err
	}
	filters, page, err := api.ListQuery(c)
	if err != nil {
		return err
	}
	items, err := h.operations.List(c.UserContext(), cust, filters, page)
	if err != nil {
		return err
	}
	total, err := h.operations.Count(c.UserContext(), cust, filters)
	if err != nil {
		return err
	}
	return api.OK(c, api.NewList(items, page, total, toOperationSchema))
}

func (h *Handler) GetOperation(c *fiber.Ctx) error {
	cust, err := owner(c)
	if err != nil {
		return err
	}
	op, err := h.operations.Get(c.UserContext(), cust, c.Params("id"))
	if err != nil {
		return err
	}
	return api.OK(c, api.Detail[operationSchema]{Item: toOperationSchema(op)})
}

func (h *Handler) CreateOperation(c *fiber.Ctx) error {
	cust, err := owner(c)
	if err != nil {
		return err
	}
	var req createOperationRequest
	if err := api.Body(c, &req); err != nil {
		return err
	}
	op, err := h.operations.Create(c.UserContext(), cust, CreateOperationInput{
		Title:      req.Title,
		Type:       req.Type,
		Amount:     req.Amount,
		BudgetID:   req.BudgetID,
		CategoryID: req.CategoryID,
	})
	if err != nil {
		return err
	}
	return api.Created(c, api.Detail[operationSchema]{Item: toOperationSchema(op)})
}

func (h *Handler) UpdateOperation(c *fiber.Ctx) error {
	cust, err := owner(c)
	if err != nil {
		return err
	}
	var req updateOperationRequest
	if err := api.Body(c, &req); err != nil {
		return err
	}
	op, err := h.operations.Update(c.UserContext(), cust, c.Params("id"), UpdateOperationInput{
		Title:      req.Title,
		Type:       req.Type,
		Amount:     req.Amount,
		BudgetID:   req.BudgetID,
		CategoryID: req.CategoryID,
	})
	if err != nil {
		return err
	}
	return api.OK(c, api.Detail[operationSchema]{Item: toOperationSchema(op)})
}

func (h *Handler) DeleteOperation(c *fiber.Ctx) error {
	cust, err := owner(c)
	if err != nil {
		return err
	}
	if err := h.operations.Delete(c.UserContext(), cust, c.Params("id")); err != nil {
		return err
	}
	return deleted(c, "Operation")
}
