package budgets

import (
	"context"
	"errors"
	"strings"

	"github.com/pocket-budget/pocket_budget/internal/listing"
)

// CurrencyService serves the global, read-only currency list.
type CurrencyService struct {
	repo CurrencyRepository
}

func NewCurrencyService(repo CurrencyRepository) *CurrencyService {
	return &CurrencyService{repo: repo}
}

func (s *CurrencyService) List(ctx context.Context, filters listing.Filters, page listing.Page) ([]Currency, error) {
	return s.repo.ListCurrencies(ctx, filters, page)
}

func (s *CurrencyService) Count(ctx context.Context, filters listing.Filters) (int, error) {
	return s.repo.CountCurrencies(ctx, filters)
}

// GetByShortName looks a currency up ignoring case.
func (s *CurrencyService) GetByShortName(ctx context.Context, shortName string) (Currency, error) {
	shortName = strings.TrimSpace(shortName)
	if shortName == "" {
		return Currency{}, ErrCurrencyNotFound
	}
	return s.repo.CurrencyByShortName(ctx, shortName)
}

// Ensure creates the currency unless one with the same short name exists.
// It seeds reference data at startup.
func (s *CurrencyService) Ensure(ctx context.Context, cur Currency) (Currency, error) {
	existing, err := s.repo.CurrencyByShortName(ctx, cur.ShortName)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrCurrencyNotFound) {
		return Currency{}, err
	}
	cur.ShortName = strings.ToUpper(strings.TrimSpace(cur.ShortName))
	return s.repo.CreateCurrency(ctx, cur)
}
