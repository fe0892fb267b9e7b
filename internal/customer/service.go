package customer

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/pocket-budget/pocket_budget/internal/apperr"
)

const (
	minPhoneDigits = 5
	maxPhoneDigits = 15
	maxUsernameLen = 255
)

// Service is the customer directory: it resolves, creates and updates
// customers and issues their bearer tokens.
type Service struct {
	repo            Repository
	defaultUsername string
}

// NewService creates a customer directory. Customers created without a
// username get defaultUsername.
func NewService(repo Repository, defaultUsername string) *Service {
	if defaultUsername == "" {
		defaultUsername = "user"
	}
	return &Service{repo: repo, defaultUsername: defaultUsername}
}

// GetOrCreate returns the customer owning phone, creating it on first
// contact. Repeated calls for the same phone return the same customer and
// never change its username.
func (s *Service) GetOrCreate(ctx context.Context, phone, username string) (Customer, error) {
	normalized, err := NormalizePhone(phone)
	if err != nil {
		return Customer{}, err
	}
	username = strings.TrimSpace(username)
	if username == "" {
		username = s.defaultUsername
	}
	if utf8.RuneCountInString(username) > maxUsernameLen {
		return Customer{}, apperr.Invalid("Username is too long.")
	}
	return s.repo.GetOrCreate(ctx, normalized, username)
}

// Get returns the customer owning phone or ErrNotFound.
func (s *Service) Get(ctx context.Context, phone string) (Customer, error) {
	normalized, err := NormalizePhone(phone)
	if err != nil {
		return Customer{}, ErrNotFound
	}
	return s.repo.FindByPhone(ctx, normalized)
}

// Authenticate resolves the customer currently holding token.
func (s *Service) Authenticate(ctx context.Context, token string) (Customer, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Customer{}, ErrNotFound
	}
	return s.repo.FindByToken(ctx, token)
}

// GenerateToken issues a fresh opaque token and stores it as the customer's
// only valid one; earlier tokens stop authenticating.
func (s *Service) GenerateToken(ctx context.Context, c Customer) (string, error) {
	token := uuid.NewString()
	if err := s.repo.SetToken(ctx, c.ID, token); err != nil {
		return "", err
	}
	return token, nil
}

// UpdateUsername renames the customer.
func (s *Service) UpdateUsername(ctx context.Context, c Customer, username string) (Customer, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return Customer{}, apperr.Invalid("Username must not be empty.")
	}
	if utf8.RuneCountInString(username) > maxUsernameLen {
		return Customer{}, apperr.Invalid("Username is too long.")
	}
	return s.repo.UpdateUsername(ctx, c.ID, username)
}

// NormalizePhone strips formatting characters and checks the remainder is a
// plausible phone number. A leading '+' is dropped.
func NormalizePhone(phone string) (string, error) {
	var b strings.Builder
	for i, r := range strings.TrimSpace(phone) {
		switch {
		case unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '+' && i == 0:
		case r == ' ' || r == '-' || r == '(' || r == ')':
		default:
			return "", apperr.Invalid("Phone number contains invalid characters.")
		}
	}
	digits := b.String()
	if len(digits) < minPhoneDigits || len(digits) > maxPhoneDigits {
		return "", apperr.Invalid("Phone number has an invalid length.")
	}
	return digits, nil
}
