package auth

import (
    "context"
    "log/slog"

    "github.com/pocket-budget/pocket_budget/internal/customer"
)

// Customers is the part of the customer directory the auth flow needs.
type Customers interface {
    GetOrCreate(ctx context.Context, phone, username string) (customer.Customer, error)
    Get(ctx context.Context, phone string) (customer.Customer, error)
    GenerateToken(ctx context.Context, c customer.Customer) (string, error)
}

// Codes issues and consumes verification codes.
type Codes interface {
    Generate(ctx context.Context, phone string) (string, error)
    Validate(ctx context.Context, phone, code string) error
}

// Sender delivers a code to a customer. It never reports failures.
type Sender interface {
    SendCode(ctx context.Context, c customer.Customer, code string)
}

// Service runs the phone verification protocol: authorize sends a code,
// confirm trades it for a bearer token.
type Service struct {
    customers Customers
    codes     Codes
    sender    Sender
    logger    *slog.Logger
}

func NewService(customers Customers, codes Codes, sender Sender, logger *slog.Logger) *Service {
    return &Service{customers: customers, codes: codes, sender: sender, logger: logger}
}

// Authorize makes sure a customer exists for phone and sends it a new code.
// Any code issued earlier for the phone stops being valid.
func (s *Service) Authorize(ctx context.Context, phone, username string) (customer.Customer, error) {
    cust, err := s.customers.GetOrCreate(ctx, phone, username)
    if err != nil {
        return customer.Customer{}, err
    }
    code, err := s.codes.Generate(ctx, cust.Phone)
    if err != nil {
        return customer.Customer{}, err
    }
    s.sender.SendCode(ctx, cust, code)
    if s.logger != nil {
        s.logger.InfoContext(ctx, "auth.authorize code issued", slog.String("customer_id", cust.ID))
    }
    return cust, nil
}

// Confirm consumes the pending code for phone and returns a fresh token.
// It fails with customer.ErrNotFound for phones that never authorized and
// with the code store's errors for missing or mismatched codes.
func (s *Service) Confirm(ctx context.Context, code, phone string) (string, error) {
    cust, err := s.customers.Get(ctx, phone)
    if err != nil {
        return "", err
    }
    if err := s.codes.Validate(ctx, cust.Phone, code); err != nil {
        return "", err
    }
    token, err := s.customers.GenerateToken(ctx, cust)
    if err != nil {
        return "", err
    }
    if s.logger != nil {
        s.logger.InfoContext(ctx, "auth.confirm token issued", slog.String("customer_id", cust.ID))
    }
    return token, nil
}
