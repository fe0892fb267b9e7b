package verification

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/pocket-budget/pocket_budget/internal/apperr"
)

const (
	codeDigits = 6
	maxCode    = 999_999
)

var (
	// ErrCodeNotFound means no code is pending for the phone: it was never
	// issued, was already consumed, or has expired.
	ErrCodeNotFound = apperr.Invalid("Code not found.")

	// ErrCodesNotEqual means a code is pending but the submitted one differs.
	// The pending code stays valid.
	ErrCodesNotEqual = apperr.Invalid("Codes are not equal.")
)

// Store issues and checks single-use verification codes keyed by phone.
type Store interface {
	// Generate issues a new code for phone, replacing any pending one.
	Generate(ctx context.Context, phone string) (string, error)
	// Validate consumes the pending code for phone if it equals code.
	Validate(ctx context.Context, phone, code string) error
}

// NewCode draws a code uniformly from [1, 999999], zero padded to six digits.
func NewCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(maxCode))
	if err != nil {
		return "", fmt.Errorf("draw verification code: %w", err)
	}
	return fmt.Sprintf("%0*d", codeDigits, n.Int64()+1), nil
}
