package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pocket-budget/pocket_budget/internal/customer"
)

// CodeSender delivers verification codes through a Notifier. Delivery is
// best effort: failures are logged and never returned.
type CodeSender struct {
	notifier Notifier
	logger   *slog.Logger
}

// NewCodeSender wraps notifier as a verification code gateway.
func NewCodeSender(notifier Notifier, logger *slog.Logger) *CodeSender {
	return &CodeSender{notifier: notifier, logger: logger}
}

// SendCode sends code to the customer's phone.
func (s *CodeSender) SendCode(ctx context.Context, cust customer.Customer, code string) {
	if s == nil || s.notifier == nil {
		return
	}
	err := s.notifier.Send(ctx, Message{
		Kind:        KindVerificationCode,
		Destination: "+" + cust.Phone,
		Body:        fmt.Sprintf("Your PocketBudget code is %s", code),
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "verification code delivery failed",
			slog.String("customer_id", cust.ID),
			slog.Any("error", err),
		)
	}
}
