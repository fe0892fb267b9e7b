package notification

import (
    "context"
    "log/slog"
    "time"
)

const (
    // KindVerificationCode carries a one-time login code to a phone.
    KindVerificationCode = "verification_code"
)

// Message describes a notification payload.
type Message struct {
    Kind        string    `json:"kind"`
    Destination string    `json:"destination"`
    Body        string    `json:"body"`
    CreatedAt   time.Time `json:"created_at"`
}

// Notifier delivers notifications to downstream systems.
type Notifier interface {
    Send(ctx context.Context, message Message) error
}

// LoggerNotifier writes notifications to the logger instead of delivering
// them. It is the development stand-in for an SMS provider.
type LoggerNotifier struct {
    logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
    return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(ctx context.Context, message Message) error {
    if n == nil || n.logger == nil {
        return nil
    }
    n.logger.InfoContext(ctx, "notification",
        slog.String("kind", message.Kind),
        slog.String("destination", message.Destination),
        slog.String("body", message.Body),
    )
    return nil
}
