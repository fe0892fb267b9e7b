package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// AMQPNotifier publishes messages to a durable queue consumed by the SMS
// delivery worker.
type AMQPNotifier struct {
	channel  *amqp.Channel
	exchange string
	queue    string
}

// NewAMQPNotifier declares a direct exchange and a durable queue bound to it
// under the queue's name, and returns a notifier publishing there.
func NewAMQPNotifier(channel *amqp.Channel, exchange, queue string) (*AMQPNotifier, error) {
	if err := channel.ExchangeDeclare(exchange, "direct", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := channel.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	if err := channel.QueueBind(queue, queue, exchange, false, nil); err != nil {
		return nil, fmt.Errorf("bind queue: %w", err)
	}
	return &AMQPNotifier{channel: channel, exchange: exchange, queue: queue}, nil
}

// Send publishes message as persistent JSON.
func (n *AMQPNotifier) Send(ctx context.Context, message Message) error {
	publishing, err := encode(message)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := n.channel.PublishWithContext(ctx, n.exchange, n.queue, false, false, publishing); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

func encode(message Message) (amqp.Publishing, error) {
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}
	body, err := json.Marshal(message)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("encode notification: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    message.CreatedAt,
		Type:         message.Kind,
		Body:         body,
	}, nil
}
