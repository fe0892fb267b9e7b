package notification

import (
    "context"
    "encoding/json"
    "errors"
    "strings"
    "testing"

    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/pocket-budget/pocket_budget/internal/customer"
    "github.com/pocket-budget/pocket_budget/internal/logging"
)

type testNotifier struct {
    last Message
    err  error
}

func (n *testNotifier) Send(_ context.Context, msg Message) error {
    n.last = msg
    return n.err
}

func TestSendCodeBuildsMessage(t *testing.T) {
    notifier := &testNotifier{}
    sender := NewCodeSender(notifier, logging.Discard())

    sender.SendCode(context.Background(), customer.Customer{ID: "c1", Phone: "15550001111"}, "042042")

    if notifier.last.Kind != KindVerificationCode {
        t.Fatalf("expected verification kind, got %s", notifier.last.Kind)
    }
    if notifier.last.Destination != "+15550001111" {
        t.Fatalf("unexpected destination %s", notifier.last.Destination)
    }
    if !strings.Contains(notifier.last.Body, "042042") {
        t.Fatalf("expected code in body, got %s", notifier.last.Body)
    }
}

func TestSendCodeSwallowsDeliveryErrors(t *testing.T) {
    notifier := &testNotifier{err: errors.New("provider down")}
    sender := NewCodeSender(notifier, logging.Discard())

    // Must not panic or surface the error.
    sender.SendCode(context.Background(), customer.Customer{ID: "c1", Phone: "15550001111"}, "123456")
}

func TestEncodePublishing(t *testing.T) {
    pub, err := encode(Message{Kind: KindVerificationCode, Destination: "+15550001111", Body: "hi"})
    if err != nil {
        t.Fatalf("encode: %v", err)
    }
    if pub.DeliveryMode != amqp.Persistent {
        t.Fatalf("expected persistent delivery")
    }
    var decoded Message
    if err := json.Unmarshal(pub.Body, &decoded); err != nil {
        t.Fatalf("decode body: %v", err)
    }
    if decoded.Destination != "+15550001111" || decoded.CreatedAt.IsZero() {
        t.Fatalf("unexpected decoded message %+v", decoded)
    }
}
