// Package events publishes domain events to a RabbitMQ topic exchange and
// consumes them in the notifier worker.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrPermanent marks a handler failure that redelivery cannot fix, such as a
// payload that does not decode. Wrap it and the delivery is dropped instead
// of requeued.
var ErrPermanent = errors.New("permanent event failure")

// Retryable reports whether a delivery that failed with err should be
// requeued.
func Retryable(err error) bool {
	return err != nil && !errors.Is(err, ErrPermanent)
}

// Routing keys.
const (
	TransactionCreated     = "transaction.created"
	BudgetExceeded         = "budget.exceeded"
	PasswordResetRequested = "auth.password_reset_requested"
)

// Event is the JSON envelope of every published message.
type Event struct {
	Type       string          `json:"type"`
	UserID     string          `json:"user_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// New builds an event, encoding payload as JSON.
func New(eventType, userID string, payload any) (*Event, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		Type:       eventType,
		UserID:     userID,
		OccurredAt: time.Now().UTC(),
		Payload:    body,
	}, nil
}

// Decode parses an event envelope.
func Decode(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// TransactionCreatedPayload describes a newly recorded transaction.
type TransactionCreatedPayload struct {
	TransactionID string `json:"transaction_id"`
	Type          string `json:"type"`
	Category      string `json:"category"`
	Amount        string `json:"amount"`
	Date          string `json:"date"`
}

// BudgetExceededPayload is sent when spending in a category reaches its
// budget.
type BudgetExceededPayload struct {
	Category     string `json:"category"`
	BudgetAmount string `json:"budget_amount"`
	SpentAmount  string `json:"spent_amount"`
	PercentUsed  string `json:"percent_used"`
}

// PasswordResetPayload carries the reset token to the mailer.
type PasswordResetPayload struct {
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Publisher sends events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event *Event) error
	Close() error
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, *Event) error { return nil }
func (NopPublisher) Close() error                                  { return nil }
