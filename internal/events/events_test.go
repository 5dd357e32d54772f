package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
)

func TestNewAndDecode(t *testing.T) {
	event, err := New(BudgetExceeded, "user-1", BudgetExceededPayload{Category: "Food", BudgetAmount: "300", SpentAmount: "400"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.OccurredAt.IsZero() {
		t.Error("expected occurred_at to be set")
	}

	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decoded.Type != BudgetExceeded || decoded.UserID != "user-1" {
		t.Errorf("unexpected envelope %+v", decoded)
	}

	var payload BudgetExceededPayload
	if err := json.Unmarshal(decoded.Payload, &payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload.Category != "Food" || payload.SpentAmount != "400" {
		t.Errorf("unexpected payload %+v", payload)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode([]byte("{not json")); err == nil {
		t.Error("expected decode error")
	}
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	if err := p.Publish(context.Background(), TransactionCreated, &Event{}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"transient", errors.New("smtp timeout"), true},
		{"permanent", ErrPermanent, false},
		{"wrapped_permanent", fmt.Errorf("%w: decode payload: bad json", ErrPermanent), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Retryable(tt.err); got != tt.want {
				t.Errorf("Retryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
