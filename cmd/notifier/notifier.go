package main

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"spendsnap/internal/events"
)

// notifier turns domain events into user-facing notices. Delivery is a log
// line; a mail or chat transport plugs in behind send.
type notifier struct {
	log  *zap.SugaredLogger
	send func(userID, subject, body string) error
}

// handle renders and delivers e. Render failures wrap events.ErrPermanent;
// send failures are returned as they are so the broker retries them.
func (n *notifier) handle(_ context.Context, e *events.Event) error {
	subject, body, err := render(e)
	if err != nil {
		return err
	}
	if subject == "" {
		return nil
	}
	if n.send != nil {
		return n.send(e.UserID, subject, body)
	}
	n.log.Infow("notification", "user_id", e.UserID, "type", e.Type, "subject", subject)
	return nil
}

// render formats the notice for e. Events that need no notice yield an
// empty subject.
func render(e *events.Event) (subject, body string, err error) {
	switch e.Type {
	case events.BudgetExceeded:
		var p events.BudgetExceededPayload
		if err := json.Unmarshal(e.Payload, &p); err != nil {
			return "", "", fmt.Errorf("%w: decode %s payload: %v", events.ErrPermanent, e.Type, err)
		}
		return fmt.Sprintf("Budget exceeded: %s", p.Category),
			fmt.Sprintf("You have spent %s of your %s budget for %s (%s%%).", p.SpentAmount, p.BudgetAmount, p.Category, p.PercentUsed),
			nil

	case events.PasswordResetRequested:
		var p events.PasswordResetPayload
		if err := json.Unmarshal(e.Payload, &p); err != nil {
			return "", "", fmt.Errorf("%w: decode %s payload: %v", events.ErrPermanent, e.Type, err)
		}
		return "Reset your password",
			fmt.Sprintf("Use this code to set a new password: %s\nIt expires at %s.", p.Token, p.ExpiresAt.UTC().Format("2006-01-02 15:04 MST")),
			nil

	case events.TransactionCreated:
		return "", "", nil

	default:
		return "", "", nil
	}
}
