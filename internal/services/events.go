package services

import (
	"context"

	"spendsnap/internal/events"
	"spendsnap/internal/logger"
)

// publish sends an event and logs, rather than returns, any failure so that
// a broker outage never fails the write that triggered it.
func publish(pub events.Publisher, routingKey, userID string, payload any) {
	if pub == nil {
		return
	}
	event, err := events.New(routingKey, userID, payload)
	if err != nil {
		logger.Get().Errorw("failed to build event", "error", err, "type", routingKey)
		return
	}
	if err := pub.Publish(context.Background(), routingKey, event); err != nil {
		logger.Get().Warnw("failed to publish event",
			"error", err,
			"type", routingKey,
			"user_id", userID,
		)
	}
}
