package services

import (
	"context"

	"github.com/Dias221467/Player_Progression/internal/events"
	"github.com/sirupsen/logrus"
)

// publish hands an event to the configured sinks. Delivery is best effort:
// failures are logged and never reach the caller.
func publish(ctx context.Context, p events.Publisher, e events.Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, e); err != nil {
		logrus.WithFields(logrus.Fields{
			"type":     e.Type,
			"playerID": e.PlayerID,
			"error":    err,
		}).Warn("Failed to publish event")
	}
}
