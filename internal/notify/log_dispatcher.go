package notify

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogDispatcher writes lifecycle events to the application log. Used when no
// broker is configured (local development, tests).
type LogDispatcher struct {
	logger *logrus.Logger
}

// NewLogDispatcher creates a new LogDispatcher
func NewLogDispatcher(logger *logrus.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger}
}

// Notify logs the event and always succeeds
func (d *LogDispatcher) Notify(ctx context.Context, event Event) error {
	d.logger.WithFields(logrus.Fields{
		"event_type":     event.Type,
		"reservation_id": event.Reservation.ID,
		"reference":      event.Reservation.Reference,
		"status":         event.Reservation.Status,
	}).Info("Lifecycle event")
	return nil
}
