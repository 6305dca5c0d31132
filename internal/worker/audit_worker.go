package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/genius-car/internal/events"
)

// StartAuditWorker subscribes a logger to every order event.
func StartAuditWorker(dispatcher events.Dispatcher, logger *zap.Logger) {
	if dispatcher == nil {
		return
	}
	audit := logger.Named("audit")
	handler := func(_ context.Context, event events.Event) error {
		audit.Info("order event",
			zap.String("event_id", event.ID),
			zap.String("type", string(event.Type)),
			zap.String("order_id", event.OrderID),
			zap.String("actor", event.Actor),
			zap.Time("at", event.Timestamp),
			zap.Any("payload", event.Payload),
		)
		return nil
	}
	dispatcher.Subscribe(handler)
}
