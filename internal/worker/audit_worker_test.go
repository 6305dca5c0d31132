package worker

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/genius-car/internal/events"
)

func TestAuditWorkerLogsOrderEvents(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	dispatcher := events.NewInMemoryDispatcher()
	StartAuditWorker(dispatcher, zap.New(core))

	for _, typ := range []events.EventType{events.EventOrderCreated, events.EventOrderStatusChanged, events.EventOrderDeleted} {
		if err := dispatcher.Publish(context.Background(), events.Event{Type: typ, OrderID: "o-1"}); err != nil {
			t.Fatalf("Publish() unexpected error: %v", err)
		}
	}

	entries := logs.FilterMessage("order event").All()
	if len(entries) != 3 {
		t.Fatalf("logged %d entries, want 3", len(entries))
	}
	if got := entries[0].ContextMap()["order_id"]; got != "o-1" {
		t.Errorf("order_id = %v, want o-1", got)
	}
}
