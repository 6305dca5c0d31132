package events

import (
	"time"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventOrderCreated       EventType = "order_created"
	EventOrderStatusChanged EventType = "order_status_changed"
	EventOrderDeleted       EventType = "order_deleted"
)

// OrderEventTypes lists every event the order service publishes.
var OrderEventTypes = []EventType{EventOrderCreated, EventOrderStatusChanged, EventOrderDeleted}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	OrderID   string    `json:"order_id"`
	Actor     string    `json:"actor,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// OrderCreatedPayload payload.
type OrderCreatedPayload struct {
	CustomerEmail string `json:"customer_email,omitempty"`
}

// OrderStatusChangedPayload payload.
type OrderStatusChangedPayload struct {
	Status   any   `json:"status"`
	Modified int64 `json:"modified"`
}
