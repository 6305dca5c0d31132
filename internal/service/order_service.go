package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/genius-car/internal/domain"
	"github.com/spec-kit/genius-car/internal/events"
	"github.com/spec-kit/genius-car/internal/repository"
)

// OrderService coordinates order persistence and order events.
type OrderService struct {
	orders     repository.OrderRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// NewOrderService builds the service. dispatcher may be nil.
func NewOrderService(orders repository.OrderRepository, dispatcher events.Dispatcher, logger *zap.Logger) *OrderService {
	return &OrderService{orders: orders, dispatcher: dispatcher, logger: logger, now: time.Now}
}

// ListOrders returns the caller's orders. Ownership has already been checked
// by the route; an absent owner means the caller's token had no email either
// and every order is returned.
func (s *OrderService) ListOrders(ctx context.Context, actor domain.Identity, owner *string) ([]domain.Order, error) {
	if owner == nil {
		s.logger.Warn("listing orders without owner filter", zap.Bool("identity_has_email", actor.HasEmail()))
	}
	return s.orders.List(ctx, domain.OrderFilter{CustomerEmail: owner})
}

// CreateOrder stores the submitted document as is.
func (s *OrderService) CreateOrder(ctx context.Context, actor domain.Identity, doc domain.Document) (domain.InsertResult, error) {
	result, err := s.orders.Create(ctx, doc)
	if err != nil {
		return result, err
	}
	email, _ := doc.String(domain.OrderFieldCustomerEmail)
	s.publish(ctx, events.EventOrderCreated, result.InsertedID, actor, events.OrderCreatedPayload{CustomerEmail: email})
	return result, nil
}

// UpdateStatus sets the order status to any value the caller supplies.
func (s *OrderService) UpdateStatus(ctx context.Context, actor domain.Identity, id string, status any) (domain.UpdateResult, error) {
	result, err := s.orders.UpdateStatus(ctx, id, status)
	if err != nil {
		return result, err
	}
	if result.MatchedCount > 0 {
		s.publish(ctx, events.EventOrderStatusChanged, id, actor, events.OrderStatusChangedPayload{
			Status:   status,
			Modified: result.ModifiedCount,
		})
	}
	return result, nil
}

// DeleteOrder removes the order if it exists.
func (s *OrderService) DeleteOrder(ctx context.Context, actor domain.Identity, id string) (domain.DeleteResult, error) {
	result, err := s.orders.Delete(ctx, id)
	if err != nil {
		return result, err
	}
	if result.DeletedCount > 0 {
		s.publish(ctx, events.EventOrderDeleted, id, actor, nil)
	}
	return result, nil
}

func (s *OrderService) publish(ctx context.Context, typ events.EventType, orderID string, actor domain.Identity, payload any) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      typ,
		OrderID:   orderID,
		Actor:     actor.EmailValue(),
		Timestamp: s.now().UTC(),
		Payload:   payload,
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("order event handler failed", zap.String("type", string(typ)), zap.Error(err))
	}
}
