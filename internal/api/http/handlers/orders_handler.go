package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/genius-car/internal/api/dto"
	"github.com/spec-kit/genius-car/internal/auth"
	"github.com/spec-kit/genius-car/internal/domain"
	"github.com/spec-kit/genius-car/internal/service"
	apperrors "github.com/spec-kit/genius-car/pkg/util"
)

// OwnerQueryParam names the query parameter scoping order listings.
const OwnerQueryParam = "email"

// OrdersHandler manages order endpoints. Every route sits behind the auth guard.
type OrdersHandler struct {
	service *service.OrderService
}

// NewOrdersHandler constructs handler.
func NewOrdersHandler(orderService *service.OrderService) *OrdersHandler {
	return &OrdersHandler{service: orderService}
}

// List GET /orders?email=.
func (h *OrdersHandler) List(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("unauthorized access")
	}
	orders, err := h.service.ListOrders(c.UserContext(), identity, auth.OptionalQuery(c, OwnerQueryParam))
	if err != nil {
		return err
	}
	return c.JSON(orders)
}

// Create POST /orders. The body is stored verbatim.
func (h *OrdersHandler) Create(c *fiber.Ctx) error {
	identity, _ := auth.IdentityFromContext(c)
	doc := domain.Document{}
	if body := c.Body(); len(body) > 0 {
		if err := json.Unmarshal(body, &doc); err != nil || doc == nil {
			return apperrors.NewValidationError("order must be a JSON object", nil)
		}
	}
	result, err := h.service.CreateOrder(c.UserContext(), identity, doc)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// UpdateStatus PATCH /orders/:id.
func (h *OrdersHandler) UpdateStatus(c *fiber.Ctx) error {
	identity, _ := auth.IdentityFromContext(c)
	var req dto.UpdateOrderStatusRequest
	if body := c.Body(); len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}
	status, err := req.StatusValue()
	if err != nil {
		return apperrors.NewValidationError("invalid status", nil)
	}
	result, err := h.service.UpdateStatus(c.UserContext(), identity, c.Params("id"), status)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// Delete DELETE /orders/:id.
func (h *OrdersHandler) Delete(c *fiber.Ctx) error {
	identity, _ := auth.IdentityFromContext(c)
	result, err := h.service.DeleteOrder(c.UserContext(), identity, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(result)
}
