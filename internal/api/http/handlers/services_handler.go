package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/genius-car/internal/domain"
	"github.com/spec-kit/genius-car/internal/service"
)

// ServicesHandler exposes the public catalog.
type ServicesHandler struct {
	catalog *service.CatalogService
}

// NewServicesHandler constructs handler.
func NewServicesHandler(catalog *service.CatalogService) *ServicesHandler {
	return &ServicesHandler{catalog: catalog}
}

// List GET /services?search=&price=htl.
func (h *ServicesHandler) List(c *fiber.Ctx) error {
	filter := domain.ServiceFilter{
		Search: c.Query("search"),
		Sort:   domain.SortDirection(c.Query("price")),
	}
	services, err := h.catalog.ListServices(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(services)
}

// Get GET /services/:id. Unknown ids yield a null body.
func (h *ServicesHandler) Get(c *fiber.Ctx) error {
	svc, err := h.catalog.GetService(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if svc == nil {
		return c.JSON(nil)
	}
	return c.JSON(svc)
}
