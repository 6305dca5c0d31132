package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/genius-car/internal/api/http/handlers"
	"github.com/spec-kit/genius-car/internal/auth"
	"github.com/spec-kit/genius-car/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tokens         *handlers.TokenHandler
	Services       *handlers.ServicesHandler
	Orders         *handlers.OrdersHandler
	AuthMiddleware *auth.AuthMiddleware
	IssueGuard     *auth.IssueGuard
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/", cfg.Health.Root)
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	app.Post("/jwt", cfg.IssueGuard.Handle, cfg.Tokens.Issue)

	services := app.Group("/services")
	services.Get("/", cfg.Services.List)
	services.Get("/:id", cfg.Services.Get)

	orders := app.Group("/orders", cfg.AuthMiddleware.Handle)
	orders.Get("/", auth.RequireQueryOwner(handlers.OwnerQueryParam), cfg.Orders.List)
	orders.Post("/", cfg.Orders.Create)
	orders.Patch("/:id", cfg.Orders.UpdateStatus)
	orders.Delete("/:id", cfg.Orders.Delete)
}
