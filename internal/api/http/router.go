package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/observability"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// RouteConfig bundles dependencies for route registration. A nil
// RateLimitStorage keeps limiter counters in process memory.
type RouteConfig struct {
	Health           *handlers.HealthHandler
	Auth             *handlers.AuthHandler
	Tickets          *handlers.TicketsHandler
	AuthMiddleware   *auth.AuthMiddleware
	RateLimit        config.RateLimitConfig
	RateLimitStorage fiber.Storage
	DashboardDir     string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	health := app.Group("/health")
	health.Get("/live", cfg.Health.Live)
	health.Get("/ready", cfg.Health.Ready)
	health.Get("/metrics", cfg.Health.Metrics)

	api := app.Group("/api", rateLimitMiddleware(cfg.RateLimit, cfg.RateLimitStorage))

	authGroup := api.Group("/auth")
	authGroup.Post("/signup", cfg.Auth.Signup)
	authGroup.Post("/login", cfg.Auth.Login)

	// The gate is attached per route; a group-level Use would also match
	// sibling prefixes such as /api/ticketsfoo.
	gate := cfg.AuthMiddleware.Handle
	tickets := api.Group("/tickets")
	tickets.Post("/", gate, cfg.Tickets.CreateTicket)
	tickets.Get("/", gate, cfg.Tickets.ListTickets)
	tickets.Get("/:id", gate, cfg.Tickets.GetTicket)
	tickets.Put("/:id", gate, cfg.Tickets.ReplaceTicket)
	tickets.Patch("/:id", gate, cfg.Tickets.PatchTicket)
	tickets.Delete("/:id", gate, cfg.Tickets.DeleteTicket)

	if cfg.DashboardDir != "" {
		app.Static("/", cfg.DashboardDir, fiber.Static{Index: "index.html"})
	}

	app.Use(func(c *fiber.Ctx) error {
		observability.MarkUnmatched(c)
		return apperrors.NewRouteNotFound()
	})
}
