package http

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/observability"
	"github.com/spec-kit/helpdesk/internal/persistence"
	"github.com/spec-kit/helpdesk/internal/repository"
	"github.com/spec-kit/helpdesk/internal/service"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// ServerDependencies is everything NewServer needs. Redis may be nil.
type ServerDependencies struct {
	Config        config.Config
	Logger        *zap.Logger
	Metrics       *observability.Metrics
	Store         repository.Store
	Redis         *persistence.Redis
	AuthService   *service.AuthService
	TicketService *service.TicketService
}

// NewServer builds the fiber app with middlewares and routes registered.
func NewServer(deps ServerDependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               deps.Config.App.Name,
		DisableStartupMessage: true,
		ErrorHandler:          fallbackErrorHandler,
	})

	RegisterMiddlewares(app, deps.Logger, deps.Metrics)

	var storage fiber.Storage
	if deps.Redis != nil {
		storage = deps.Redis.Storage()
	}

	RegisterRoutes(app, RouteConfig{
		Health: handlers.NewHealthHandler(handlers.HealthDependencies{
			ServiceName: deps.Config.App.Name,
			Version:     deps.Config.App.Version,
			StoreDriver: deps.Config.Store.Driver,
			Store:       deps.Store,
			Redis:       deps.Redis,
			Metrics:     deps.Metrics,
		}),
		Auth:             handlers.NewAuthHandler(deps.AuthService),
		Tickets:          handlers.NewTicketsHandler(deps.TicketService),
		AuthMiddleware:   auth.NewAuthMiddleware(deps.AuthService.TokenManager()),
		RateLimit:        deps.Config.RateLimit,
		RateLimitStorage: storage,
		DashboardDir:     deps.Config.App.DashboardDir,
	})
	return app
}

// fallbackErrorHandler is only reached if an error escapes the error middleware.
func fallbackErrorHandler(c *fiber.Ctx, err error) error {
	domainErr := apperrors.ToDomainError(err)
	return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"error": fiber.Map{
		"code":    domainErr.Code,
		"message": domainErr.Message,
	}})
}
