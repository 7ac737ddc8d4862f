package api

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	swagger "github.com/go-swagno/swagno-fiber/swagger"
	"github.com/saturnino-fabrica-de-software/compras/internal/api/docs"
	"github.com/saturnino-fabrica-de-software/compras/internal/api/handler"
	adminHandler "github.com/saturnino-fabrica-de-software/compras/internal/api/handler/admin"
	"github.com/saturnino-fabrica-de-software/compras/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/compras/internal/audit"
	"github.com/saturnino-fabrica-de-software/compras/internal/order"
	"github.com/saturnino-fabrica-de-software/compras/internal/repository"
	"github.com/saturnino-fabrica-de-software/compras/internal/user"
	"github.com/saturnino-fabrica-de-software/compras/internal/webhook"
)

type Dependencies struct {
	DB     repository.PgxPool
	Health func(ctx context.Context) error
	Tokens *user.TokenService
}

type Router struct {
	app         *fiber.App
	logger      *slog.Logger
	deps        *Dependencies
	scheduler   *webhook.Scheduler
	rateLimiter *middleware.RateLimiter
}

func NewRouter(logger *slog.Logger, deps *Dependencies) *Router {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "Compras API",
	})

	return &Router{
		app:    app,
		logger: logger,
		deps:   deps,
	}
}

func (r *Router) Setup() {
	// Global middlewares
	r.app.Use(requestid.New())
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Logger(r.logger))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Swagger documentation (no auth required)
	sw := docs.NewSwagger()
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	// Health check endpoints (no auth required)
	var health *handler.HealthHandler
	if r.deps != nil {
		health = handler.NewHealthHandler(r.deps.Health)
	} else {
		health = handler.NewHealthHandler(nil)
	}
	r.app.Get("/health", health.Health)
	r.app.Get("/ready", health.Ready)

	// Only configure the API surface if dependencies were provided
	if r.deps == nil {
		return
	}

	// Webhook delivery pipeline
	r.scheduler = webhook.NewScheduler()
	logRepo := repository.NewWebhookLogRepository(r.deps.DB)
	configRepo := repository.NewWebhookConfigRepository(r.deps.DB)
	delivery := webhook.NewService(logRepo, r.scheduler, r.logger)
	publisher := webhook.NewPublisher(delivery, configRepo, r.logger)

	// Domain services
	auditLog := audit.NewSlogLogger(r.logger)
	userRepo := repository.NewUserRepository(r.deps.DB)
	userService := user.NewService(userRepo, publisher, r.deps.Tokens, auditLog, r.logger)
	orderRepo := repository.NewOrderRepository(r.deps.DB)
	orderService := order.NewService(orderRepo, publisher, auditLog, r.logger)

	// Handlers
	authHandler := handler.NewAuthHandler(userService, r.logger)
	ordersHandler := handler.NewOrdersHandler(orderService, r.logger)
	usersHandler := adminHandler.NewUsersHandler(userService, r.logger)
	webhooksHandler := adminHandler.NewWebhooksHandler(configRepo, logRepo, delivery, auditLog, r.logger)

	v1 := r.app.Group("/v1")

	// Public auth routes, throttled per client IP
	r.rateLimiter = middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	authGroup := v1.Group("/auth")
	authGroup.Post("/register", r.rateLimiter.Handler(), authHandler.Register)
	authGroup.Post("/login", r.rateLimiter.Handler(), authHandler.Login)

	// Everything below requires a valid session
	v1.Use(middleware.Auth(middleware.AuthDependencies{
		Tokens: r.deps.Tokens,
		Users:  userService,
		Logger: r.logger,
	}))

	authGroup.Get("/me", authHandler.Me)
	authGroup.Put("/password", authHandler.ChangePassword)

	// Order routes
	v1.Get("/orders", ordersHandler.List)
	v1.Post("/orders", ordersHandler.Create)
	v1.Get("/orders/:id", ordersHandler.Get)
	v1.Put("/orders/:id", ordersHandler.Update)
	v1.Delete("/orders/:id", ordersHandler.Delete)

	// Admin routes
	adminGroup := v1.Group("/admin")
	adminGroup.Use(middleware.RequireAdmin())

	adminGroup.Get("/users", usersHandler.List)
	adminGroup.Post("/users", usersHandler.Add)
	adminGroup.Post("/users/:id/approve", usersHandler.Approve)
	adminGroup.Post("/users/:id/reject", usersHandler.Reject)
	adminGroup.Put("/users/:id/password", usersHandler.SetPassword)
	adminGroup.Delete("/users/:id", usersHandler.Remove)

	adminGroup.Get("/webhooks", webhooksHandler.List)
	adminGroup.Post("/webhooks", webhooksHandler.Create)
	adminGroup.Get("/webhooks/logs", webhooksHandler.Logs)
	adminGroup.Put("/webhooks/:id", webhooksHandler.Update)
	adminGroup.Delete("/webhooks/:id", webhooksHandler.Delete)
	adminGroup.Post("/webhooks/:id/test", webhooksHandler.Test)
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

// Shutdown stops the HTTP server and drops pending webhook retries.
func (r *Router) Shutdown() error {
	if r.scheduler != nil {
		r.scheduler.Stop()
	}
	if r.rateLimiter != nil {
		r.rateLimiter.Stop()
	}
	return r.app.Shutdown()
}
