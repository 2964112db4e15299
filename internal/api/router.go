package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jackc/pgx/v5/pgxpool"

	swagger "github.com/go-swagno/swagno-fiber/swagger"

	"github.com/converso-hq/converso/internal/api/docs"
	"github.com/converso-hq/converso/internal/api/handler"
	"github.com/converso-hq/converso/internal/api/middleware"
	"github.com/converso-hq/converso/internal/database"
	"github.com/converso-hq/converso/internal/notification"
	"github.com/converso-hq/converso/internal/ratelimit"
	"github.com/converso-hq/converso/internal/repository"
	"github.com/converso-hq/converso/internal/service"
	"github.com/converso-hq/converso/internal/widget"
	"github.com/converso-hq/converso/internal/ws"
)

// widgetAuthIPLimit caps handshakes per client IP per minute. It only blunts
// brute force from a single address; the per-connection limit in the widget
// service is the real backstop.
const widgetAuthIPLimit = 60

type Dependencies struct {
	TeamRepo       *repository.TeamRepository
	ConnectionRepo *repository.ConnectionRepository
	APIKeyRepo     *repository.APIKeyRepository
	Tokens         *widget.TokenService
	Mailer         notification.Mailer
	AppBaseURL     string
	DB             *pgxpool.Pool
}

type Router struct {
	app           *fiber.App
	logger        *slog.Logger
	deps          *Dependencies
	mailWorker    *notification.Worker
	cancelWorker  context.CancelFunc
	usageWorker   *middleware.LastUsedWorker
	teamLimiter   *middleware.RateLimiter
	widgetLimiter *middleware.RateLimiter
}

func NewRouter(logger *slog.Logger, deps *Dependencies) *Router {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "Converso API",
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
		AllowMethods: "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Swagger documentation (no auth required)
	sw := docs.NewSwagger()
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	// Health check endpoints (no auth required)
	var ready func(ctx context.Context) error
	if r.deps != nil && r.deps.DB != nil {
		ready = func(ctx context.Context) error {
			return database.HealthCheck(ctx, r.deps.DB)
		}
	}
	healthHandler := handler.NewHealthHandler(ready)
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)

	v1 := r.app.Group("/v1")

	// Only configure full routes if dependencies were provided
	if r.deps == nil {
		return
	}

	// Notification service and delivery worker
	notifier := notification.NewService(r.deps.DB, r.logger)
	if r.deps.Mailer != nil {
		r.mailWorker = notification.NewWorker(r.deps.DB, r.deps.Mailer, r.logger)
		ctx, cancel := context.WithCancel(context.Background())
		r.cancelWorker = cancel
		go r.mailWorker.Run(ctx)
	}

	// Widget event hub; status changes fan out here as well as to email
	hub := ws.NewHub()
	go hub.Run()

	connectionService := service.NewConnectionService(
		r.deps.ConnectionRepo,
		r.deps.TeamRepo,
		r.deps.Tokens,
		service.MultiDispatcher{notifier, ws.NewStatusNotifier(hub)},
		r.logger,
	)

	authLimiter := ratelimit.NewRateLimiter(r.deps.DB, time.Minute)
	widgetService := service.NewWidgetService(r.deps.Tokens, r.deps.ConnectionRepo, authLimiter, r.logger)

	// Widget routes are called by embedded client-side code and carry
	// their own credential, so they sit outside the API key middleware.
	// They get an IP throttle instead.
	r.widgetLimiter = middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Max:          widgetAuthIPLimit,
		Window:       time.Minute,
		KeyGenerator: middleware.IPKeyGenerator,
	})
	widgetHandler := handler.NewWidgetHandler(widgetService, r.logger)
	v1.Post("/widget/auth", r.widgetLimiter.Handler(), widgetHandler.Auth)
	v1.Get("/widget/ws", ws.UpgradeMiddleware(), ws.AuthMiddleware(widgetService), ws.Handler(hub))

	// Everything else requires a team API key
	r.usageWorker = middleware.NewLastUsedWorker(r.deps.APIKeyRepo, r.logger, middleware.DefaultLastUsedWorkerConfig())
	r.usageWorker.Start()
	v1.Use(middleware.Auth(r.deps.TeamRepo, r.usageWorker))

	r.teamLimiter = middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	v1.Use(r.teamLimiter.Handler())

	connectionHandler := handler.NewConnectionHandler(connectionService, r.logger)
	v1.Post("/connections", connectionHandler.Create)
	v1.Get("/connections", connectionHandler.List)
	v1.Get("/connections/:id", connectionHandler.Get)
	v1.Patch("/connections/:id", connectionHandler.Update)
	v1.Delete("/connections/:id", connectionHandler.Delete)
	v1.Post("/connections/:id/widget-token", connectionHandler.IssueWidgetToken)

	teamHandler := handler.NewTeamHandler(notifier, r.deps.AppBaseURL, r.logger)
	v1.Post("/team/invitations", teamHandler.Invite)

	apiKeyHandler := handler.NewAPIKeyHandler(r.deps.APIKeyRepo, r.logger)
	v1.Get("/api-keys", apiKeyHandler.List)
	v1.Delete("/api-keys/:id", apiKeyHandler.Revoke)
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

func (r *Router) Shutdown() error {
	if r.cancelWorker != nil {
		r.cancelWorker()
	}
	if r.usageWorker != nil {
		r.usageWorker.Stop()
	}
	if r.teamLimiter != nil {
		r.teamLimiter.Stop()
	}
	if r.widgetLimiter != nil {
		r.widgetLimiter.Stop()
	}

	return r.app.Shutdown()
}
