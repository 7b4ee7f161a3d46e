package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/MOUSSA13D/mini-bank7/internal/agent"
	"github.com/MOUSSA13D/mini-bank7/internal/auth"
	"github.com/MOUSSA13D/mini-bank7/internal/config"
	"github.com/MOUSSA13D/mini-bank7/internal/middleware"
	"github.com/MOUSSA13D/mini-bank7/internal/notification"
	"github.com/MOUSSA13D/mini-bank7/internal/transaction"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes. Without a database
// the app falls back to in-memory stores, which is only acceptable in
// development.
func Setup(app *fiber.App, d Deps) error {
	if !d.Cfg.IsDevelopment() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)

	var agentRepo agent.Repository
	if d.DB != nil {
		agentRepo = agent.NewPostgresRepository(d.DB, d.Cfg.AgentsTable)
	} else {
		agentRepo = agent.NewMemoryRepository()
	}
	var txRepo transaction.Repository
	if d.DB != nil {
		txRepo = transaction.NewPostgresRepository(d.DB)
	} else {
		txRepo = transaction.NewMemoryRepository()
	}

	agentSvc := agent.NewService(agentRepo)
	authSvc := auth.NewService(d.Cfg, agentSvc)
	notifier := notification.NewLoggerNotifier(d.Logger)
	txSvc := transaction.NewService(txRepo, agentRepo, notifier, d.Cache, d.Cfg.StatsCacheTTL)

	authHandler := auth.NewHandler(authSvc)
	agentHandler := agent.NewHandler(agentSvc)
	txHandler := transaction.NewHandler(txSvc, agentRepo)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Public routes
	RegisterAuthRoutes(api, authHandler)
	if d.Cfg.IsDevelopment() {
		api.Post("/agents/seed-demo", agentHandler.SeedDemo)
	}

	// Protected routes
	protected := api.Group("", middleware.JWTAuth(d.Cfg))
	protected.Get("/me", agentHandler.Me)
	RegisterAgentRoutes(protected, agentHandler)
	RegisterTransactionRoutes(protected, txHandler)

	return nil
}
