package server

import (
    "context"
    "log/slog"
    "time"

    "github.com/gofiber/fiber/v2"
    "github.com/jackc/pgx/v5/pgxpool"
    "github.com/redis/go-redis/v9"

    "github.com/pocket-budget/pocket_budget/internal/api"
    "github.com/pocket-budget/pocket_budget/internal/config"
    "github.com/pocket-budget/pocket_budget/internal/infra"
    "github.com/pocket-budget/pocket_budget/internal/routes"
)

// Server wraps the Fiber application and its configuration.
type Server struct {
    app *fiber.App
    cfg config.Config
}

// New instantiates the HTTP server and delegates route wiring to routes.Setup.
// db, cache and broker may be nil in development.
func New(cfg config.Config, db *pgxpool.Pool, cache *redis.Client, broker *infra.AMQP, logger *slog.Logger) (*Server, error) {
    app := fiber.New(fiber.Config{
        AppName:      cfg.AppName,
        ReadTimeout:  30 * time.Second,
        WriteTimeout: 30 * time.Second,
        ErrorHandler: api.ErrorHandler(logger),
    })

    deps := routes.Deps{Cfg: cfg, DB: db, Cache: cache, Broker: broker, Logger: logger}
    if err := routes.Setup(app, deps); err != nil {
        return nil, err
    }

    return &Server{app: app, cfg: cfg}, nil
}

// App exposes the Fiber application, mainly for tests.
func (s *Server) App() *fiber.App {
    return s.app
}

// Listen starts the HTTP server.
func (s *Server) Listen() error {
    return s.app.Listen(s.cfg.Address())
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
    return s.app.ShutdownWithContext(ctx)
}
