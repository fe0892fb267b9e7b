package routes

import (
    "context"
    "fmt"
    "log/slog"
    "net/http"
    "time"

    "github.com/gofiber/fiber/v2"
    "github.com/gofiber/fiber/v2/middleware/logger"
    "github.com/gofiber/fiber/v2/middleware/recover"
    "github.com/jackc/pgx/v5/pgxpool"
    "github.com/redis/go-redis/v9"

    "github.com/pocket-budget/pocket_budget/internal/api"
    "github.com/pocket-budget/pocket_budget/internal/auth"
    "github.com/pocket-budget/pocket_budget/internal/budgets"
    "github.com/pocket-budget/pocket_budget/internal/config"
    "github.com/pocket-budget/pocket_budget/internal/customer"
    "github.com/pocket-budget/pocket_budget/internal/infra"
    "github.com/pocket-budget/pocket_budget/internal/middleware"
    "github.com/pocket-budget/pocket_budget/internal/notification"
    "github.com/pocket-budget/pocket_budget/internal/verification"
)

// Deps aggregates shared dependencies required to wire routes. DB, Cache
// and Broker may be nil in development; in-memory backends replace them.
type Deps struct {
    Cfg    config.Config
    DB     *pgxpool.Pool
    Cache  *redis.Client
    Broker *infra.AMQP
    Logger *slog.Logger
}

// protectedPrefixes are the /api/v1 resources that require a bearer token.
var protectedPrefixes = []string{
    "/customers/profile",
    "/currencies",
    "/budgets",
    "/categories",
    "/operations",
}

// referenceCurrencies are created at startup when missing.
var referenceCurrencies = []budgets.Currency{
    {Name: "US Dollar", ShortName: "USD", Symbol: "$"},
    {Name: "Euro", ShortName: "EUR", Symbol: "€"},
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
    // Enforce backend presence outside of dev, even though config also checks.
    // The logger notifier writes codes in clear, so it never runs in production.
    if !d.Cfg.IsDev() {
        if d.DB == nil {
            return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
        }
        if d.Cache == nil {
            return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
        }
        if d.Broker == nil {
            return fmt.Errorf("message broker is required when APP_ENV=%s", d.Cfg.AppEnv)
        }
    }

    app.Use(recover.New())
    app.Use(middleware.RequestID())
    if d.Cfg.LogFormat == "text" {
        app.Use(logger.New(logger.Config{
            Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
            TimeFormat: "15:04:05",
            TimeZone:   "Local",
        }))
    } else {
        app.Use(middleware.Audit(d.Logger))
    }

    RegisterHealthRoutes(app, d)

    // Storage
    var (
        customerRepo customer.Repository
        store        budgets.Store
        codes        verification.Store
    )
    if d.DB != nil {
        customerRepo = customer.NewPostgresRepository(d.DB)
        store = budgets.NewPostgresStore(d.DB)
    } else {
        d.Logger.Warn("DATABASE_URL not set, using in-memory storage")
        customerRepo = customer.NewMemoryRepository()
        store = budgets.NewMemoryStore()
    }
    if d.Cache != nil {
        codes = verification.NewRedisStore(d.Cache, d.Cfg.CodeTTL)
    } else {
        d.Logger.Warn("REDIS_URL not set, verification codes are kept in memory")
        codes = verification.NewMemoryStore(d.Cfg.CodeTTL)
    }

    // Delivery
    var notifier notification.Notifier = notification.NewLoggerNotifier(d.Logger)
    if d.Broker != nil {
        amqpNotifier, err := notification.NewAMQPNotifier(d.Broker.Channel, d.Cfg.SMSExchange, d.Cfg.SMSQueue)
        if err != nil {
            return fmt.Errorf("sms publisher: %w", err)
        }
        notifier = amqpNotifier
    }

    // Services
    customerSvc := customer.NewService(customerRepo, d.Cfg.DefaultUsername)
    authSvc := auth.NewService(customerSvc, codes, notification.NewCodeSender(notifier, d.Logger), d.Logger)
    currencySvc := budgets.NewCurrencyService(store)
    budgetSvc := budgets.NewBudgetService(store, d.Cfg.DefaultCurrency)
    categorySvc := budgets.NewCategoryService(store)
    operationSvc := budgets.NewOperationService(store)

    if err := seedCurrencies(currencySvc, d.Cfg.DefaultCurrency); err != nil {
        return err
    }

    // API routes
    v1 := app.Group("/api/v1")
    v1.Get("/ping", func(c *fiber.Ctx) error {
        return api.Write(c, http.StatusOK, fiber.Map{
            "status":     "ok",
            "request_id": middleware.RequestIDFrom(c),
            "timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
        })
    })

    // Public routes
    RegisterAuthRoutes(v1, auth.NewHandler(authSvc), middleware.AuthorizeRateLimit(d.Cache, d.Cfg.AuthRateLimit, d.Logger))

    // Protected routes. The guard is mounted per resource prefix so that
    // unknown paths under /api/v1 still answer 404.
    v1.Use(protectedPrefixes,
        middleware.BearerAuth(customerSvc),
        middleware.WriteRateLimit(d.Cfg.WriteRateLimit),
        middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger),
    )
    RegisterCustomerRoutes(v1, customer.NewHandler(customerSvc))
    RegisterBudgetRoutes(v1, budgets.NewHandler(currencySvc, budgetSvc, categorySvc, operationSvc))

    app.Use(func(c *fiber.Ctx) error {
        return fiber.NewError(fiber.StatusNotFound, "Not found.")
    })

    return nil
}

func seedCurrencies(svc *budgets.CurrencyService, defaultCurrency string) error {
    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    for _, cur := range referenceCurrencies {
        if _, err := svc.Ensure(ctx, cur); err != nil {
            return fmt.Errorf("seed currency %s: %w", cur.ShortName, err)
        }
    }
    if _, err := svc.GetByShortName(ctx, defaultCurrency); err != nil {
        return fmt.Errorf("default currency %s: %w", defaultCurrency, err)
    }
    return nil
}
