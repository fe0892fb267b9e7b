package routes

import (
    "context"
    "net/http"
    "time"

    "github.com/gofiber/fiber/v2"
)

// RegisterHealthRoutes adds a readiness endpoint reporting each backend.
// Backends that are not configured report "memory" (or "log" for the
// broker) and never fail the check.
func RegisterHealthRoutes(app *fiber.App, d Deps) {
    app.Get("/healthz", func(c *fiber.Ctx) error {
        dbStatus, redisStatus, brokerStatus := "memory", "memory", "log"

        ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
        defer cancel()
        if d.DB != nil {
            dbStatus = "ok"
            if err := d.DB.Ping(ctx); err != nil {
                dbStatus = err.Error()
            }
        }
        if d.Cache != nil {
            redisStatus = "ok"
            if err := d.Cache.Ping(ctx).Err(); err != nil {
                redisStatus = err.Error()
            }
        }
        if d.Broker != nil {
            brokerStatus = "ok"
            if d.Broker.Conn.IsClosed() {
                brokerStatus = "connection closed"
            }
        }

        status := http.StatusOK
        for _, s := range []string{dbStatus, redisStatus, brokerStatus} {
            if s != "ok" && s != "memory" && s != "log" {
                status = http.StatusServiceUnavailable
            }
        }
        return c.Status(status).JSON(fiber.Map{
            "status":    fiber.Map{"postgres": dbStatus, "redis": redisStatus, "amqp": brokerStatus},
            "timestamp": time.Now().UTC().Format(time.RFC3339Nano),
        })
    })
}
