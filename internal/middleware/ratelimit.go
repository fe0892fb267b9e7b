package middleware

import (
    "log/slog"
    "net/http"
    "strings"
    "time"

    "github.com/gofiber/fiber/v2"
    "github.com/gofiber/fiber/v2/middleware/limiter"
    "github.com/redis/go-redis/v9"

    "github.com/pocket-budget/pocket_budget/internal/customer"
)

const authorizeRatePrefix = "rl:authorize:"

// AuthorizeRateLimit caps code requests per phone (or per IP when the body
// has no phone) using a Redis counter over a one minute window. It fails open
// when Redis is unavailable.
func AuthorizeRateLimit(cache *redis.Client, maxPerMin int, logger *slog.Logger) fiber.Handler {
    if maxPerMin <= 0 {
        maxPerMin = 5
    }
    return func(c *fiber.Ctx) error {
        if cache == nil {
            return c.Next()
        }
        var req struct {
            Phone string `json:"phone"`
        }
        _ = c.BodyParser(&req)
        subject, err := customer.NormalizePhone(req.Phone)
        if err != nil {
            subject = c.IP()
        }
        key := authorizeRatePrefix + subject

        ctx := c.UserContext()
        cnt, err := cache.Incr(ctx, key).Result()
        if err != nil {
            logger.Warn("authorize rate limit unavailable", slog.Any("error", err))
            return c.Next()
        }
        if cnt == 1 {
            cache.Expire(ctx, key, time.Minute)
        }
        if cnt > int64(maxPerMin) {
            return fiber.NewError(http.StatusTooManyRequests, "Too many code requests, try again later.")
        }
        return c.Next()
    }
}

// WriteRateLimit caps unsafe requests per customer, falling back to the
// client IP for anonymous requests. Reads are not limited.
func WriteRateLimit(maxPerMin int) fiber.Handler {
    if maxPerMin <= 0 {
        maxPerMin = 60
    }
    return limiter.New(limiter.Config{
        Max:        maxPerMin,
        Expiration: time.Minute,
        Next: func(c *fiber.Ctx) bool {
            return safeMethod(c.Method())
        },
        KeyGenerator: func(c *fiber.Ctx) string {
            if cust, ok := customer.Current(c); ok {
                return "customer:" + cust.ID
            }
            return "ip:" + c.IP()
        },
        LimitReached: func(c *fiber.Ctx) error {
            return fiber.NewError(http.StatusTooManyRequests, "Too many requests, try again later.")
        },
    })
}

func safeMethod(method string) bool {
    switch strings.ToUpper(method) {
    case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
        return true
    }
    return false
}
