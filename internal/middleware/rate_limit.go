package middleware

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/rs/zerolog"

	"github.com/noah-isme/educonnect-api/internal/utils"
)

// RateLimit throttles a route group with a sliding window. Requests are keyed by
// the authenticated username when present, otherwise by client IP, so anonymous
// login attempts share one budget per address.
func RateLimit(scope string, max int, window time.Duration, logger ...zerolog.Logger) fiber.Handler {
	if max <= 0 {
		max = 10
	}
	if window <= 0 {
		window = time.Minute
	}
	log := zerolog.Nop()
	if len(logger) > 0 {
		log = logger[0].With().Str("component", "rate_limit").Str("scope", scope).Logger()
	}

	return limiter.New(limiter.Config{
		Max:               max,
		Expiration:        window,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator: func(c *fiber.Ctx) string {
			return scope + ":" + rateLimitSubject(c)
		},
		LimitReached: func(c *fiber.Ctx) error {
			log.Warn().
				Str("correlation_id", GetCorrelationID(c)).
				Str("subject", rateLimitSubject(c)).
				Str("path", c.Path()).
				Msg("rate limit exceeded")
			return utils.SendError(c, fiber.StatusTooManyRequests, "too many requests, try again later")
		},
	})
}

func rateLimitSubject(c *fiber.Ctx) string {
	if username, _ := c.Locals(LocalUsername).(string); strings.TrimSpace(username) != "" {
		return "user:" + username
	}
	return "ip:" + c.IP()
}
