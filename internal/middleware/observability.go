package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/educonnect-api/internal/observability"
)

const slowRequestThreshold = 500 * time.Millisecond

// Observability records request counters and latency histograms labelled by route
// template, and emits one structured log line per API request.
func Observability(logger zerolog.Logger) fiber.Handler {
	observability.RegisterMetrics()

	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if !strings.HasPrefix(c.Path(), "/api/") {
			return err
		}

		duration := time.Since(start)
		route := routeTemplate(c)
		method := c.Method()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else if status < fiber.StatusBadRequest {
				status = fiber.StatusInternalServerError
			}
		}

		observability.HTTPRequests().WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		observability.HTTPLatency().WithLabelValues(method, route).Observe(duration.Seconds())

		entry := logger.With().
			Str("correlation_id", GetCorrelationID(c)).
			Str("method", method).
			Str("route", route).
			Int("status", status).
			Dur("latency", duration).
			Logger()
		if username, role := CurrentUser(c); username != "" {
			entry = entry.With().Str("username", username).Str("role", role).Logger()
		}

		var event *zerolog.Event
		switch {
		case status >= fiber.StatusInternalServerError:
			event = entry.Error().Err(err)
		case status >= fiber.StatusBadRequest:
			event = entry.Warn()
		case duration > slowRequestThreshold:
			event = entry.Warn().Bool("slow", true)
		default:
			event = entry.Info()
		}
		event.Msg("request completed")

		return err
	}
}

// routeTemplate returns the registered pattern so ids do not explode label cardinality.
func routeTemplate(c *fiber.Ctx) string {
	if r := c.Route(); r != nil && r.Path != "" {
		return r.Path
	}
	return "unmatched"
}
