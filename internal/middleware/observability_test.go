package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestObservabilityLogsRouteTemplate(t *testing.T) {
	var buf bytes.Buffer
	app := fiber.New()
	app.Use(CorrelationID())
	app.Use(Observability(zerolog.New(&buf)))
	app.Get("/api/v1/papers/:id", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNotFound)
	})
	app.Get("/metrics", func(c *fiber.Ctx) error { return c.SendString("ok") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/papers/42", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	require.Equal(t, "/api/v1/papers/:id", entry["route"])
	require.Equal(t, "warn", entry["level"])
	require.EqualValues(t, 404, entry["status"])
	require.NotEmpty(t, entry["correlation_id"])

	buf.Reset()
	_, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	require.Zero(t, buf.Len())
}
