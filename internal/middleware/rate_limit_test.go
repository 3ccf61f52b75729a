package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestRateLimitBlocksAfterMax(t *testing.T) {
	app := fiber.New()
	app.Post("/login", RateLimit("login", 2, time.Minute), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/login", nil), -1)
		require.NoError(t, err)
		statuses = append(statuses, resp.StatusCode)
	}

	require.Equal(t, []int{fiber.StatusOK, fiber.StatusOK, fiber.StatusTooManyRequests}, statuses)
}

func TestRateLimitKeysAuthenticatedUsersSeparately(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(LocalUsername, c.Get("X-User"))
		return c.Next()
	})
	app.Get("/papers", RateLimit("papers", 1, time.Minute), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	call := func(user string) int {
		req := httptest.NewRequest(http.MethodGet, "/papers", nil)
		req.Header.Set("X-User", user)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp.StatusCode
	}

	require.Equal(t, fiber.StatusOK, call("alice"))
	require.Equal(t, fiber.StatusOK, call("bob"))
	require.Equal(t, fiber.StatusTooManyRequests, call("alice"))
}
