package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func roleApp(username, role string, allowed ...string) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if username != "" {
			c.Locals(LocalUsername, username)
		}
		if role != "" {
			c.Locals(LocalUserRole, role)
		}
		return c.Next()
	})
	app.Use(RequireRole(allowed...))
	app.Get("/guarded", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestRequireRole(t *testing.T) {
	cases := []struct {
		name     string
		username string
		role     string
		allowed  []string
		status   int
	}{
		{name: "teacher allowed, case folded", username: "admin", role: "Teacher", allowed: []string{"teacher"}, status: fiber.StatusOK},
		{name: "student on teacher route", username: "alice", role: "student", allowed: []string{"teacher"}, status: fiber.StatusForbidden},
		{name: "any of several roles", username: "alice", role: "student", allowed: []string{"teacher", "student"}, status: fiber.StatusOK},
		{name: "no identity", allowed: []string{"teacher"}, status: fiber.StatusUnauthorized},
		{name: "identity without role", username: "ghost", allowed: []string{"student"}, status: fiber.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := roleApp(tc.username, tc.role, tc.allowed...)
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/guarded", nil))
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)
		})
	}
}
