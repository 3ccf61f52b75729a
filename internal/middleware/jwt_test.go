package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestJWTProtectedBindsUsernameAndRole(t *testing.T) {
	token, expiresAt, err := IssueToken("secret", "alice", "Student", time.Hour, time.Now())
	require.NoError(t, err)
	require.True(t, expiresAt.After(time.Now()))

	app := fiber.New()
	app.Use(JWTProtected("secret"))
	app.Get("/", func(c *fiber.Ctx) error {
		username, role := CurrentUser(c)
		return c.SendString(username + "|" + role)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, "alice|student", string(body))
}

func TestJWTProtectedRejectsBadTokens(t *testing.T) {
	expired, _, err := IssueToken("secret", "alice", "student", -time.Minute, time.Now())
	require.NoError(t, err)
	foreign, _, err := IssueToken("other", "alice", "student", time.Hour, time.Now())
	require.NoError(t, err)

	app := fiber.New()
	app.Use(JWTProtected("secret"))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	for _, header := range []string{"", "Token abc", "Bearer ", "Bearer " + expired, "Bearer " + foreign} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, header)
	}
}
