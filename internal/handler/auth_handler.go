package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/educonnect-api/internal/dto"
	"github.com/noah-isme/educonnect-api/internal/service"
	"github.com/noah-isme/educonnect-api/internal/utils"
)

// AuthHandler exposes the login endpoint.
type AuthHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(service service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register attaches auth endpoints; extra handlers run before login (rate limiting).
func (h *AuthHandler) Register(router fiber.Router, guards ...fiber.Handler) {
	handlers := append(guards, h.login)
	router.Post("/login", handlers...)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.Login(c.UserContext(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "login successful", response)
}

func (h *AuthHandler) handleError(c *fiber.Ctx, err error) error {
	if handled, resp := writeServiceError(c, err); handled {
		return resp
	}
	return internalError(c, h.logger, err)
}
