package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/educonnect-api/internal/dto"
	"github.com/noah-isme/educonnect-api/internal/middleware"
	"github.com/noah-isme/educonnect-api/internal/service"
	"github.com/noah-isme/educonnect-api/internal/utils"
)

// ProfileHandler lets a user view and edit their own account.
type ProfileHandler struct {
	service service.ProfileService
	logger  zerolog.Logger
}

// NewProfileHandler constructs the handler.
func NewProfileHandler(service service.ProfileService, logger zerolog.Logger) *ProfileHandler {
	return &ProfileHandler{
		service: service,
		logger:  logger.With().Str("component", "profile_handler").Logger(),
	}
}

// Register attaches profile routes.
func (h *ProfileHandler) Register(router fiber.Router) {
	router.Get("", h.get)
	router.Patch("", h.update)
}

func (h *ProfileHandler) get(c *fiber.Ctx) error {
	username, _ := middleware.CurrentUser(c)
	profile, err := h.service.Get(c.UserContext(), username)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "profile retrieved", profile)
}

func (h *ProfileHandler) update(c *fiber.Ctx) error {
	payload := dto.ProfileUpdateRequest{
		Password:        c.FormValue("password"),
		ConfirmPassword: c.FormValue("confirm_password"),
	}
	if name := c.FormValue("name"); name != "" {
		payload.Name = &name
	}
	if username := c.FormValue("username"); username != "" {
		payload.Username = &username
	}

	avatar, err := c.FormFile("avatar")
	if err != nil {
		avatar = nil
	}

	profile, err := h.service.Update(c.UserContext(), activityActorFromContext(c), payload, avatar)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "profile updated", profile)
}

func (h *ProfileHandler) handleError(c *fiber.Ctx, err error) error {
	if handled, resp := writeServiceError(c, err); handled {
		return resp
	}
	return internalError(c, h.logger, err)
}
