package handler

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/educonnect-api/internal/dto"
	"github.com/noah-isme/educonnect-api/internal/service"
	"github.com/noah-isme/educonnect-api/internal/utils"
)

// ActivityHandler exposes the audit log to teachers.
type ActivityHandler struct {
	service service.ActivityService
	logger  zerolog.Logger
}

// NewActivityHandler constructs the handler.
func NewActivityHandler(service service.ActivityService, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		service: service,
		logger:  logger.With().Str("component", "activity_handler").Logger(),
	}
}

// Register attaches the activity route.
func (h *ActivityHandler) Register(router fiber.Router) {
	router.Get("/activity", h.list)
}

func (h *ActivityHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page_size")
	}

	req := dto.ActivityListRequest{
		Page:       page,
		PageSize:   pageSize,
		Actor:      strings.TrimSpace(c.Query("actor")),
		Action:     strings.TrimSpace(c.Query("action")),
		EntityType: strings.TrimSpace(c.Query("entity_type")),
		EntityID:   strings.TrimSpace(c.Query("entity_id")),
	}
	if raw := strings.TrimSpace(c.Query("since")); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "since must be an RFC3339 timestamp")
		}
		req.Since = &since
	}

	result, err := h.service.List(c.UserContext(), req)
	if err != nil {
		return internalError(c, h.logger, err)
	}

	return utils.OK(c, result.Items, "activity retrieved", result.Pagination)
}
