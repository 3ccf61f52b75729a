package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/educonnect-api/internal/middleware"
	"github.com/noah-isme/educonnect-api/internal/service"
	"github.com/noah-isme/educonnect-api/internal/utils"
)

// DashboardHandler exposes the teacher and student read views.
type DashboardHandler struct {
	service service.DashboardService
	logger  zerolog.Logger
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service service.DashboardService, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		logger:  logger.With().Str("component", "dashboard_handler").Logger(),
	}
}

// RegisterTeacher attaches teacher views.
func (h *DashboardHandler) RegisterTeacher(router fiber.Router) {
	router.Get("/dashboard", h.teacherDashboard)
	router.Get("/analytics", h.analytics)
}

// RegisterStudent attaches student views.
func (h *DashboardHandler) RegisterStudent(router fiber.Router) {
	router.Get("/dashboard", h.studentDashboard)
	router.Get("/results", h.studentResults)
}

func (h *DashboardHandler) teacherDashboard(c *fiber.Ctx) error {
	payload, err := h.service.TeacherDashboard(c.UserContext())
	if err != nil {
		return internalError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "dashboard retrieved", payload)
}

func (h *DashboardHandler) analytics(c *fiber.Ctx) error {
	payload, err := h.service.Analytics(c.UserContext())
	if err != nil {
		return internalError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "analytics retrieved", payload)
}

func (h *DashboardHandler) studentDashboard(c *fiber.Ctx) error {
	username, _ := middleware.CurrentUser(c)
	payload, err := h.service.StudentDashboard(c.UserContext(), username)
	if err != nil {
		return internalError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "dashboard retrieved", payload)
}

func (h *DashboardHandler) studentResults(c *fiber.Ctx) error {
	username, _ := middleware.CurrentUser(c)
	payload, err := h.service.StudentResults(c.UserContext(), username)
	if err != nil {
		return internalError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "results retrieved", payload)
}
