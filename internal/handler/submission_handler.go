package handler

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/educonnect-api/internal/dto"
	"github.com/noah-isme/educonnect-api/internal/service"
	"github.com/noah-isme/educonnect-api/internal/utils"
)

// SubmissionHandler wires solution upload, review, grading and report routes.
type SubmissionHandler struct {
	submissions service.SubmissionService
	grading     service.GradingService
	reports     service.ReportService
	logger      zerolog.Logger
}

// NewSubmissionHandler constructs the handler.
func NewSubmissionHandler(submissions service.SubmissionService, grading service.GradingService, reports service.ReportService, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		submissions: submissions,
		grading:     grading,
		reports:     reports,
		logger:      logger.With().Str("component", "submission_handler").Logger(),
	}
}

// RegisterStudent attaches the upload route behind guard.
func (h *SubmissionHandler) RegisterStudent(router fiber.Router, guard fiber.Handler) {
	router.Post("", guard, h.create)
}

// RegisterTeacher attaches review and grading routes behind guard.
func (h *SubmissionHandler) RegisterTeacher(router fiber.Router, guard fiber.Handler) {
	router.Get("/:group", guard, h.groupPage)
	router.Post("/:group/grade", guard, h.grade)
}

// RegisterReport attaches the report download available to both roles.
func (h *SubmissionHandler) RegisterReport(router fiber.Router) {
	router.Get("/:group/report", h.report)
}

func (h *SubmissionHandler) create(c *fiber.Ctx) error {
	paperID, err := strconv.ParseUint(strings.TrimSpace(c.FormValue("paper_id")), 10, 64)
	if err != nil || paperID == 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "paper_id is required")
	}

	form, err := c.MultipartForm()
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "multipart form expected")
	}

	result, err := h.submissions.Create(c.UserContext(), activityActorFromContext(c), uint(paperID), form.File["files"])
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.Created(c, "solution submitted", result)
}

func (h *SubmissionHandler) groupPage(c *fiber.Ctx) error {
	// Unparseable pages fall back to the first page; GroupPage clamps the rest.
	page := c.QueryInt("page", 1)

	result, err := h.submissions.GroupPage(c.UserContext(), c.Params("group"), page)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission retrieved", result)
}

func (h *SubmissionHandler) grade(c *fiber.Ctx) error {
	var payload dto.GradeRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	result, err := h.grading.Grade(c.UserContext(), activityActorFromContext(c), c.Params("group"), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "grades saved", result)
}

func (h *SubmissionHandler) report(c *fiber.Ctx) error {
	rendered, err := h.reports.Generate(c.UserContext(), activityActorFromContext(c), c.Params("group"))
	if err != nil {
		return h.handleError(c, err)
	}

	c.Attachment(rendered.Filename)
	c.Type("pdf")
	return c.Send(rendered.Content)
}

func (h *SubmissionHandler) handleError(c *fiber.Ctx, err error) error {
	if handled, resp := writeServiceError(c, err); handled {
		return resp
	}
	return internalError(c, h.logger, err)
}
