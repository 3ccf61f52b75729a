package handler

import (
	"io"
	"path"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/educonnect-api/internal/dto"
	"github.com/noah-isme/educonnect-api/internal/service"
	"github.com/noah-isme/educonnect-api/internal/utils"
)

// PaperHandler wires exam paper routes.
type PaperHandler struct {
	service service.PaperService
	uploads service.UploadService
	logger  zerolog.Logger
}

// NewPaperHandler constructs the handler.
func NewPaperHandler(service service.PaperService, uploads service.UploadService, logger zerolog.Logger) *PaperHandler {
	return &PaperHandler{
		service: service,
		uploads: uploads,
		logger:  logger.With().Str("component", "paper_handler").Logger(),
	}
}

// Register attaches routes readable by any authenticated user.
func (h *PaperHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id/download", h.download)
}

// RegisterManagement attaches the teacher-only routes behind guard.
func (h *PaperHandler) RegisterManagement(router fiber.Router, guard fiber.Handler) {
	router.Post("", guard, h.upload)
	router.Patch("/:id", guard, h.rename)
	router.Delete("/:id", guard, h.delete)
}

func (h *PaperHandler) list(c *fiber.Ctx) error {
	papers, err := h.service.List(c.UserContext())
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "papers retrieved", papers)
}

func (h *PaperHandler) upload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		file = nil
	}

	paper, err := h.service.Upload(c.UserContext(), activityActorFromContext(c), c.FormValue("title"), file)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.Created(c, "paper uploaded", paper)
}

func (h *PaperHandler) rename(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.PaperRenameRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	paper, err := h.service.Rename(c.UserContext(), activityActorFromContext(c), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "paper renamed", paper)
}

func (h *PaperHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.service.Delete(c.UserContext(), activityActorFromContext(c), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "paper deleted", result)
}

func (h *PaperHandler) download(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	paper, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	if isRemoteRef(paper.Filename) {
		return c.Redirect(paper.Filename, fiber.StatusFound)
	}

	reader, err := h.uploads.Open(c.UserContext(), paper.Filename)
	if err != nil {
		return h.handleError(c, err)
	}

	c.Attachment(downloadName(paper.Title, ".pdf"))
	c.Type("pdf")
	return streamBlob(c, reader)
}

func (h *PaperHandler) handleError(c *fiber.Ctx, err error) error {
	if handled, resp := writeServiceError(c, err); handled {
		return resp
	}
	return internalError(c, h.logger, err)
}

func isRemoteRef(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "http://")
}

func downloadName(title, ext string) string {
	name := strings.TrimSpace(path.Base(strings.ReplaceAll(title, "\\", "/")))
	if name == "" || name == "." || name == "/" {
		name = "download"
	}
	if !strings.HasSuffix(strings.ToLower(name), ext) {
		name += ext
	}
	return name
}

// streamBlob hands the blob to fasthttp, which closes it after the body is written.
func streamBlob(c *fiber.Ctx, reader io.ReadCloser) error {
	return c.SendStream(reader)
}
