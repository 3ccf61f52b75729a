package handler

import (
	"mime"
	"path"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/educonnect-api/internal/service"
	"github.com/noah-isme/educonnect-api/internal/utils"
)

// FileHandler serves blobs kept by the local storage backend.
type FileHandler struct {
	uploads service.UploadService
	logger  zerolog.Logger
}

// NewFileHandler constructs the handler.
func NewFileHandler(uploads service.UploadService, logger zerolog.Logger) *FileHandler {
	return &FileHandler{
		uploads: uploads,
		logger:  logger.With().Str("component", "file_handler").Logger(),
	}
}

// Register attaches the wildcard file route.
func (h *FileHandler) Register(router fiber.Router) {
	router.Get("/*", h.serve)
}

func (h *FileHandler) serve(c *fiber.Ctx) error {
	ref := strings.TrimPrefix(c.Params("*"), "/")
	if ref == "" || strings.Contains(ref, "..") {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid file reference")
	}

	reader, err := h.uploads.Open(c.UserContext(), ref)
	if err != nil {
		if handled, resp := writeServiceError(c, err); handled {
			return resp
		}
		return internalError(c, h.logger, err)
	}

	if contentType := mime.TypeByExtension(path.Ext(ref)); contentType != "" {
		c.Set(fiber.HeaderContentType, contentType)
	}
	return streamBlob(c, reader)
}
