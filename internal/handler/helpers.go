package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/educonnect-api/internal/middleware"
	"github.com/noah-isme/educonnect-api/internal/service"
	"github.com/noah-isme/educonnect-api/internal/utils"
)

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	value := c.Params(name)
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil || parsed == 0 {
		return 0, errors.New("invalid identifier")
	}
	return uint(parsed), nil
}

func activityActorFromContext(c *fiber.Ctx) service.ActivityActor {
	username, role := middleware.CurrentUser(c)
	return service.ActivityActor{Username: username, Role: role}
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

// writeServiceError maps the shared service sentinels onto HTTP statuses.
// It returns false when err is not one of them.
func writeServiceError(c *fiber.Ctx, err error) (bool, error) {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrors):
		return true, utils.Fail(c, fiber.StatusBadRequest, "validation failed", validationDetails(validationErrors))
	case errors.Is(err, service.ErrValidation):
		return true, utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		return true, utils.SendError(c, fiber.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, service.ErrForbidden):
		return true, utils.SendError(c, fiber.StatusForbidden, "forbidden")
	case errors.Is(err, service.ErrPaperNotFound):
		return true, utils.SendError(c, fiber.StatusNotFound, "paper not found")
	case errors.Is(err, service.ErrSubmissionNotFound):
		return true, utils.SendError(c, fiber.StatusNotFound, "submission not found")
	case errors.Is(err, service.ErrUserNotFound):
		return true, utils.SendError(c, fiber.StatusNotFound, "user not found")
	case errors.Is(err, service.ErrFileNotFound):
		return true, utils.SendError(c, fiber.StatusNotFound, "file not found")
	case errors.Is(err, service.ErrDuplicateSubmission):
		return true, utils.SendError(c, fiber.StatusConflict, "you have already submitted a solution for this paper")
	case errors.Is(err, service.ErrUsernameTaken):
		return true, utils.SendError(c, fiber.StatusConflict, "username already taken")
	case errors.Is(err, service.ErrReportNotReady):
		return true, utils.SendError(c, fiber.StatusConflict, "report will be available only after grading")
	}
	return false, nil
}

func validationDetails(errs validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(errs))
	for _, fieldErr := range errs {
		details[strings.ToLower(fieldErr.Field())] = fieldErr.Tag()
	}
	return details
}

func internalError(c *fiber.Ctx, logger zerolog.Logger, err error) error {
	requestLogger(logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
