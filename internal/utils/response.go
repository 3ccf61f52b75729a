package utils

import "github.com/gofiber/fiber/v2"

// correlationHeader mirrors the header the correlation middleware writes on every response.
const correlationHeader = "X-Correlation-ID"

// APIResponse is the envelope every JSON endpoint answers with.
type APIResponse struct {
	Success       bool        `json:"success"`
	Data          interface{} `json:"data,omitempty"`
	Message       string      `json:"message"`
	Meta          interface{} `json:"meta,omitempty"`
	Details       interface{} `json:"details,omitempty"`
	CorrelationID string      `json:"correlation_id,omitempty"`
}

// SendSuccess answers 200 with data and a message.
func SendSuccess(c *fiber.Ctx, message string, data interface{}) error {
	return respond(c, fiber.StatusOK, APIResponse{Success: true, Data: data, Message: message})
}

// Created answers 201 for newly stored papers and submissions.
func Created(c *fiber.Ctx, message string, data interface{}) error {
	return respond(c, fiber.StatusCreated, APIResponse{Success: true, Data: data, Message: message})
}

// OK answers 200 with pagination metadata.
func OK(c *fiber.Ctx, data interface{}, message string, meta interface{}) error {
	return respond(c, fiber.StatusOK, APIResponse{Success: true, Data: data, Message: message, Meta: meta})
}

// SendError answers with an error message and no details.
func SendError(c *fiber.Ctx, status int, message string) error {
	return Fail(c, status, message, nil)
}

// Fail answers with an error payload. The request's correlation id is echoed so
// clients can quote it when reporting a failure.
func Fail(c *fiber.Ctx, status int, message string, details interface{}) error {
	return respond(c, status, APIResponse{
		Message:       message,
		Details:       details,
		CorrelationID: c.GetRespHeader(correlationHeader),
	})
}

func respond(c *fiber.Ctx, status int, body APIResponse) error {
	if body.Message == "" {
		if body.Success {
			body.Message = "success"
		} else {
			body.Message = "error"
		}
	}
	return c.Status(status).JSON(body)
}
