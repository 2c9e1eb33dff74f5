package server

import (
	"chat-room/errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// StatusOf maps a service error to its HTTP status.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, errors.ErrValidation):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, errors.ErrParticipantAlreadyExists):
		return fiber.StatusConflict
	case errors.Is(err, errors.ErrParticipantNotFound), errors.Is(err, errors.ErrMessageNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, errors.ErrForbidden):
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

// writeError renders err as JSON. Storage failures are logged and reported
// with a generic message.
func (s *Server) writeError(c *fiber.Ctx, err error) error {
	status := StatusOf(err)
	body := ErrorResponse{Error: utils.StatusMessage(status), Message: err.Error()}

	var vErr *errors.ValidationError
	if errors.As(err, &vErr) {
		body.Details = vErr.Violations
	}
	if status == fiber.StatusInternalServerError {
		s.log.Error("Request failed", "method", c.Method(), "path", c.Path(), "error", err)
		body.Message = "the chat store is unavailable, try again later"
	}
	return c.Status(status).JSON(body)
}

