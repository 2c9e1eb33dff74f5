package server

import (
	"chat-room/errors"
	"chat-room/validation"

	"github.com/gofiber/fiber/v2"
)

// CreateParticipant handles POST /participants.
func (s *Server) CreateParticipant(c *fiber.Ctx) error {
	var req validation.ParticipantRequest
	if err := c.BodyParser(&req); err != nil {
		return s.writeError(c, malformedBody(err))
	}
	participant, err := s.chatService.Join(req.Name)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toParticipantResponse(participant))
}

// ListParticipants handles GET /participants.
func (s *Server) ListParticipants(c *fiber.Ctx) error {
	participants, err := s.chatService.ListParticipants()
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(toParticipantResponses(participants))
}

// PostMessage handles POST /messages on behalf of the User header.
func (s *Server) PostMessage(c *fiber.Ctx) error {
	var req validation.MessageRequest
	if err := c.BodyParser(&req); err != nil {
		return s.writeError(c, malformedBody(err))
	}
	message, err := s.chatService.PostMessage(identity(c), req)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMessageResponse(message))
}

// ListMessages handles GET /messages?limit=N. Without a User header only
// public messages are returned.
func (s *Server) ListMessages(c *fiber.Ctx) error {
	var limit *string
	if c.Context().QueryArgs().Has("limit") {
		raw := c.Query("limit")
		limit = &raw
	}
	messages, err := s.chatService.GetMessages(identity(c), limit)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(toMessageResponses(messages))
}

// UpdateMessage handles PUT /messages/:id.
func (s *Server) UpdateMessage(c *fiber.Ctx) error {
	var req validation.MessageRequest
	if err := c.BodyParser(&req); err != nil {
		return s.writeError(c, malformedBody(err))
	}
	message, err := s.chatService.UpdateMessage(c.Params("id"), identity(c), req)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(toMessageResponse(message))
}

// DeleteMessage handles DELETE /messages/:id.
func (s *Server) DeleteMessage(c *fiber.Ctx) error {
	if err := s.chatService.DeleteMessage(c.Params("id"), identity(c)); err != nil {
		return s.writeError(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}

// Heartbeat handles POST /status.
func (s *Server) Heartbeat(c *fiber.Ctx) error {
	if err := s.chatService.Heartbeat(identity(c)); err != nil {
		return s.writeError(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}

// identity reads the asserted sender. Header names are case-insensitive.
func identity(c *fiber.Ctx) string {
	return c.Get(identityHeader)
}

func malformedBody(err error) error {
	return errors.NewValidationError("body must be a JSON object: " + err.Error())
}
