//go:generate go run go.uber.org/mock/mockgen -source=chat_service.go -destination=../mocks/mock_chat_service.go -package=mocks
package services

import (
	"chat-room/domain"
	"chat-room/errors"
	"chat-room/moderation"
	"chat-room/repositories"
	"chat-room/validation"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

type IChatService interface {
	Join(name string) (domain.Participant, error)
	ListParticipants() ([]domain.Participant, error)
	Heartbeat(user string) error
	PostMessage(user string, req validation.MessageRequest) (domain.Message, error)
	GetMessages(user string, limit *string) ([]domain.Message, error)
	UpdateMessage(id, user string, req validation.MessageRequest) (domain.Message, error)
	DeleteMessage(id, user string) error
}

// ChatService turns raw request input into registry and store calls.
// Every text field goes through the sanitizer then the validator first; a
// validation failure ends the request before any storage access.
type ChatService struct {
	log          *slog.Logger
	participants repositories.IParticipantRepository
	messages     repositories.IMessageRepository
	sanitizer    *moderation.Sanitizer
	moderator    *moderation.Moderator
}

func NewChatService(
	log *slog.Logger,
	participants repositories.IParticipantRepository,
	messages repositories.IMessageRepository,
	sanitizer *moderation.Sanitizer,
	moderator *moderation.Moderator,
) *ChatService {
	return &ChatService{
		log:          log,
		participants: participants,
		messages:     messages,
		sanitizer:    sanitizer,
		moderator:    moderator,
	}
}

func (s *ChatService) Join(name string) (domain.Participant, error) {
	req := validation.ParticipantRequest{Name: s.sanitizer.Sanitize(name)}
	if err := validation.ValidateParticipant(req); err != nil {
		return domain.Participant{}, err
	}
	return s.participants.Join(req.Name)
}

func (s *ChatService) ListParticipants() ([]domain.Participant, error) {
	return s.participants.List()
}

// Heartbeat treats a missing identity like an unknown participant.
func (s *ChatService) Heartbeat(user string) error {
	user = s.sanitizer.Sanitize(user)
	if user == "" {
		return errors.ErrParticipantNotFound
	}
	return s.participants.Heartbeat(user)
}

// PostMessage stores a message authored by user, who must be an active participant.
func (s *ChatService) PostMessage(user string, req validation.MessageRequest) (domain.Message, error) {
	user = s.sanitizer.Sanitize(user)
	req = s.sanitizeMessage(req)

	var violations []string
	if err := validation.ValidateIdentity(user); err != nil {
		violations = append(violations, violationsOf(err)...)
	}
	if err := validation.ValidateMessage(req); err != nil {
		violations = append(violations, violationsOf(err)...)
	}
	if len(violations) > 0 {
		return domain.Message{}, errors.NewValidationError(violations...)
	}

	active, err := s.participants.IsActive(user)
	if err != nil {
		return domain.Message{}, err
	}
	if !active {
		return domain.Message{}, errors.NewValidationError(fmt.Sprintf("sender '%s' is not an active participant", user))
	}

	patch := s.toPatch(req)
	return s.messages.Append(domain.Message{
		From: user,
		To:   patch.To,
		Text: patch.Text,
		Type: patch.Type,
	})
}

// GetMessages returns what user may read. A nil limit means no limit; an
// explicit one must be a positive integer.
func (s *ChatService) GetMessages(user string, limit *string) ([]domain.Message, error) {
	n := 0
	if limit != nil {
		var err error
		if n, err = validation.ParseLimit(*limit); err != nil {
			return nil, err
		}
	}
	return s.messages.Query(s.sanitizer.Sanitize(user), n)
}

func (s *ChatService) UpdateMessage(id, user string, req validation.MessageRequest) (domain.Message, error) {
	req = s.sanitizeMessage(req)
	if err := validation.ValidateMessage(req); err != nil {
		return domain.Message{}, err
	}
	messageID, err := uuid.Parse(id)
	if err != nil {
		return domain.Message{}, errors.ErrMessageNotFound
	}
	return s.messages.UpdateOwned(messageID, s.sanitizer.Sanitize(user), s.toPatch(req))
}

func (s *ChatService) DeleteMessage(id, user string) error {
	messageID, err := uuid.Parse(id)
	if err != nil {
		return errors.ErrMessageNotFound
	}
	return s.messages.DeleteOwned(messageID, s.sanitizer.Sanitize(user))
}

func (s *ChatService) sanitizeMessage(req validation.MessageRequest) validation.MessageRequest {
	return validation.MessageRequest{
		To:   s.sanitizer.Sanitize(req.To),
		Text: s.sanitizer.Sanitize(req.Text),
		Type: s.sanitizer.Sanitize(req.Type),
	}
}

// toPatch expects a validated request.
func (s *ChatService) toPatch(req validation.MessageRequest) domain.MessagePatch {
	messageType, _ := domain.ParseClientMessageType(req.Type)
	text := req.Text
	if s.moderator != nil {
		text, _ = s.moderator.Censor(text)
	}
	return domain.MessagePatch{To: req.To, Text: text, Type: messageType}
}

func violationsOf(err error) []string {
	var vErr *errors.ValidationError
	if errors.As(err, &vErr) {
		return vErr.Violations
	}
	return []string{err.Error()}
}
