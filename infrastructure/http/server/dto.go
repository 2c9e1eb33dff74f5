package server

import (
	"chat-room/domain"

	"github.com/samber/lo"
)

type ParticipantResponse struct {
	Name       string `json:"name"`
	LastStatus int64  `json:"lastStatus"`
}

type MessageResponse struct {
	ID   string `json:"id"`
	From string `json:"from"`
	To   string `json:"to"`
	Text string `json:"text"`
	Type string `json:"type"`
	Time string `json:"time"`
}

type ErrorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

type HealthResponse struct {
	Status       string  `json:"status"`
	Participants int     `json:"participants"`
	RSS          uint64  `json:"rss"`
	CPU          float64 `json:"cpu"`
}

func toParticipantResponse(p domain.Participant) ParticipantResponse {
	return ParticipantResponse{Name: p.Name, LastStatus: p.LastSeen.UnixMilli()}
}

func toParticipantResponses(participants []domain.Participant) []ParticipantResponse {
	return lo.Map(participants, func(p domain.Participant, _ int) ParticipantResponse {
		return toParticipantResponse(p)
	})
}

func toMessageResponse(m domain.Message) MessageResponse {
	return MessageResponse{
		ID:   m.ID.String(),
		From: m.From,
		To:   m.To,
		Text: m.Text,
		Type: m.Type.String(),
		Time: m.Time,
	}
}

func toMessageResponses(messages []domain.Message) []MessageResponse {
	return lo.Map(messages, func(m domain.Message, _ int) MessageResponse {
		return toMessageResponse(m)
	})
}
