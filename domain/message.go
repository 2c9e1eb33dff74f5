// Package domain contains core concepts of the chat system.
// This file defines Message events and related rules.
// Only the owner of a message may change it and its visibility is derived
// from its type alone.
package domain

import (
	"github.com/google/uuid"
)

// BroadcastTarget is the recipient used by messages addressed to the whole room.
const BroadcastTarget = "Todos"

// TimeLayout is the display format of Message.Time.
const TimeLayout = "15:04:05"

const (
	JoinNotice  = "entra na sala..."
	LeaveNotice = "sai da sala..."
)

type MessageType int

const (
	Broadcast MessageType = iota
	Private
	Status
)

// String returns the wire name of the type.
func (t MessageType) String() string {
	switch t {
	case Broadcast:
		return "message"
	case Private:
		return "private_message"
	case Status:
		return "status"
	default:
		return "unknown"
	}
}

// ParseClientMessageType maps a type accepted from a client payload.
// Status messages are system generated and never accepted here.
func ParseClientMessageType(s string) (MessageType, bool) {
	switch s {
	case "message", "broadcast":
		return Broadcast, true
	case "private_message", "private":
		return Private, true
	default:
		return 0, false
	}
}

// ParseMessageType maps any stored wire name back to its tag.
func ParseMessageType(s string) (MessageType, bool) {
	if s == Status.String() {
		return Status, true
	}
	return ParseClientMessageType(s)
}

// Message represents a chat event.
type Message struct {
	ID   uuid.UUID
	Seq  uint64 // storage order, strictly increasing with creation
	From string
	To   string
	Text string
	Type MessageType
	Time string // display only
}

// MessagePatch holds the fields an owner may replace.
type MessagePatch struct {
	To   string
	Text string
	Type MessageType
}

// IsVisibleTo tells whether requester may read m.
func (m Message) IsVisibleTo(requester string) bool {
	switch m.Type {
	case Broadcast, Status:
		return true
	case Private:
		return m.To == requester || m.From == requester
	default:
		return false
	}
}

func (m Message) IsOwnedBy(requester string) bool {
	return m.From == requester
}

// Apply returns m with the patch fields replaced. ID, From, Seq and Time are kept.
func (m Message) Apply(patch MessagePatch) Message {
	m.To = patch.To
	m.Text = patch.Text
	m.Type = patch.Type
	return m
}

// NewStatusMessage builds a join or leave notice for name.
func NewStatusMessage(name, notice string) Message {
	return Message{
		From: name,
		To:   BroadcastTarget,
		Text: notice,
		Type: Status,
	}
}
