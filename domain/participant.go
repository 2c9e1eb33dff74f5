// Package domain contains core concepts of the chat system.
// This file defines Participant entities and related invariants.
// No runtime, network, or UI logic should be added here.
package domain

import "time"

// Participant is an active presence record. Name is the identity shared with
// the message log and is unique among active participants.
type Participant struct {
	Name     string
	LastSeen time.Time
	JoinedAt time.Time
}

// IsStale reports whether the participant has been silent for strictly longer
// than threshold at instant now.
func (p Participant) IsStale(now time.Time, threshold time.Duration) bool {
	return now.Sub(p.LastSeen) > threshold
}
