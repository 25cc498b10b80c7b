// internal/models/notification.go
package models

import "time"

// RosterEventType names the roster change that produced an event.
type RosterEventType string

const (
	RosterEventSignup     RosterEventType = "signup"
	RosterEventUnregister RosterEventType = "unregister"
)

// RosterEvent is published after a participant list changes.
type RosterEvent struct {
	ID               string          `json:"id"`
	Type             RosterEventType `json:"type"`
	Activity         string          `json:"activity"`
	Email            string          `json:"email"`
	ParticipantCount int             `json:"participant_count"`
	OccurredAt       time.Time       `json:"occurred_at"`
}
