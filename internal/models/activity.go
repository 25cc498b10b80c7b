// internal/models/activity.go
package models

import (
	"bytes"
	"encoding/json"
)

// Activity is one extracurricular offering. Name is the directory key; only
// Participants changes after seeding.
type Activity struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

// Details returns the wire view with a private copy of the roster.
func (a Activity) Details() ActivityDetails {
	participants := make([]string, len(a.Participants))
	copy(participants, a.Participants)
	return ActivityDetails{
		Description:     a.Description,
		Schedule:        a.Schedule,
		MaxParticipants: a.MaxParticipants,
		Participants:    participants,
	}
}

// ActivityDetails is the value side of the GET /activities object.
type ActivityDetails struct {
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

// Listing is an activity-name keyed object that encodes in insertion order.
type Listing struct {
	names   []string
	details map[string]ActivityDetails
}

func NewListing(capacity int) *Listing {
	return &Listing{
		names:   make([]string, 0, capacity),
		details: make(map[string]ActivityDetails, capacity),
	}
}

// Add appends name, replacing the details in place if it is already present.
func (l *Listing) Add(name string, details ActivityDetails) {
	if _, exists := l.details[name]; !exists {
		l.names = append(l.names, name)
	}
	l.details[name] = details
}

func (l *Listing) Get(name string) (ActivityDetails, bool) {
	d, ok := l.details[name]
	return d, ok
}

// Names returns the activity names in insertion order.
func (l *Listing) Names() []string {
	out := make([]string, len(l.names))
	copy(out, l.names)
	return out
}

func (l *Listing) Len() int {
	return len(l.names)
}

// MarshalJSON writes a JSON object whose keys follow insertion order.
func (l *Listing) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range l.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(l.details[name])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
