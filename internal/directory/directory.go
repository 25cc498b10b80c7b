// Package directory owns the in-memory activity roster.
//
// The set of activities is fixed when a Directory is built. Each activity
// carries its own mutex, so a signup or unregister is one atomic
// check-then-mutate step and operations on different activities never
// contend.
package directory

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"activity-signup/internal/models"
)

var (
	ErrActivityNotFound  = errors.New("ACTIVITY_NOT_FOUND")
	ErrAlreadyRegistered = errors.New("ALREADY_REGISTERED")
	ErrNotRegistered     = errors.New("NOT_REGISTERED")
	ErrInvalidSeed       = errors.New("INVALID_SEED")
)

// Registration describes a successful roster change.
type Registration struct {
	Activity         string
	Email            string
	Message          string
	ParticipantCount int
}

type entry struct {
	mu       sync.Mutex
	activity models.Activity
	members  map[string]struct{}
}

// Directory is safe for concurrent use.
type Directory struct {
	entries map[string]*entry
	order   []string
}

// New builds a Directory from seed activities, keeping their order. The seed
// slice is copied.
func New(activities []models.Activity) (*Directory, error) {
	d := &Directory{
		entries: make(map[string]*entry, len(activities)),
		order:   make([]string, 0, len(activities)),
	}

	for _, a := range activities {
		if strings.TrimSpace(a.Name) == "" {
			return nil, fmt.Errorf("%w: activity name is empty", ErrInvalidSeed)
		}
		if _, dup := d.entries[a.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate activity %q", ErrInvalidSeed, a.Name)
		}
		if a.MaxParticipants < 0 {
			return nil, fmt.Errorf("%w: activity %q has negative max_participants", ErrInvalidSeed, a.Name)
		}

		e := &entry{
			activity: a,
			members:  make(map[string]struct{}, len(a.Participants)),
		}
		e.activity.Participants = make([]string, 0, len(a.Participants))
		for _, email := range a.Participants {
			if _, dup := e.members[email]; dup {
				return nil, fmt.Errorf("%w: %s listed twice in %q", ErrInvalidSeed, email, a.Name)
			}
			e.members[email] = struct{}{}
			e.activity.Participants = append(e.activity.Participants, email)
		}

		d.entries[a.Name] = e
		d.order = append(d.order, a.Name)
	}

	return d, nil
}

// NewDefault builds a Directory over the built-in school catalog.
func NewDefault() *Directory {
	d, err := New(DefaultActivities())
	if err != nil {
		panic(fmt.Sprintf("directory: built-in catalog is invalid: %v", err))
	}
	return d
}

// ListActivities returns a snapshot of every activity in seed order.
func (d *Directory) ListActivities() *models.Listing {
	listing := models.NewListing(len(d.order))
	for _, name := range d.order {
		e := d.entries[name]
		e.mu.Lock()
		details := e.activity.Details()
		e.mu.Unlock()
		listing.Add(name, details)
	}
	return listing
}

// Get returns a snapshot of one activity.
func (d *Directory) Get(name string) (models.ActivityDetails, error) {
	e, ok := d.entries[name]
	if !ok {
		return models.ActivityDetails{}, fmt.Errorf("%w: %q", ErrActivityNotFound, name)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.activity.Details(), nil
}

// Names returns the activity names in seed order.
func (d *Directory) Names() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// SignUp appends email to the activity roster.
func (d *Directory) SignUp(activityName, email string) (*Registration, error) {
	e, ok := d.entries[activityName]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrActivityNotFound, activityName)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.members[email]; exists {
		return nil, fmt.Errorf("%w: %s in %q", ErrAlreadyRegistered, email, activityName)
	}
	e.members[email] = struct{}{}
	e.activity.Participants = append(e.activity.Participants, email)

	return &Registration{
		Activity:         activityName,
		Email:            email,
		Message:          fmt.Sprintf("Signed up %s for %s", email, activityName),
		ParticipantCount: len(e.activity.Participants),
	}, nil
}

// Unregister removes email from the activity roster, keeping the order of the
// remaining participants.
func (d *Directory) Unregister(activityName, email string) (*Registration, error) {
	e, ok := d.entries[activityName]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrActivityNotFound, activityName)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.members[email]; !exists {
		return nil, fmt.Errorf("%w: %s in %q", ErrNotRegistered, email, activityName)
	}
	delete(e.members, email)

	participants := e.activity.Participants
	for i, p := range participants {
		if p == email {
			e.activity.Participants = append(participants[:i], participants[i+1:]...)
			break
		}
	}

	return &Registration{
		Activity:         activityName,
		Email:            email,
		Message:          fmt.Sprintf("Unregistered %s from %s", email, activityName),
		ParticipantCount: len(e.activity.Participants),
	}, nil
}
