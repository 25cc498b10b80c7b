package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListing_MarshalPreservesInsertionOrder(t *testing.T) {
	l := NewListing(3)
	l.Add("Zoology Club", ActivityDetails{Description: "z", Schedule: "Mon", MaxParticipants: 5, Participants: []string{}})
	l.Add("Art Studio", ActivityDetails{Description: "a", Schedule: "Tue", MaxParticipants: 8, Participants: []string{"a@x.edu"}})
	l.Add("Music Ensemble", ActivityDetails{Description: "m", Schedule: "Wed", MaxParticipants: 10, Participants: nil})

	data, err := json.Marshal(l)
	require.NoError(t, err)

	assert.Equal(t,
		`{"Zoology Club":{"description":"z","schedule":"Mon","max_participants":5,"participants":[]},`+
			`"Art Studio":{"description":"a","schedule":"Tue","max_participants":8,"participants":["a@x.edu"]},`+
			`"Music Ensemble":{"description":"m","schedule":"Wed","max_participants":10,"participants":null}}`,
		string(data))
}

func TestListing_AddReplacesWithoutReordering(t *testing.T) {
	l := NewListing(0)
	l.Add("Chess Club", ActivityDetails{Description: "old"})
	l.Add("Gym Class", ActivityDetails{Description: "gym"})
	l.Add("Chess Club", ActivityDetails{Description: "new"})

	assert.Equal(t, []string{"Chess Club", "Gym Class"}, l.Names())
	assert.Equal(t, 2, l.Len())

	d, ok := l.Get("Chess Club")
	require.True(t, ok)
	assert.Equal(t, "new", d.Description)

	_, ok = l.Get("Debate Club")
	assert.False(t, ok)
}

func TestListing_EmptyEncodesAsObject(t *testing.T) {
	data, err := json.Marshal(NewListing(0))
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}

func TestActivity_DetailsCopiesRoster(t *testing.T) {
	a := Activity{Name: "Chess Club", Participants: []string{"a@x.edu"}}
	d := a.Details()
	d.Participants[0] = "mutated@x.edu"

	assert.Equal(t, "a@x.edu", a.Participants[0])
}
