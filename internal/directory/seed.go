package directory

import "activity-signup/internal/models"

// DefaultActivities returns a fresh copy of the Mergington High School catalog.
func DefaultActivities() []models.Activity {
	return []models.Activity{
		{
			Name:            "Chess Club",
			Description:     "Learn strategies and compete in chess tournaments",
			Schedule:        "Fridays, 3:30 PM - 5:00 PM",
			MaxParticipants: 12,
			Participants:    []string{"michael@mergington.edu", "daniel@mergington.edu"},
		},
		{
			Name:            "Programming Class",
			Description:     "Learn programming fundamentals and build software projects",
			Schedule:        "Tuesdays and Thursdays, 3:30 PM - 4:30 PM",
			MaxParticipants: 20,
			Participants:    []string{"emma@mergington.edu", "sophia@mergington.edu"},
		},
		{
			Name:            "Gym Class",
			Description:     "Physical education and sports activities",
			Schedule:        "Mondays, Wednesdays, Fridays, 2:00 PM - 3:00 PM",
			MaxParticipants: 30,
			Participants:    []string{"john@mergington.edu", "olivia@mergington.edu"},
		},
		{
			Name:            "Basketball Team",
			Description:     "Practice drills and compete against other schools",
			Schedule:        "Tuesdays and Thursdays, 4:00 PM - 6:00 PM",
			MaxParticipants: 15,
			Participants:    []string{"james@mergington.edu"},
		},
		{
			Name:            "Tennis Club",
			Description:     "Improve your serve and play in singles and doubles matches",
			Schedule:        "Wednesdays, 3:30 PM - 5:00 PM",
			MaxParticipants: 10,
			Participants:    []string{"liam@mergington.edu"},
		},
		{
			Name:            "Art Studio",
			Description:     "Explore painting, drawing and sculpture",
			Schedule:        "Mondays, 3:30 PM - 5:00 PM",
			MaxParticipants: 18,
			Participants:    []string{"ava@mergington.edu", "mia@mergington.edu"},
		},
		{
			Name:            "Music Ensemble",
			Description:     "Rehearse and perform with the school band and choir",
			Schedule:        "Thursdays, 3:30 PM - 5:00 PM",
			MaxParticipants: 25,
			Participants:    []string{"noah@mergington.edu"},
		},
		{
			Name:            "Debate Club",
			Description:     "Sharpen public speaking and argumentation skills",
			Schedule:        "Fridays, 4:00 PM - 5:30 PM",
			MaxParticipants: 16,
			Participants:    []string{"isabella@mergington.edu", "lucas@mergington.edu"},
		},
		{
			Name:            "Science Club",
			Description:     "Run experiments and prepare projects for the science fair",
			Schedule:        "Wednesdays, 4:00 PM - 5:30 PM",
			MaxParticipants: 20,
			Participants:    []string{"charlotte@mergington.edu"},
		},
	}
}
