package models

import id "volunteerhub/pkg/domain"

// VolunteerParticipation is one row of a volunteer's dashboard.
type VolunteerParticipation struct {
	Participation Participation `json:"participation"`
	Event         Event         `json:"event"`
	IsCheckedIn   bool          `json:"is_checked_in"`
}

// VolunteerSummary is the applicant detail shown to organizations.
type VolunteerSummary struct {
	UserID              id.UserID `json:"user_id"`
	Name                string    `json:"name"`
	Email               string    `json:"email,omitempty"`
	TotalVolunteerHours float64   `json:"total_volunteer_hours"`
}

// EventApplication pairs a participation with the applying volunteer.
type EventApplication struct {
	Participation Participation    `json:"participation"`
	Volunteer     VolunteerSummary `json:"volunteer"`
}

// EventSummary is an event with its current approved headcount.
type EventSummary struct {
	Event         Event `json:"event"`
	ApprovedCount int   `json:"approved_count"`
	SpotsLeft     int   `json:"spots_left"`
}
