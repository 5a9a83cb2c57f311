package models

import (
	"time"

	id "volunteerhub/pkg/domain"
)

// User is the local projection of an account managed by the identity service.
// TotalVolunteerHours is the cumulative, never decreasing hour total that
// drives badge awards.
type User struct {
	ID                  id.UserID `json:"id"`
	Role                id.Role   `json:"role"`
	Name                string    `json:"name"`
	Email               string    `json:"email,omitempty"`
	TotalVolunteerHours float64   `json:"total_volunteer_hours"`
	CreatedAt           time.Time `json:"created_at"`
}

// UserFromActor builds the row recorded the first time a caller is seen.
func UserFromActor(actor id.Actor, now time.Time) *User {
	return &User{
		ID:        actor.UserID,
		Role:      actor.Role,
		Name:      actor.Name,
		Email:     actor.Email,
		CreatedAt: now,
	}
}

func (u *User) AddHours(hours float64) {
	if hours > 0 {
		u.TotalVolunteerHours += hours
	}
}
