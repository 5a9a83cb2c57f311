package handler

import (
	"strings"
	"time"

	"volunteerhub/internal/participation/service"
	dErrors "volunteerhub/pkg/domain-errors"
)

// CreateEventRequest is the body of POST /events.
type CreateEventRequest struct {
	Title           string    `json:"title" validate:"required,max=200"`
	Description     string    `json:"description" validate:"max=5000"`
	Location        string    `json:"location" validate:"max=255"`
	StartTime       time.Time `json:"start_time" validate:"required"`
	EndTime         time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
	MaxParticipants int       `json:"max_participants" validate:"required,gt=0"`
}

// Validate trims free text after tag validation.
func (r *CreateEventRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.Location = strings.TrimSpace(r.Location)
	if r.Title == "" {
		return dErrors.New(dErrors.CodeValidation, "title is required")
	}
	return nil
}

func (r *CreateEventRequest) toInput() service.CreateEventInput {
	return service.CreateEventInput{
		Title:           r.Title,
		Description:     r.Description,
		Location:        r.Location,
		StartTime:       r.StartTime,
		EndTime:         r.EndTime,
		MaxParticipants: r.MaxParticipants,
	}
}
