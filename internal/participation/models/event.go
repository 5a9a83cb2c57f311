package models

import (
	"strings"
	"time"
	"unicode/utf8"

	id "volunteerhub/pkg/domain"
	dErrors "volunteerhub/pkg/domain-errors"
)

const (
	maxTitleLength       = 200
	maxLocationLength    = 255
	maxDescriptionLength = 5000
)

// Event is a scheduled shift published by an organization.
//
// Invariants:
//   - Title is non-empty
//   - EndTime is after StartTime
//   - MaxParticipants > 0, counted over approved participations only
type Event struct {
	ID              id.EventID        `json:"id"`
	OrganizationID  id.OrganizationID `json:"organization_id"`
	Title           string            `json:"title"`
	Description     string            `json:"description,omitempty"`
	Location        string            `json:"location,omitempty"`
	StartTime       time.Time         `json:"start_time"`
	EndTime         time.Time         `json:"end_time"`
	MaxParticipants int               `json:"max_participants"`
	CreatedAt       time.Time         `json:"created_at"`
}

// EventFilter narrows an event listing. Zero fields match everything.
type EventFilter struct {
	OrganizationID id.OrganizationID
	EndsAfter      time.Time
}

// Matches reports whether e passes the filter.
func (f EventFilter) Matches(e *Event) bool {
	if !f.OrganizationID.IsNil() && e.OrganizationID != f.OrganizationID {
		return false
	}
	if !f.EndsAfter.IsZero() && !e.EndTime.After(f.EndsAfter) {
		return false
	}
	return true
}

func NewEvent(
	eventID id.EventID,
	orgID id.OrganizationID,
	title, description, location string,
	start, end time.Time,
	maxParticipants int,
	now time.Time,
) (*Event, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "title is required")
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return nil, dErrors.New(dErrors.CodeValidation, "title must be 200 characters or less")
	}
	if utf8.RuneCountInString(location) > maxLocationLength {
		return nil, dErrors.New(dErrors.CodeValidation, "location must be 255 characters or less")
	}
	if utf8.RuneCountInString(description) > maxDescriptionLength {
		return nil, dErrors.New(dErrors.CodeValidation, "description must be 5000 characters or less")
	}
	if start.IsZero() || end.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "start_time and end_time are required")
	}
	if !end.After(start) {
		return nil, dErrors.New(dErrors.CodeValidation, "end_time must be after start_time")
	}
	if maxParticipants <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "max_participants must be greater than zero")
	}
	if orgID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "event requires an organization")
	}
	return &Event{
		ID:              eventID,
		OrganizationID:  orgID,
		Title:           title,
		Description:     strings.TrimSpace(description),
		Location:        strings.TrimSpace(location),
		StartTime:       start,
		EndTime:         end,
		MaxParticipants: maxParticipants,
		CreatedAt:       now,
	}, nil
}

// HasEnded reports whether now is at or past the scheduled end.
func (e *Event) HasEnded(now time.Time) bool {
	return !now.Before(e.EndTime)
}

func (e *Event) IsOwnedBy(orgID id.OrganizationID) bool {
	return !orgID.IsNil() && e.OrganizationID == orgID
}

// CheckCapacity returns CapacityExceeded when approved already fills the event.
func (e *Event) CheckCapacity(approved int) error {
	if approved >= e.MaxParticipants {
		return dErrors.New(dErrors.CodeCapacityExceeded, "event has reached max participants")
	}
	return nil
}

// ScheduledHours is the whole-hour duration credited on completion.
func (e *Event) ScheduledHours() float64 {
	return ScheduledHours(e.StartTime, e.EndTime)
}
