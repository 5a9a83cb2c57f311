package models

import (
	"time"

	id "volunteerhub/pkg/domain"
	dErrors "volunteerhub/pkg/domain-errors"
)

// Status is the lifecycle position of a participation.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusCompleted Status = "completed"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusCompleted:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// CanTransitionTo reports whether next is the single forward step from s.
// pending -> approved -> completed; nothing moves backwards.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusApproved
	case StatusApproved:
		return next == StatusCompleted
	}
	return false
}

// Participation is a volunteer's application to, and involvement in, one event.
//
// Invariants:
//   - ApprovedAt is set iff Status is approved or completed
//   - CompletedAt is set iff Status is completed
//   - VolunteerHours never decreases
//   - at most one Participation per (UserID, EventID), enforced by the store
type Participation struct {
	ID             id.ParticipationID `json:"id"`
	UserID         id.UserID          `json:"user_id"`
	EventID        id.EventID         `json:"event_id"`
	Status         Status             `json:"status"`
	VolunteerHours float64            `json:"volunteer_hours"`
	AppliedAt      time.Time          `json:"applied_at"`
	ApprovedAt     *time.Time         `json:"approved_at,omitempty"`
	CompletedAt    *time.Time         `json:"completed_at,omitempty"`
}

// NewParticipation creates a pending application.
func NewParticipation(participationID id.ParticipationID, userID id.UserID, eventID id.EventID, now time.Time) (*Participation, error) {
	if participationID.IsNil() || userID.IsNil() || eventID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "participation requires id, user and event")
	}
	return &Participation{
		ID:        participationID,
		UserID:    userID,
		EventID:   eventID,
		Status:    StatusPending,
		AppliedAt: now,
	}, nil
}

// IsOwnedBy reports whether userID is the volunteer who applied.
func (p *Participation) IsOwnedBy(userID id.UserID) bool {
	return !userID.IsNil() && p.UserID == userID
}

// CanApprove returns AlreadyApproved once the participation has left pending.
func (p *Participation) CanApprove() error {
	if !p.Status.CanTransitionTo(StatusApproved) {
		return dErrors.New(dErrors.CodeAlreadyApproved, "participation is already approved")
	}
	return nil
}

// ApplyApproval must only be called after CanApprove returns nil.
func (p *Participation) ApplyApproval(now time.Time) {
	p.Status = StatusApproved
	p.ApprovedAt = &now
}

// CanComplete requires the approved state.
func (p *Participation) CanComplete() error {
	if !p.Status.CanTransitionTo(StatusCompleted) {
		return dErrors.New(dErrors.CodeInvalidState, "participation must be approved to complete, status is "+p.Status.String())
	}
	return nil
}

// ApplyCompletion marks the participation completed and credits hours.
// Must only be called after CanComplete returns nil.
func (p *Participation) ApplyCompletion(now time.Time, credited float64) {
	p.Status = StatusCompleted
	p.CompletedAt = &now
	p.AddHours(credited)
}

// CanCheckIn requires the approved state. Completed participations no longer
// accrue sessions.
func (p *Participation) CanCheckIn() error {
	if p.Status != StatusApproved {
		return dErrors.New(dErrors.CodeInvalidState, "participation must be approved to check in, status is "+p.Status.String())
	}
	return nil
}

// AddHours credits hours; negative values are ignored.
func (p *Participation) AddHours(hours float64) {
	if hours > 0 {
		p.VolunteerHours += hours
	}
}
