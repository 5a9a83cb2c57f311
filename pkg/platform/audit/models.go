package audit

import (
	"time"

	"github.com/google/uuid"

	id "volunteerhub/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
type EventCategory string

const (
	// CategoryCompliance covers events that change credited hours or badges.
	// Downstream consumers treat these as the volunteer's service record.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers routine workflow activity.
	CategoryOperations EventCategory = "operations"
)

type AuditEvent string

const (
	EventEventCreated           AuditEvent = "event_created"
	EventParticipationApplied   AuditEvent = "participation_applied"
	EventParticipationApproved  AuditEvent = "participation_approved"
	EventParticipationCompleted AuditEvent = "participation_completed"
	EventSessionCheckedIn       AuditEvent = "session_checked_in"
	EventSessionCheckedOut      AuditEvent = "session_checked_out"
	EventBadgeAwarded           AuditEvent = "badge_awarded"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventParticipationCompleted: CategoryCompliance,
	EventSessionCheckedOut:      CategoryCompliance,
	EventBadgeAwarded:           CategoryCompliance,

	EventEventCreated:          CategoryOperations,
	EventParticipationApplied:  CategoryOperations,
	EventParticipationApproved: CategoryOperations,
	EventSessionCheckedIn:      CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Event describes one committed change. UserID is the volunteer the record
// belongs to; ActorID is who performed the action when different (an
// organization approving an application). ID is stable across redelivery so
// consumers can drop duplicates.
type Event struct {
	ID              uuid.UUID          `json:"id,omitzero"`
	Timestamp       time.Time          `json:"timestamp"`
	Action          AuditEvent         `json:"action"`
	UserID          id.UserID          `json:"user_id"`
	ActorID         id.UserID          `json:"actor_id,omitzero"`
	RequestID       string             `json:"request_id,omitempty"`
	EventID         id.EventID         `json:"event_id,omitzero"`
	ParticipationID id.ParticipationID `json:"participation_id,omitzero"`
	BadgeID         id.BadgeID         `json:"badge_id,omitempty"`
	Hours           float64            `json:"hours,omitempty"`
	TotalHours      float64            `json:"total_hours,omitempty"`
}

// Category is the category of the event's action.
func (e Event) Category() EventCategory {
	return e.Action.Category()
}
