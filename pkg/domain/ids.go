package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "volunteerhub/pkg/domain-errors"
)

// Typed identifiers keep a participation id from being passed where an event id
// is expected. All UUID-backed ids share parse and text encoding rules.
type (
	UserID          uuid.UUID
	OrganizationID  uuid.UUID
	EventID         uuid.UUID
	ParticipationID uuid.UUID
	TimeLogID       uuid.UUID
	UserBadgeID     uuid.UUID
)

// BadgeID is a stable slug ("beginner", "novice", ...) rather than a UUID so the
// catalog can be seeded idempotently across environments.
type BadgeID string

func (id BadgeID) String() string { return string(id) }
func (id BadgeID) IsNil() bool    { return strings.TrimSpace(string(id)) == "" }

func parseUUID(kind, s string) (uuid.UUID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" is required")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" cannot be nil")
	}
	return parsed, nil
}

func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID("user id", s)
	return UserID(u), err
}

func ParseOrganizationID(s string) (OrganizationID, error) {
	u, err := parseUUID("organization id", s)
	return OrganizationID(u), err
}

func ParseEventID(s string) (EventID, error) {
	u, err := parseUUID("event id", s)
	return EventID(u), err
}

func ParseParticipationID(s string) (ParticipationID, error) {
	u, err := parseUUID("participation id", s)
	return ParticipationID(u), err
}

func (id UserID) String() string          { return uuid.UUID(id).String() }
func (id OrganizationID) String() string  { return uuid.UUID(id).String() }
func (id EventID) String() string         { return uuid.UUID(id).String() }
func (id ParticipationID) String() string { return uuid.UUID(id).String() }
func (id TimeLogID) String() string       { return uuid.UUID(id).String() }
func (id UserBadgeID) String() string     { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool          { return uuid.UUID(id) == uuid.Nil }
func (id OrganizationID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id EventID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id ParticipationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id TimeLogID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id UserBadgeID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }

// Text encoding so ids render as canonical UUID strings in JSON and logs.

func (id UserID) MarshalText() ([]byte, error)          { return uuid.UUID(id).MarshalText() }
func (id OrganizationID) MarshalText() ([]byte, error)  { return uuid.UUID(id).MarshalText() }
func (id EventID) MarshalText() ([]byte, error)         { return uuid.UUID(id).MarshalText() }
func (id ParticipationID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id TimeLogID) MarshalText() ([]byte, error)       { return uuid.UUID(id).MarshalText() }
func (id UserBadgeID) MarshalText() ([]byte, error)     { return uuid.UUID(id).MarshalText() }

func (id *UserID) UnmarshalText(b []byte) error          { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *OrganizationID) UnmarshalText(b []byte) error  { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *EventID) UnmarshalText(b []byte) error         { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *ParticipationID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *TimeLogID) UnmarshalText(b []byte) error       { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *UserBadgeID) UnmarshalText(b []byte) error     { return (*uuid.UUID)(id).UnmarshalText(b) }
