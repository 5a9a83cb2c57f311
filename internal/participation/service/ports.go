package service

import (
	"context"

	"volunteerhub/internal/badge"
	"volunteerhub/internal/participation/models"
	id "volunteerhub/pkg/domain"
)

// ParticipationStore persists participations. Create returns
// sentinel.ErrAlreadyUsed when (user, event) already has one; finders return
// sentinel.ErrNotFound.
type ParticipationStore interface {
	Create(ctx context.Context, p *models.Participation) error
	FindByID(ctx context.Context, participationID id.ParticipationID) (*models.Participation, error)
	// FindByIDForUpdate locks the row until the surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, participationID id.ParticipationID) (*models.Participation, error)
	FindByUserAndEvent(ctx context.Context, userID id.UserID, eventID id.EventID) (*models.Participation, error)
	ListByUser(ctx context.Context, userID id.UserID) ([]*models.Participation, error)
	ListByEvent(ctx context.Context, eventID id.EventID) ([]*models.Participation, error)
	CountByEventAndStatus(ctx context.Context, eventID id.EventID, status models.Status) (int, error)
	Update(ctx context.Context, p *models.Participation) error
}

// TimeLogStore persists check-in sessions. Create returns
// sentinel.ErrAlreadyUsed when the participation already has an open session.
type TimeLogStore interface {
	Create(ctx context.Context, log *models.TimeLog) error
	FindOpen(ctx context.Context, participationID id.ParticipationID) (*models.TimeLog, error)
	ListByParticipation(ctx context.Context, participationID id.ParticipationID) ([]*models.TimeLog, error)
	// ListOpenByUser returns every open session of userID across events.
	ListOpenByUser(ctx context.Context, userID id.UserID) ([]*models.TimeLog, error)
	Update(ctx context.Context, log *models.TimeLog) error
}

type EventStore interface {
	Create(ctx context.Context, event *models.Event) error
	FindByID(ctx context.Context, eventID id.EventID) (*models.Event, error)
	// FindByIDForUpdate serializes capacity checks for the event.
	FindByIDForUpdate(ctx context.Context, eventID id.EventID) (*models.Event, error)
	// List returns events matching filter ordered by start time, never nil.
	List(ctx context.Context, filter models.EventFilter) ([]*models.Event, error)
}

type UserStore interface {
	// Ensure inserts the user if absent and refreshes name and email
	// otherwise. It never touches TotalVolunteerHours.
	Ensure(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindByIDForUpdate(ctx context.Context, userID id.UserID) (*models.User, error)
	UpdateTotalHours(ctx context.Context, userID id.UserID, total float64) error
	// ListTopByHours returns at most limit users with hours, highest first.
	ListTopByHours(ctx context.Context, limit int) ([]*models.User, error)
}

type BadgeStore interface {
	badge.Store
	UpsertBadges(ctx context.Context, badges []badge.Badge) error
	ListBadges(ctx context.Context) ([]badge.Badge, error)
}

// StoreTx runs fn in one unit of work. Stores called with the ctx passed to
// fn join it; fn returning an error rolls every write back.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
