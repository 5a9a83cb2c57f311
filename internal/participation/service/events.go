package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"volunteerhub/internal/leaderboard"
	"volunteerhub/internal/participation/models"
	id "volunteerhub/pkg/domain"
	dErrors "volunteerhub/pkg/domain-errors"
	"volunteerhub/pkg/platform/audit"
)

// CreateEventInput carries the fields an organization supplies for a new
// event.
type CreateEventInput struct {
	Title           string
	Description     string
	Location        string
	StartTime       time.Time
	EndTime         time.Time
	MaxParticipants int
}

// EventQuery narrows ListEvents. Upcoming drops events that have ended.
type EventQuery struct {
	OrganizationID id.OrganizationID
	Upcoming       bool
}

// CreateEvent publishes an event owned by the calling organization.
func (s *Service) CreateEvent(ctx context.Context, actor id.Actor, in CreateEventInput) (_ *models.Event, err error) {
	ctx, done := s.observe(ctx, "create_event")
	defer done(&err)

	if err := requireOrganization(actor); err != nil {
		return nil, err
	}
	now := s.now(ctx)

	event, err := models.NewEvent(
		id.EventID(uuid.New()),
		actor.OrganizationID,
		in.Title, in.Description, in.Location,
		in.StartTime.UTC(), in.EndTime.UTC(),
		in.MaxParticipants,
		now,
	)
	if err != nil {
		return nil, err
	}
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		return translate(s.events.Create(ctx, event), "event not found", "create event")
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, audit.Event{
		Timestamp: now,
		Action:    audit.EventEventCreated,
		UserID:    actor.UserID,
		EventID:   event.ID,
	})
	return event, nil
}

// SeedBadges upserts the badge catalog. Safe to run on every start.
func (s *Service) SeedBadges(ctx context.Context) error {
	catalog := s.awarder.Catalog()
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		return translate(s.badges.UpsertBadges(ctx, catalog), "badge not found", "seed badges")
	})
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "badge catalog seeded", "badges", len(catalog))
	return nil
}

// ListEvents returns events ordered by start time with their approved
// headcount. Any authenticated caller may browse; an empty result is not an
// error.
func (s *Service) ListEvents(ctx context.Context, actor id.Actor, q EventQuery) (_ []models.EventSummary, err error) {
	ctx, done := s.observe(ctx, "list_events")
	defer done(&err)

	if !actor.IsAuthenticated() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	filter := models.EventFilter{OrganizationID: q.OrganizationID}
	if q.Upcoming {
		filter.EndsAfter = s.now(ctx)
	}
	events, err := s.events.List(ctx, filter)
	if err != nil {
		return nil, translate(err, "event not found", "list events")
	}

	out := make([]models.EventSummary, len(events))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(lookupConcurrency)
	for i, event := range events {
		g.Go(func() error {
			summary, err := s.summarize(gctx, event)
			if err != nil {
				return err
			}
			out[i] = *summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetEvent returns one event with its approved headcount.
func (s *Service) GetEvent(ctx context.Context, actor id.Actor, eventID id.EventID) (_ *models.EventSummary, err error) {
	ctx, done := s.observe(ctx, "get_event")
	defer done(&err)

	if !actor.IsAuthenticated() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, translate(err, "event not found", "load event")
	}
	return s.summarize(ctx, event)
}

func (s *Service) summarize(ctx context.Context, event *models.Event) (*models.EventSummary, error) {
	approved, err := s.participations.CountByEventAndStatus(ctx, event.ID, models.StatusApproved)
	if err != nil {
		return nil, translate(err, "event not found", "count approved participations")
	}
	return &models.EventSummary{
		Event:         *event,
		ApprovedCount: approved,
		SpotsLeft:     max(event.MaxParticipants-approved, 0),
	}, nil
}

// RebuildLeaderboard loads the top committed totals into the leaderboard.
// Run it at startup; Record ignores totals lower than the stored ones, so
// it is safe against live traffic.
func (s *Service) RebuildLeaderboard(ctx context.Context) error {
	users, err := s.users.ListTopByHours(ctx, leaderboard.MaxLimit)
	if err != nil {
		return translate(err, "user not found", "list top users")
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(lookupConcurrency)
	for _, u := range users {
		g.Go(func() error {
			return s.leaderboard.Record(gctx, u.ID, u.TotalVolunteerHours)
		})
	}
	if err := g.Wait(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to rebuild leaderboard")
	}
	s.logger.InfoContext(ctx, "leaderboard rebuilt", "users", len(users))
	return nil
}
