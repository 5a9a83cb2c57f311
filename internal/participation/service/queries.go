package service

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"volunteerhub/internal/badge"
	"volunteerhub/internal/leaderboard"
	"volunteerhub/internal/participation/models"
	id "volunteerhub/pkg/domain"
	dErrors "volunteerhub/pkg/domain-errors"
	"volunteerhub/pkg/platform/audit"
	"volunteerhub/pkg/platform/sentinel"
)

// lookupConcurrency bounds parallel event and user lookups in list queries.
const lookupConcurrency = 8

// ListVolunteerParticipations returns the caller's participations, newest
// first, each with its event and whether a session is open.
func (s *Service) ListVolunteerParticipations(ctx context.Context, actor id.Actor) (_ []models.VolunteerParticipation, err error) {
	ctx, done := s.observe(ctx, "list_volunteer_participations")
	defer done(&err)

	if err := requireVolunteer(actor); err != nil {
		return nil, err
	}

	participations, err := s.participations.ListByUser(ctx, actor.UserID)
	if err != nil {
		return nil, translate(err, "participation not found", "list participations")
	}
	open, err := s.timeLogs.ListOpenByUser(ctx, actor.UserID)
	if err != nil {
		return nil, translate(err, "session not found", "list open sessions")
	}
	checkedIn := make(map[id.ParticipationID]bool, len(open))
	for _, log := range open {
		checkedIn[log.ParticipationID] = true
	}

	eventIDs := make([]id.EventID, 0, len(participations))
	for _, p := range participations {
		eventIDs = append(eventIDs, p.EventID)
	}
	events, err := s.loadEvents(ctx, eventIDs)
	if err != nil {
		return nil, err
	}

	out := make([]models.VolunteerParticipation, 0, len(participations))
	for _, p := range participations {
		event, ok := events[p.EventID]
		if !ok {
			continue
		}
		out = append(out, models.VolunteerParticipation{
			Participation: *p,
			Event:         *event,
			IsCheckedIn:   checkedIn[p.ID],
		})
	}
	return out, nil
}

// ListEventApplications returns every participation for an event with the
// applying volunteer. Only the owning organization may list them.
func (s *Service) ListEventApplications(ctx context.Context, actor id.Actor, eventID id.EventID) (_ []models.EventApplication, err error) {
	ctx, done := s.observe(ctx, "list_event_applications")
	defer done(&err)

	if err := requireOrganization(actor); err != nil {
		return nil, err
	}
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, translate(err, "event not found", "load event")
	}
	if !actor.ActsFor(event.OrganizationID) {
		return nil, dErrors.New(dErrors.CodeForbidden, "only the organizing organization can list applications")
	}

	participations, err := s.participations.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, translate(err, "participation not found", "list participations")
	}
	userIDs := make([]id.UserID, 0, len(participations))
	for _, p := range participations {
		userIDs = append(userIDs, p.UserID)
	}
	users, err := s.loadUsers(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	out := make([]models.EventApplication, 0, len(participations))
	for _, p := range participations {
		summary := models.VolunteerSummary{UserID: p.UserID}
		if u, ok := users[p.UserID]; ok {
			summary.Name = u.Name
			summary.Email = u.Email
			summary.TotalVolunteerHours = u.TotalVolunteerHours
		}
		out = append(out, models.EventApplication{Participation: *p, Volunteer: summary})
	}
	return out, nil
}

// ListUserBadges returns the badges the caller holds, in award order.
func (s *Service) ListUserBadges(ctx context.Context, actor id.Actor) (_ []badge.HeldBadge, err error) {
	ctx, done := s.observe(ctx, "list_user_badges")
	defer done(&err)

	if !actor.IsAuthenticated() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	held, err := s.badges.ListUserBadges(ctx, actor.UserID)
	if err != nil {
		return nil, translate(err, "badge not found", "list user badges")
	}
	catalog, err := s.badges.ListBadges(ctx)
	if err != nil {
		return nil, translate(err, "badge not found", "list badges")
	}
	if len(catalog) == 0 {
		catalog = s.awarder.Catalog()
	}
	byID := make(map[id.BadgeID]badge.Badge, len(catalog))
	for _, b := range catalog {
		byID[b.ID] = b
	}

	out := make([]badge.HeldBadge, 0, len(held))
	for _, ub := range held {
		b, ok := byID[ub.BadgeID]
		if !ok {
			b = badge.Badge{ID: ub.BadgeID, Name: string(ub.BadgeID)}
		}
		out = append(out, badge.HeldBadge{Badge: b, AwardedAt: ub.AwardedAt, EventID: ub.EventID})
	}
	return out, nil
}

// TopVolunteers returns the hours leaderboard. n is clamped by
// leaderboard.NormalizeLimit.
func (s *Service) TopVolunteers(ctx context.Context, actor id.Actor, n int) (_ []leaderboard.Entry, err error) {
	ctx, done := s.observe(ctx, "top_volunteers")
	defer done(&err)

	if !actor.IsAuthenticated() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	entries, err := s.leaderboard.Top(ctx, leaderboard.NormalizeLimit(n))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load leaderboard")
	}
	if entries == nil {
		entries = []leaderboard.Entry{}
	}
	return entries, nil
}

// ListServiceRecord returns the caller's compliance events, oldest first:
// credited sessions, completions and badges. Without an outbox the record is
// empty.
func (s *Service) ListServiceRecord(ctx context.Context, actor id.Actor) (_ []audit.Event, err error) {
	ctx, done := s.observe(ctx, "list_service_record")
	defer done(&err)

	if !actor.IsAuthenticated() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if s.outbox == nil {
		return []audit.Event{}, nil
	}
	events, err := s.outbox.ListByUser(ctx, actor.UserID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load service record")
	}
	if events == nil {
		events = []audit.Event{}
	}
	return events, nil
}

// loadEvents fetches the distinct events in parallel. Events that vanished
// are left out of the map.
func (s *Service) loadEvents(ctx context.Context, eventIDs []id.EventID) (map[id.EventID]*models.Event, error) {
	var (
		mu  sync.Mutex
		out = make(map[id.EventID]*models.Event, len(eventIDs))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(lookupConcurrency)
	seen := make(map[id.EventID]struct{}, len(eventIDs))
	for _, eventID := range eventIDs {
		if _, ok := seen[eventID]; ok {
			continue
		}
		seen[eventID] = struct{}{}
		g.Go(func() error {
			event, err := s.events.FindByID(gctx, eventID)
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil
			}
			if err != nil {
				return translate(err, "event not found", "load event")
			}
			mu.Lock()
			out[eventID] = event
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) loadUsers(ctx context.Context, userIDs []id.UserID) (map[id.UserID]*models.User, error) {
	var (
		mu  sync.Mutex
		out = make(map[id.UserID]*models.User, len(userIDs))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(lookupConcurrency)
	seen := make(map[id.UserID]struct{}, len(userIDs))
	for _, userID := range userIDs {
		if _, ok := seen[userID]; ok {
			continue
		}
		seen[userID] = struct{}{}
		g.Go(func() error {
			user, err := s.users.FindByID(gctx, userID)
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil
			}
			if err != nil {
				return translate(err, "user not found", "load user")
			}
			mu.Lock()
			out[userID] = user
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
