package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"volunteerhub/internal/badge"
	"volunteerhub/internal/participation/models"
	id "volunteerhub/pkg/domain"
	dErrors "volunteerhub/pkg/domain-errors"
	"volunteerhub/pkg/platform/audit"
	"volunteerhub/pkg/platform/sentinel"
)

// CompletionResult is the outcome of Complete.
type CompletionResult struct {
	Participation       *models.Participation `json:"participation"`
	HoursCredited       float64               `json:"hours_credited"`
	TotalVolunteerHours float64               `json:"total_volunteer_hours"`
	NewBadges           []badge.Badge         `json:"new_badges"`
}

// Apply creates a pending participation for the calling volunteer. The event
// row is locked while the duplicate and capacity checks run.
func (s *Service) Apply(ctx context.Context, actor id.Actor, eventID id.EventID) (_ *models.Participation, err error) {
	ctx, done := s.observe(ctx, "apply", attribute.String("event_id", eventID.String()))
	defer done(&err)

	if err := requireVolunteer(actor); err != nil {
		return nil, err
	}
	if eventID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "event id is required")
	}
	now := s.now(ctx)

	var created *models.Participation
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		event, err := s.events.FindByIDForUpdate(ctx, eventID)
		if err != nil {
			return translate(err, "event not found", "load event")
		}

		_, err = s.participations.FindByUserAndEvent(ctx, actor.UserID, eventID)
		switch {
		case err == nil:
			return dErrors.New(dErrors.CodeConflict, "already applied to this event")
		case !errors.Is(err, sentinel.ErrNotFound):
			return translate(err, "participation not found", "check existing participation")
		}

		approved, err := s.participations.CountByEventAndStatus(ctx, eventID, models.StatusApproved)
		if err != nil {
			return translate(err, "event not found", "count approved participations")
		}
		if err := event.CheckCapacity(approved); err != nil {
			return err
		}

		if err := s.users.Ensure(ctx, models.UserFromActor(actor, now)); err != nil {
			return translate(err, "user not found", "record volunteer")
		}

		p, err := models.NewParticipation(id.ParticipationID(uuid.New()), actor.UserID, eventID, now)
		if err != nil {
			return err
		}
		if err := s.participations.Create(ctx, p); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				return dErrors.New(dErrors.CodeConflict, "already applied to this event")
			}
			return translate(err, "event not found", "create participation")
		}
		created = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, audit.Event{
		Timestamp:       now,
		Action:          audit.EventParticipationApplied,
		UserID:          created.UserID,
		EventID:         created.EventID,
		ParticipationID: created.ID,
	})
	return created, nil
}

// Approve moves a pending participation to approved. Only the organization
// owning the event may approve, and capacity is re-checked under the event
// lock.
func (s *Service) Approve(ctx context.Context, actor id.Actor, participationID id.ParticipationID) (_ *models.Participation, err error) {
	ctx, done := s.observe(ctx, "approve", attribute.String("participation_id", participationID.String()))
	defer done(&err)

	if !actor.IsAuthenticated() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	now := s.now(ctx)

	var approved *models.Participation
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		current, err := s.participations.FindByID(ctx, participationID)
		if err != nil {
			return translate(err, "participation not found", "load participation")
		}
		event, err := s.events.FindByIDForUpdate(ctx, current.EventID)
		if err != nil {
			return translate(err, "event not found", "load event")
		}
		if !actor.ActsFor(event.OrganizationID) {
			return dErrors.New(dErrors.CodeForbidden, "only the organizing organization can approve")
		}

		p, err := s.participations.FindByIDForUpdate(ctx, participationID)
		if err != nil {
			return translate(err, "participation not found", "lock participation")
		}
		if err := p.CanApprove(); err != nil {
			return err
		}
		count, err := s.participations.CountByEventAndStatus(ctx, event.ID, models.StatusApproved)
		if err != nil {
			return translate(err, "event not found", "count approved participations")
		}
		if err := event.CheckCapacity(count); err != nil {
			return err
		}

		p.ApplyApproval(now)
		if err := s.participations.Update(ctx, p); err != nil {
			return translate(err, "participation not found", "update participation")
		}
		approved = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, audit.Event{
		Timestamp:       now,
		Action:          audit.EventParticipationApproved,
		UserID:          approved.UserID,
		ActorID:         actor.UserID,
		EventID:         approved.EventID,
		ParticipationID: approved.ID,
	})
	return approved, nil
}

// Complete closes an approved participation once its event has ended.
//
// Hours are credited from the event schedule, floored to whole hours, only
// when no check-in session was ever recorded. A participation with sessions
// already accrued its hours at check-out and completes without adding more;
// an open session blocks completion.
func (s *Service) Complete(ctx context.Context, actor id.Actor, participationID id.ParticipationID) (_ *CompletionResult, err error) {
	ctx, done := s.observe(ctx, "complete", attribute.String("participation_id", participationID.String()))
	defer done(&err)

	if !actor.IsAuthenticated() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	now := s.now(ctx)

	var (
		result *CompletionResult
		trail  []audit.Event
	)
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		p, err := s.participations.FindByIDForUpdate(ctx, participationID)
		if err != nil {
			return translate(err, "participation not found", "load participation")
		}
		if !actor.HasRole(id.RoleVolunteer) || !p.IsOwnedBy(actor.UserID) {
			return dErrors.New(dErrors.CodeForbidden, "only the participating volunteer can complete")
		}
		if err := p.CanComplete(); err != nil {
			return err
		}
		event, err := s.events.FindByID(ctx, p.EventID)
		if err != nil {
			return translate(err, "event not found", "load event")
		}
		if !event.HasEnded(now) {
			return dErrors.New(dErrors.CodeEventNotEnded, "event has not ended yet")
		}

		logs, err := s.timeLogs.ListByParticipation(ctx, p.ID)
		if err != nil {
			return translate(err, "participation not found", "list sessions")
		}
		credited := event.ScheduledHours()
		for _, log := range logs {
			if log.IsOpen() {
				return dErrors.New(dErrors.CodeInvalidState, "check out before completing")
			}
		}
		if len(logs) > 0 {
			credited = 0
		}

		p.ApplyCompletion(now, credited)
		if err := s.participations.Update(ctx, p); err != nil {
			return translate(err, "participation not found", "update participation")
		}
		total, awarded, err := s.creditHours(ctx, p.UserID, credited, p.EventID, now)
		if err != nil {
			return err
		}
		trail = creditTrail(ctx, audit.Event{
			Timestamp:       now,
			Action:          audit.EventParticipationCompleted,
			UserID:          p.UserID,
			EventID:         p.EventID,
			ParticipationID: p.ID,
			Hours:           credited,
			TotalHours:      total,
		}, awarded)
		if err := s.appendCompliance(ctx, trail...); err != nil {
			return err
		}
		result = &CompletionResult{
			Participation:       p,
			HoursCredited:       credited,
			TotalVolunteerHours: total,
			NewBadges:           awarded,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterCredit(ctx, result.Participation.UserID, result.HoursCredited, result.TotalVolunteerHours, result.NewBadges, trail)
	return result, nil
}
