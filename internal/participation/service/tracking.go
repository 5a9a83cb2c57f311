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

// CheckOutResult is the outcome of CheckOut. HoursCredited is the
// unrounded amount added to the totals; the closed session stores it
// rounded to two decimals.
type CheckOutResult struct {
	TimeLog             *models.TimeLog       `json:"time_log"`
	Participation       *models.Participation `json:"participation"`
	HoursCredited       float64               `json:"hours_credited"`
	TotalVolunteerHours float64               `json:"total_volunteer_hours"`
	NewBadges           []badge.Badge         `json:"new_badges"`
}

// CheckIn opens a session on an approved participation.
func (s *Service) CheckIn(ctx context.Context, actor id.Actor, participationID id.ParticipationID) (_ *models.TimeLog, err error) {
	ctx, done := s.observe(ctx, "check_in", attribute.String("participation_id", participationID.String()))
	defer done(&err)

	if !actor.IsAuthenticated() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	now := s.now(ctx)

	var opened *models.TimeLog
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		p, err := s.lockOwned(ctx, actor, participationID)
		if err != nil {
			return err
		}
		if err := p.CanCheckIn(); err != nil {
			return err
		}

		_, err = s.timeLogs.FindOpen(ctx, p.ID)
		switch {
		case err == nil:
			return dErrors.New(dErrors.CodeAlreadyCheckedIn, "already checked in")
		case !errors.Is(err, sentinel.ErrNotFound):
			return translate(err, "session not found", "load open session")
		}

		log := models.NewTimeLog(id.TimeLogID(uuid.New()), p, now)
		if err := s.timeLogs.Create(ctx, log); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				return dErrors.New(dErrors.CodeAlreadyCheckedIn, "already checked in")
			}
			return translate(err, "participation not found", "open session")
		}
		opened = log
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, audit.Event{
		Timestamp:       now,
		Action:          audit.EventSessionCheckedIn,
		UserID:          opened.UserID,
		EventID:         opened.EventID,
		ParticipationID: opened.ParticipationID,
	})
	return opened, nil
}

// CheckOut closes the open session and credits its clamped duration to the
// participation and the volunteer's total.
func (s *Service) CheckOut(ctx context.Context, actor id.Actor, participationID id.ParticipationID) (_ *CheckOutResult, err error) {
	ctx, done := s.observe(ctx, "check_out", attribute.String("participation_id", participationID.String()))
	defer done(&err)

	if !actor.IsAuthenticated() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	now := s.now(ctx)

	var (
		result *CheckOutResult
		trail  []audit.Event
	)
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		p, err := s.lockOwned(ctx, actor, participationID)
		if err != nil {
			return err
		}

		log, err := s.timeLogs.FindOpen(ctx, p.ID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNoOpenSession, "no open session to check out of")
			}
			return translate(err, "session not found", "load open session")
		}
		credited, err := log.Close(now, s.sessionCap)
		if err != nil {
			return err
		}
		if err := s.timeLogs.Update(ctx, log); err != nil {
			return translate(err, "session not found", "close session")
		}

		p.AddHours(credited)
		if err := s.participations.Update(ctx, p); err != nil {
			return translate(err, "participation not found", "update participation")
		}
		total, awarded, err := s.creditHours(ctx, p.UserID, credited, p.EventID, now)
		if err != nil {
			return err
		}
		trail = creditTrail(ctx, audit.Event{
			Timestamp:       now,
			Action:          audit.EventSessionCheckedOut,
			UserID:          log.UserID,
			EventID:         log.EventID,
			ParticipationID: log.ParticipationID,
			Hours:           log.HoursWorked,
			TotalHours:      total,
		}, awarded)
		if err := s.appendCompliance(ctx, trail...); err != nil {
			return err
		}
		result = &CheckOutResult{
			TimeLog:             log,
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

	s.afterCredit(ctx, result.TimeLog.UserID, result.HoursCredited, result.TotalVolunteerHours, result.NewBadges, trail)
	return result, nil
}

// lockOwned locks the participation and checks the actor is its volunteer.
func (s *Service) lockOwned(ctx context.Context, actor id.Actor, participationID id.ParticipationID) (*models.Participation, error) {
	p, err := s.participations.FindByIDForUpdate(ctx, participationID)
	if err != nil {
		return nil, translate(err, "participation not found", "load participation")
	}
	if !actor.HasRole(id.RoleVolunteer) || !p.IsOwnedBy(actor.UserID) {
		return nil, dErrors.New(dErrors.CodeForbidden, "only the participating volunteer can track time")
	}
	return p, nil
}
