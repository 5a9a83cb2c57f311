package models_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"volunteerhub/internal/participation/models"
	id "volunteerhub/pkg/domain"
	dErrors "volunteerhub/pkg/domain-errors"
)

type ModelsSuite struct {
	suite.Suite
	now   time.Time
	org   id.OrganizationID
	event *models.Event
}

func TestModelsSuite(t *testing.T) {
	suite.Run(t, new(ModelsSuite))
}

func (s *ModelsSuite) SetupTest() {
	s.now = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	s.org = id.OrganizationID(uuid.New())
	event, err := models.NewEvent(id.EventID(uuid.New()), s.org, "Beach cleanup", "", "Pier 3",
		s.now, s.now.Add(3*time.Hour+45*time.Minute), 2, s.now)
	s.Require().NoError(err)
	s.event = event
}

func (s *ModelsSuite) newParticipation() *models.Participation {
	p, err := models.NewParticipation(id.ParticipationID(uuid.New()), id.UserID(uuid.New()), s.event.ID, s.now)
	s.Require().NoError(err)
	return p
}

func (s *ModelsSuite) TestEventConstruction() {
	s.Run("rejects empty title", func() {
		_, err := models.NewEvent(id.EventID(uuid.New()), s.org, "  ", "", "", s.now, s.now.Add(time.Hour), 1, s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("rejects end equal to start", func() {
		_, err := models.NewEvent(id.EventID(uuid.New()), s.org, "t", "", "", s.now, s.now, 1, s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("rejects end before start", func() {
		_, err := models.NewEvent(id.EventID(uuid.New()), s.org, "t", "", "", s.now, s.now.Add(-time.Hour), 1, s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("rejects non positive capacity", func() {
		_, err := models.NewEvent(id.EventID(uuid.New()), s.org, "t", "", "", s.now, s.now.Add(time.Hour), 0, s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("trims title", func() {
		e, err := models.NewEvent(id.EventID(uuid.New()), s.org, " Food bank ", "", "", s.now, s.now.Add(time.Hour), 1, s.now)
		s.Require().NoError(err)
		s.Equal("Food bank", e.Title)
	})
}

func (s *ModelsSuite) TestEventRules() {
	s.Run("has ended at exactly end time", func() {
		s.False(s.event.HasEnded(s.event.EndTime.Add(-time.Nanosecond)))
		s.True(s.event.HasEnded(s.event.EndTime))
	})

	s.Run("capacity counts approved only", func() {
		s.NoError(s.event.CheckCapacity(1))
		s.True(dErrors.HasCode(s.event.CheckCapacity(2), dErrors.CodeCapacityExceeded))
	})

	s.Run("scheduled hours are floored", func() {
		s.InDelta(3.0, s.event.ScheduledHours(), 1e-9)
	})

	s.Run("ownership", func() {
		s.True(s.event.IsOwnedBy(s.org))
		s.False(s.event.IsOwnedBy(id.OrganizationID(uuid.New())))
		s.False(s.event.IsOwnedBy(id.OrganizationID{}))
	})
}

func (s *ModelsSuite) TestStatusTransitions() {
	s.True(models.StatusPending.CanTransitionTo(models.StatusApproved))
	s.True(models.StatusApproved.CanTransitionTo(models.StatusCompleted))
	s.False(models.StatusPending.CanTransitionTo(models.StatusCompleted))
	s.False(models.StatusApproved.CanTransitionTo(models.StatusPending))
	s.False(models.StatusCompleted.CanTransitionTo(models.StatusApproved))
	s.False(models.Status("archived").IsValid())
}

func (s *ModelsSuite) TestParticipationLifecycle() {
	s.Run("new participation is pending without timestamps", func() {
		p := s.newParticipation()
		s.Equal(models.StatusPending, p.Status)
		s.Nil(p.ApprovedAt)
		s.Nil(p.CompletedAt)
		s.Zero(p.VolunteerHours)
	})

	s.Run("rejects nil ids", func() {
		_, err := models.NewParticipation(id.ParticipationID{}, id.UserID(uuid.New()), s.event.ID, s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	s.Run("approve then complete", func() {
		p := s.newParticipation()
		s.Require().NoError(p.CanApprove())
		p.ApplyApproval(s.now)
		s.Equal(models.StatusApproved, p.Status)
		s.Require().NotNil(p.ApprovedAt)

		s.True(dErrors.HasCode(p.CanApprove(), dErrors.CodeAlreadyApproved))

		s.Require().NoError(p.CanComplete())
		p.ApplyCompletion(s.now.Add(time.Hour), 3)
		s.Equal(models.StatusCompleted, p.Status)
		s.Require().NotNil(p.CompletedAt)
		s.InDelta(3.0, p.VolunteerHours, 1e-9)

		s.True(dErrors.HasCode(p.CanApprove(), dErrors.CodeAlreadyApproved))
		s.True(dErrors.HasCode(p.CanComplete(), dErrors.CodeInvalidState))
		s.True(dErrors.HasCode(p.CanCheckIn(), dErrors.CodeInvalidState))
	})

	s.Run("pending cannot complete or check in", func() {
		p := s.newParticipation()
		s.True(dErrors.HasCode(p.CanComplete(), dErrors.CodeInvalidState))
		s.True(dErrors.HasCode(p.CanCheckIn(), dErrors.CodeInvalidState))
	})

	s.Run("hours never decrease", func() {
		p := s.newParticipation()
		p.AddHours(1.5)
		p.AddHours(-4)
		s.InDelta(1.5, p.VolunteerHours, 1e-9)
	})
}

func (s *ModelsSuite) TestTimeLog() {
	p := s.newParticipation()
	p.ApplyApproval(s.now)

	s.Run("ninety minutes", func() {
		log := models.NewTimeLog(id.TimeLogID(uuid.New()), p, s.now)
		s.True(log.IsOpen())

		credited, err := log.Close(s.now.Add(90*time.Minute), models.MaxSessionHours)
		s.Require().NoError(err)
		s.False(log.IsOpen())
		s.InDelta(1.5, credited, 1e-9)
		s.Equal(1.50, log.HoursWorked)
	})

	s.Run("twenty hours clamps to twelve", func() {
		log := models.NewTimeLog(id.TimeLogID(uuid.New()), p, s.now)
		credited, err := log.Close(s.now.Add(20*time.Hour), models.MaxSessionHours)
		s.Require().NoError(err)
		s.InDelta(12.0, credited, 1e-9)
		s.Equal(12.00, log.HoursWorked)
	})

	s.Run("rounds to cents but credits unrounded", func() {
		log := models.NewTimeLog(id.TimeLogID(uuid.New()), p, s.now)
		credited, err := log.Close(s.now.Add(20*time.Minute), models.MaxSessionHours)
		s.Require().NoError(err)
		s.InDelta(1.0/3.0, credited, 1e-9)
		s.Equal(0.33, log.HoursWorked)
	})

	s.Run("negative duration credits zero", func() {
		log := models.NewTimeLog(id.TimeLogID(uuid.New()), p, s.now)
		credited, err := log.Close(s.now.Add(-time.Minute), models.MaxSessionHours)
		s.Require().NoError(err)
		s.Zero(credited)
		s.Zero(log.HoursWorked)
	})

	s.Run("closing twice fails", func() {
		log := models.NewTimeLog(id.TimeLogID(uuid.New()), p, s.now)
		_, err := log.Close(s.now.Add(time.Hour), models.MaxSessionHours)
		s.Require().NoError(err)
		_, err = log.Close(s.now.Add(2*time.Hour), models.MaxSessionHours)
		s.True(dErrors.HasCode(err, dErrors.CodeNoOpenSession))
	})

	s.Run("copies identity from participation", func() {
		log := models.NewTimeLog(id.TimeLogID(uuid.New()), p, s.now)
		s.Equal(p.ID, log.ParticipationID)
		s.Equal(p.UserID, log.UserID)
		s.Equal(p.EventID, log.EventID)
	})
}

func TestHoursHelpers(t *testing.T) {
	start := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		got  float64
		want float64
	}{
		{"scheduled floors partial hours", models.ScheduledHours(start, start.Add(2*time.Hour+59*time.Minute)), 2},
		{"scheduled never negative", models.ScheduledHours(start, start.Add(-time.Hour)), 0},
		{"session within cap", models.SessionHours(start, start.Add(6*time.Hour), 12), 6},
		{"session clamped", models.SessionHours(start, start.Add(13*time.Hour), 12), 12},
		{"round half up", models.RoundHours(1.005 + 1e-9), 1.01},
		{"round down", models.RoundHours(2.344), 2.34},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if diff := tc.got - tc.want; diff > 1e-9 || diff < -1e-9 {
				t.Fatalf("got %v, want %v", tc.got, tc.want)
			}
		})
	}
}
