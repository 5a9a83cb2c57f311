package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"volunteerhub/internal/badge"
	"volunteerhub/internal/participation/models"
	id "volunteerhub/pkg/domain"
	dErrors "volunteerhub/pkg/domain-errors"
	audit "volunteerhub/pkg/platform/audit"
	"volunteerhub/pkg/platform/sentinel"
)

type DBSuite struct {
	suite.Suite
	db  *DB
	ctx context.Context
	now time.Time
}

func TestDBSuite(t *testing.T) {
	suite.Run(t, new(DBSuite))
}

func (s *DBSuite) SetupTest() {
	s.db = NewDB()
	s.ctx = context.Background()
	s.now = time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
}

func (s *DBSuite) newParticipation() *models.Participation {
	p, err := models.NewParticipation(id.ParticipationID(uuid.New()), id.UserID(uuid.New()), id.EventID(uuid.New()), s.now)
	s.Require().NoError(err)
	return p
}

func (s *DBSuite) TestParticipationUniqueness() {
	p := s.newParticipation()
	s.Require().NoError(s.db.Participations().Create(s.ctx, p))

	dup := *p
	dup.ID = id.ParticipationID(uuid.New())
	err := s.db.Participations().Create(s.ctx, &dup)
	s.ErrorIs(err, sentinel.ErrAlreadyUsed)

	found, err := s.db.Participations().FindByUserAndEvent(s.ctx, p.UserID, p.EventID)
	s.Require().NoError(err)
	s.Equal(p.ID, found.ID)
}

func (s *DBSuite) TestReturnsCopies() {
	p := s.newParticipation()
	s.Require().NoError(s.db.Participations().Create(s.ctx, p))

	found, err := s.db.Participations().FindByID(s.ctx, p.ID)
	s.Require().NoError(err)
	found.Status = models.StatusCompleted

	again, err := s.db.Participations().FindByID(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusPending, again.Status)
}

func (s *DBSuite) TestSingleOpenSession() {
	p := s.newParticipation()
	logs := s.db.TimeLogs()

	first := models.NewTimeLog(id.TimeLogID(uuid.New()), p, s.now)
	s.Require().NoError(logs.Create(s.ctx, first))
	second := models.NewTimeLog(id.TimeLogID(uuid.New()), p, s.now.Add(time.Minute))
	s.ErrorIs(logs.Create(s.ctx, second), sentinel.ErrAlreadyUsed)

	_, err := first.Close(s.now.Add(time.Hour), models.MaxSessionHours)
	s.Require().NoError(err)
	s.Require().NoError(logs.Update(s.ctx, first))

	_, err = logs.FindOpen(s.ctx, p.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.Require().NoError(logs.Create(s.ctx, second))

	all, err := logs.ListByParticipation(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Len(all, 2)
	s.Equal(first.ID, all[0].ID)
}

func (s *DBSuite) TestRollbackUndoesEveryWrite() {
	user := &models.User{ID: id.UserID(uuid.New()), Role: id.RoleVolunteer, Name: "Ada"}
	s.Require().NoError(s.db.Users().Ensure(s.ctx, user))
	p := s.newParticipation()
	p.UserID = user.ID

	boom := errors.New("boom")
	err := s.db.RunInTx(s.ctx, func(ctx context.Context) error {
		s.Require().NoError(s.db.Participations().Create(ctx, p))
		s.Require().NoError(s.db.TimeLogs().Create(ctx, models.NewTimeLog(id.TimeLogID(uuid.New()), p, s.now)))
		s.Require().NoError(s.db.Users().UpdateTotalHours(ctx, user.ID, 42))
		granted, err := s.db.Badges().Grant(ctx, &badge.UserBadge{ID: id.UserBadgeID(uuid.New()), UserID: user.ID, BadgeID: "beginner"})
		s.Require().NoError(err)
		s.True(granted)
		return boom
	})
	s.ErrorIs(err, boom)

	_, err = s.db.Participations().FindByID(s.ctx, p.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
	_, err = s.db.TimeLogs().FindOpen(s.ctx, p.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
	u, err := s.db.Users().FindByID(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Zero(u.TotalVolunteerHours)
	held, err := s.db.Badges().ListUserBadges(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Empty(held)
}

func (s *DBSuite) TestNestedTxJoinsOuter() {
	p := s.newParticipation()
	err := s.db.RunInTx(s.ctx, func(ctx context.Context) error {
		return s.db.RunInTx(ctx, func(inner context.Context) error {
			return s.db.Participations().Create(inner, p)
		})
	})
	s.Require().NoError(err)
	_, err = s.db.Participations().FindByID(s.ctx, p.ID)
	s.NoError(err)
}

func (s *DBSuite) TestLockWaitTimesOut() {
	db := NewDB(WithTxTimeout(20 * time.Millisecond))
	release := make(chan struct{})
	started := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = db.RunInTx(context.Background(), func(context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := db.RunInTx(ctx, func(context.Context) error { return nil })
	s.True(dErrors.HasCode(err, dErrors.CodeTimeout))

	close(release)
	wg.Wait()
}

func (s *DBSuite) TestCancelledContextRejected() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.db.RunInTx(ctx, func(context.Context) error { return nil })
	s.True(dErrors.HasCode(err, dErrors.CodeTimeout))
}

func (s *DBSuite) TestGrantIsIdempotent() {
	user := id.UserID(uuid.New())
	ub := &badge.UserBadge{ID: id.UserBadgeID(uuid.New()), UserID: user, BadgeID: "novice", AwardedAt: s.now}
	first, err := s.db.Badges().Grant(s.ctx, ub)
	s.Require().NoError(err)
	s.True(first)

	ub2 := *ub
	ub2.ID = id.UserBadgeID(uuid.New())
	second, err := s.db.Badges().Grant(s.ctx, &ub2)
	s.Require().NoError(err)
	s.False(second)

	held, err := s.db.Badges().ListUserBadges(s.ctx, user)
	s.Require().NoError(err)
	s.Len(held, 1)
}

func (s *DBSuite) TestUpsertBadges() {
	s.Require().NoError(s.db.Badges().UpsertBadges(s.ctx, badge.DefaultCatalog()))
	s.Require().NoError(s.db.Badges().UpsertBadges(s.ctx, badge.DefaultCatalog()))
	all, err := s.db.Badges().ListBadges(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 6)
	s.Equal(id.BadgeID("beginner"), all[0].ID)
}

func (s *DBSuite) TestEnsureKeepsTotals() {
	user := &models.User{ID: id.UserID(uuid.New()), Role: id.RoleVolunteer, Name: "Bo"}
	s.Require().NoError(s.db.Users().Ensure(s.ctx, user))
	s.Require().NoError(s.db.Users().UpdateTotalHours(s.ctx, user.ID, 7.5))

	s.Require().NoError(s.db.Users().Ensure(s.ctx, &models.User{ID: user.ID, Role: id.RoleVolunteer, Name: "Bo B", TotalVolunteerHours: 0}))
	u, err := s.db.Users().FindByID(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Equal("Bo B", u.Name)
	s.InDelta(7.5, u.TotalVolunteerHours, 1e-9)
}

func (s *DBSuite) TestOutboxAppendRolledBackWithTx() {
	user := id.UserID(uuid.New())
	kept := audit.Event{Action: audit.EventParticipationCompleted, UserID: user, Hours: 2}
	s.Require().NoError(s.db.RunInTx(s.ctx, func(ctx context.Context) error {
		return s.db.Outbox().Append(ctx, kept)
	}))

	boom := errors.New("boom")
	err := s.db.RunInTx(s.ctx, func(ctx context.Context) error {
		s.Require().NoError(s.db.Outbox().Append(ctx, audit.Event{Action: audit.EventSessionCheckedOut, UserID: user, Hours: 1}))
		s.Require().NoError(s.db.Outbox().Append(ctx, audit.Event{Action: audit.EventBadgeAwarded, UserID: user, BadgeID: "beginner"}))
		return boom
	})
	s.ErrorIs(err, boom)

	pending, err := s.db.Outbox().Pending(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(pending, 1)
	s.Equal(audit.EventParticipationCompleted, pending[0].Action)
	s.NotEqual(uuid.Nil, pending[0].ID)
}

func (s *DBSuite) TestOutboxPendingAndMarkPublished() {
	user := id.UserID(uuid.New())
	outbox := s.db.Outbox()
	for _, action := range []audit.AuditEvent{audit.EventSessionCheckedOut, audit.EventBadgeAwarded, audit.EventParticipationCompleted} {
		s.Require().NoError(outbox.Append(s.ctx, audit.Event{ID: uuid.New(), Action: action, UserID: user}))
	}

	first, err := outbox.Pending(s.ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(first, 2)
	s.Equal(audit.EventSessionCheckedOut, first[0].Action)
	s.Equal(audit.EventBadgeAwarded, first[1].Action)

	s.Require().NoError(outbox.MarkPublished(s.ctx, []uuid.UUID{first[0].ID, first[1].ID}, s.now))
	rest, err := outbox.Pending(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(rest, 1)
	s.Equal(audit.EventParticipationCompleted, rest[0].Action)

	record, err := outbox.ListByUser(s.ctx, user)
	s.Require().NoError(err)
	s.Len(record, 3)
	other, err := outbox.ListByUser(s.ctx, id.UserID(uuid.New()))
	s.Require().NoError(err)
	s.Empty(other)
}

func (s *DBSuite) TestListTopByHours() {
	users := s.db.Users()
	hours := map[string]float64{"Ann": 3, "Ben": 0, "Cy": 12, "Di": 5}
	for name, total := range hours {
		u := &models.User{ID: id.UserID(uuid.New()), Role: id.RoleVolunteer, Name: name}
		s.Require().NoError(users.Ensure(s.ctx, u))
		if total > 0 {
			s.Require().NoError(users.UpdateTotalHours(s.ctx, u.ID, total))
		}
	}

	top, err := users.ListTopByHours(s.ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(top, 2)
	s.Equal("Cy", top[0].Name)
	s.Equal("Di", top[1].Name)

	all, err := users.ListTopByHours(s.ctx, 10)
	s.Require().NoError(err)
	s.Len(all, 3)
}

func (s *DBSuite) TestListEventsFiltersAndOrders() {
	org := id.OrganizationID(uuid.New())
	other := id.OrganizationID(uuid.New())
	mk := func(owner id.OrganizationID, title string, start time.Time) *models.Event {
		e, err := models.NewEvent(id.EventID(uuid.New()), owner, title, "", "", start, start.Add(2*time.Hour), 5, s.now)
		s.Require().NoError(err)
		s.Require().NoError(s.db.Events().Create(s.ctx, e))
		return e
	}
	later := mk(org, "Later", s.now.Add(48*time.Hour))
	past := mk(org, "Past", s.now.Add(-24*time.Hour))
	mk(other, "Elsewhere", s.now.Add(24*time.Hour))

	all, err := s.db.Events().List(s.ctx, models.EventFilter{})
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal(past.ID, all[0].ID)

	mine, err := s.db.Events().List(s.ctx, models.EventFilter{OrganizationID: org, EndsAfter: s.now})
	s.Require().NoError(err)
	s.Require().Len(mine, 1)
	s.Equal(later.ID, mine[0].ID)
}
