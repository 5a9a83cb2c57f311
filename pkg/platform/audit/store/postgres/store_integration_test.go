//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	id "volunteerhub/pkg/domain"
	audit "volunteerhub/pkg/platform/audit"
	"volunteerhub/pkg/platform/audit/store/postgres"
	txcontext "volunteerhub/pkg/platform/tx"
	"volunteerhub/pkg/testutil/containers"
)

type OutboxSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *postgres.Store
	ctx   context.Context
	now   time.Time
}

func TestOutboxSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres integration tests in short mode")
	}
	suite.Run(t, new(OutboxSuite))
}

func (s *OutboxSuite) SetupSuite() {
	s.pg = containers.GetManager().GetPostgres(s.T(), postgres.Migrate)
	s.store = postgres.New(s.pg.DB)
}

func (s *OutboxSuite) SetupTest() {
	s.ctx = context.Background()
	s.now = time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	s.Require().NoError(s.pg.TruncateTables(s.ctx, "audit_outbox"))
}

func (s *OutboxSuite) event(user id.UserID, action audit.AuditEvent) audit.Event {
	return audit.Event{ID: uuid.New(), Timestamp: s.now, Action: action, UserID: user, Hours: 2, TotalHours: 11}
}

func (s *OutboxSuite) TestRolledBackAppendLeavesNoRow() {
	user := id.UserID(uuid.New())

	tx, err := s.pg.DB.BeginTx(s.ctx, nil)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Append(txcontext.WithTx(s.ctx, tx), s.event(user, audit.EventSessionCheckedOut)))
	s.Require().NoError(tx.Rollback())

	pending, err := s.store.Pending(s.ctx, 10)
	s.Require().NoError(err)
	s.Empty(pending)
}

func (s *OutboxSuite) TestCommittedAppendIsPendingUntilMarked() {
	user := id.UserID(uuid.New())
	first := s.event(user, audit.EventParticipationCompleted)
	second := s.event(user, audit.EventBadgeAwarded)
	second.BadgeID = "beginner"

	tx, err := s.pg.DB.BeginTx(s.ctx, nil)
	s.Require().NoError(err)
	txCtx := txcontext.WithTx(s.ctx, tx)
	s.Require().NoError(s.store.Append(txCtx, first))
	s.Require().NoError(s.store.Append(txCtx, second))
	s.Require().NoError(tx.Commit())

	pending, err := s.store.Pending(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(pending, 2)
	s.Equal(first.ID, pending[0].ID)
	s.Equal(audit.EventParticipationCompleted, pending[0].Action)
	s.InDelta(11.0, pending[0].TotalHours, 0.0001)
	s.Equal(id.BadgeID("beginner"), pending[1].BadgeID)

	s.Require().NoError(s.store.MarkPublished(s.ctx, []uuid.UUID{first.ID}, s.now))
	pending, err = s.store.Pending(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(pending, 1)
	s.Equal(second.ID, pending[0].ID)

	record, err := s.store.ListByUser(s.ctx, user)
	s.Require().NoError(err)
	s.Len(record, 2)
}
