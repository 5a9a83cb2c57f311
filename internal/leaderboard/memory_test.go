package leaderboard

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	id "volunteerhub/pkg/domain"
)

type InMemorySuite struct {
	suite.Suite
	board *InMemory
	ctx   context.Context
}

func TestInMemorySuite(t *testing.T) {
	suite.Run(t, new(InMemorySuite))
}

func (s *InMemorySuite) SetupTest() {
	s.board = NewInMemory()
	s.ctx = context.Background()
}

func (s *InMemorySuite) TestRanksByHoursDescending() {
	a, b, c := id.UserID(uuid.New()), id.UserID(uuid.New()), id.UserID(uuid.New())
	s.Require().NoError(s.board.Record(s.ctx, a, 12.5))
	s.Require().NoError(s.board.Record(s.ctx, b, 40))
	s.Require().NoError(s.board.Record(s.ctx, c, 3))

	top, err := s.board.Top(s.ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(top, 2)
	s.Equal(b, top[0].UserID)
	s.Equal(1, top[0].Rank)
	s.Equal(a, top[1].UserID)
	s.Equal(2, top[1].Rank)
}

func (s *InMemorySuite) TestStaleTotalDoesNotLowerScore() {
	user := id.UserID(uuid.New())
	s.Require().NoError(s.board.Record(s.ctx, user, 20))
	s.Require().NoError(s.board.Record(s.ctx, user, 11))

	top, err := s.board.Top(s.ctx, 0)
	s.Require().NoError(err)
	s.Require().Len(top, 1)
	s.InDelta(20.0, top[0].TotalHours, 1e-9)
}

func (s *InMemorySuite) TestNormalizeLimit() {
	s.Equal(DefaultLimit, NormalizeLimit(0))
	s.Equal(MaxLimit, NormalizeLimit(MaxLimit+1))
	s.Equal(7, NormalizeLimit(7))
}
