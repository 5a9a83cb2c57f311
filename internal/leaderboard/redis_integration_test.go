//go:build integration

package leaderboard

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	id "volunteerhub/pkg/domain"
	"volunteerhub/pkg/testutil/containers"
)

type RedisSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	board *Redis
	ctx   context.Context
}

func TestRedisSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisSuite))
}

func (s *RedisSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.board = NewRedis(s.redis.Client.Client, "test:leaderboard")
	s.ctx = context.Background()
}

func (s *RedisSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(s.ctx))
}

func (s *RedisSuite) TestTopOrdersByScore() {
	a, b := id.UserID(uuid.New()), id.UserID(uuid.New())
	s.Require().NoError(s.board.Record(s.ctx, a, 10))
	s.Require().NoError(s.board.Record(s.ctx, b, 55.25))

	top, err := s.board.Top(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(top, 2)
	s.Equal(b, top[0].UserID)
	s.InDelta(55.25, top[0].TotalHours, 1e-9)
	s.Equal(a, top[1].UserID)
	s.Equal(2, top[1].Rank)
}

func (s *RedisSuite) TestRecordOnlyRaisesScore() {
	user := id.UserID(uuid.New())
	s.Require().NoError(s.board.Record(s.ctx, user, 30))
	s.Require().NoError(s.board.Record(s.ctx, user, 12))

	top, err := s.board.Top(s.ctx, 1)
	s.Require().NoError(err)
	s.Require().Len(top, 1)
	s.InDelta(30.0, top[0].TotalHours, 1e-9)
}
