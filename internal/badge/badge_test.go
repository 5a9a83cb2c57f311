package badge

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	id "volunteerhub/pkg/domain"
	dErrors "volunteerhub/pkg/domain-errors"
)

type fakeStore struct {
	held    map[id.UserID]map[id.BadgeID]*UserBadge
	listErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{held: map[id.UserID]map[id.BadgeID]*UserBadge{}}
}

func (f *fakeStore) ListUserBadges(_ context.Context, userID id.UserID) ([]*UserBadge, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*UserBadge
	for _, ub := range f.held[userID] {
		out = append(out, ub)
	}
	return out, nil
}

func (f *fakeStore) Grant(_ context.Context, ub *UserBadge) (bool, error) {
	if f.held[ub.UserID] == nil {
		f.held[ub.UserID] = map[id.BadgeID]*UserBadge{}
	}
	if _, ok := f.held[ub.UserID][ub.BadgeID]; ok {
		return false, nil
	}
	f.held[ub.UserID][ub.BadgeID] = ub
	return true, nil
}

type BadgeSuite struct {
	suite.Suite
	ctx     context.Context
	store   *fakeStore
	awarder *Awarder
	user    id.UserID
	now     time.Time
}

func TestBadgeSuite(t *testing.T) {
	suite.Run(t, new(BadgeSuite))
}

func (s *BadgeSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = newFakeStore()
	awarder, err := NewAwarder(s.store, nil)
	s.Require().NoError(err)
	s.awarder = awarder
	s.user = id.UserID(uuid.New())
	s.now = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
}

func ids(badges []Badge) []id.BadgeID {
	out := make([]id.BadgeID, 0, len(badges))
	for _, b := range badges {
		out = append(out, b.ID)
	}
	return out
}

func (s *BadgeSuite) TestEligible() {
	catalog := DefaultCatalog()

	s.Run("below first threshold", func() {
		s.Empty(Eligible(9.99, nil, catalog))
	})

	s.Run("threshold is inclusive", func() {
		s.Equal([]id.BadgeID{"beginner"}, ids(Eligible(10, nil, catalog)))
	})

	s.Run("skips held badges", func() {
		held := map[id.BadgeID]struct{}{"beginner": {}}
		s.Equal([]id.BadgeID{"novice", "changemaker"}, ids(Eligible(80, held, catalog)))
	})

	s.Run("ascending order regardless of catalog order", func() {
		reversed := []Badge{catalog[5], catalog[4], catalog[3], catalog[2], catalog[1], catalog[0]}
		s.Equal([]id.BadgeID{"beginner", "novice", "changemaker", "skillful-intern", "expert-intern", "elite-intern"},
			ids(Eligible(1000, nil, reversed)))
	})
}

func (s *BadgeSuite) TestAward() {
	s.Run("grants every crossed threshold once", func() {
		granted, err := s.awarder.Award(s.ctx, s.user, 76, nil, s.now)
		s.Require().NoError(err)
		s.Equal([]id.BadgeID{"beginner", "novice", "changemaker"}, ids(granted))

		again, err := s.awarder.Award(s.ctx, s.user, 76, nil, s.now)
		s.Require().NoError(err)
		s.Empty(again)
		s.Len(s.store.held[s.user], 3)
	})

	s.Run("records triggering event", func() {
		user := id.UserID(uuid.New())
		event := id.EventID(uuid.New())
		_, err := s.awarder.Award(s.ctx, user, 11, &event, s.now)
		s.Require().NoError(err)
		ub := s.store.held[user]["beginner"]
		s.Require().NotNil(ub)
		s.Require().NotNil(ub.EventID)
		s.Equal(event, *ub.EventID)
		s.Equal(s.now, ub.AwardedAt)
	})

	s.Run("store failure is internal", func() {
		s.store.listErr = errors.New("boom")
		defer func() { s.store.listErr = nil }()
		_, err := s.awarder.Award(s.ctx, s.user, 500, nil, s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *BadgeSuite) TestNewAwarderRequiresStore() {
	_, err := NewAwarder(nil, nil)
	s.Error(err)
}
