package memory

import (
	"context"
	"slices"

	"volunteerhub/internal/badge"
	id "volunteerhub/pkg/domain"
)

type BadgeStore struct {
	db *DB
}

func (s *BadgeStore) UpsertBadges(ctx context.Context, badges []badge.Badge) error {
	db := s.db
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, b := range badges {
		prev, existed := db.badges[b.ID]
		db.badges[b.ID] = b
		record(ctx, func() {
			if existed {
				db.badges[b.ID] = prev
			} else {
				delete(db.badges, b.ID)
			}
		})
	}
	return nil
}

func (s *BadgeStore) ListBadges(_ context.Context) ([]badge.Badge, error) {
	s.db.mu.RLock()
	out := make([]badge.Badge, 0, len(s.db.badges))
	for _, b := range s.db.badges {
		out = append(out, b)
	}
	s.db.mu.RUnlock()
	return badge.SortCatalog(out), nil
}

func (s *BadgeStore) ListUserBadges(_ context.Context, userID id.UserID) ([]*badge.UserBadge, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	out := make([]*badge.UserBadge, 0, len(s.db.userBadges[userID]))
	for _, ub := range s.db.userBadges[userID] {
		out = append(out, cloneUserBadge(ub))
	}
	slices.SortFunc(out, func(a, b *badge.UserBadge) int {
		return a.AwardedAt.Compare(b.AwardedAt)
	})
	return out, nil
}

// Grant inserts ub unless the user already holds the badge.
func (s *BadgeStore) Grant(ctx context.Context, ub *badge.UserBadge) (bool, error) {
	db := s.db
	db.mu.Lock()
	defer db.mu.Unlock()
	held := db.userBadges[ub.UserID]
	if held == nil {
		held = make(map[id.BadgeID]*badge.UserBadge)
		db.userBadges[ub.UserID] = held
	}
	if _, ok := held[ub.BadgeID]; ok {
		return false, nil
	}
	held[ub.BadgeID] = cloneUserBadge(ub)
	record(ctx, func() { delete(db.userBadges[ub.UserID], ub.BadgeID) })
	return true, nil
}
