package memory

import (
	"cmp"
	"context"
	"slices"

	"volunteerhub/internal/participation/models"
	id "volunteerhub/pkg/domain"
	"volunteerhub/pkg/platform/sentinel"
)

type UserStore struct {
	db *DB
}

func (s *UserStore) Ensure(ctx context.Context, user *models.User) error {
	db := s.db
	db.mu.Lock()
	defer db.mu.Unlock()

	prev, exists := db.users[user.ID]
	if !exists {
		c := cloneUser(user)
		c.TotalVolunteerHours = 0
		db.users[user.ID] = c
		record(ctx, func() { delete(db.users, user.ID) })
		return nil
	}

	next := cloneUser(prev)
	if user.Name != "" {
		next.Name = user.Name
	}
	if user.Email != "" {
		next.Email = user.Email
	}
	db.users[user.ID] = next
	record(ctx, func() { db.users[user.ID] = prev })
	return nil
}

func (s *UserStore) FindByID(_ context.Context, userID id.UserID) (*models.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	u, ok := s.db.users[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneUser(u), nil
}

func (s *UserStore) FindByIDForUpdate(ctx context.Context, userID id.UserID) (*models.User, error) {
	return s.FindByID(ctx, userID)
}

func (s *UserStore) UpdateTotalHours(ctx context.Context, userID id.UserID, total float64) error {
	db := s.db
	db.mu.Lock()
	defer db.mu.Unlock()
	prev, ok := db.users[userID]
	if !ok {
		return sentinel.ErrNotFound
	}
	next := cloneUser(prev)
	next.TotalVolunteerHours = total
	db.users[userID] = next
	record(ctx, func() { db.users[userID] = prev })
	return nil
}

// ListTopByHours returns users with credited hours, highest first.
func (s *UserStore) ListTopByHours(_ context.Context, limit int) ([]*models.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	out := make([]*models.User, 0)
	for _, u := range s.db.users {
		if u.TotalVolunteerHours > 0 {
			out = append(out, cloneUser(u))
		}
	}
	slices.SortFunc(out, func(a, b *models.User) int {
		if c := cmp.Compare(b.TotalVolunteerHours, a.TotalVolunteerHours); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
