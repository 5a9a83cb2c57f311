package memory

import (
	"cmp"
	"context"
	"slices"

	"volunteerhub/internal/participation/models"
	id "volunteerhub/pkg/domain"
	"volunteerhub/pkg/platform/sentinel"
)

type EventStore struct {
	db *DB
}

func (s *EventStore) Create(ctx context.Context, event *models.Event) error {
	db := s.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, exists := db.events[event.ID]; exists {
		return sentinel.ErrAlreadyUsed
	}
	db.events[event.ID] = cloneEvent(event)
	record(ctx, func() { delete(db.events, event.ID) })
	return nil
}

func (s *EventStore) FindByID(_ context.Context, eventID id.EventID) (*models.Event, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	e, ok := s.db.events[eventID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneEvent(e), nil
}

func (s *EventStore) FindByIDForUpdate(ctx context.Context, eventID id.EventID) (*models.Event, error) {
	return s.FindByID(ctx, eventID)
}

// List returns matching events ordered by start time.
func (s *EventStore) List(_ context.Context, filter models.EventFilter) ([]*models.Event, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	out := make([]*models.Event, 0)
	for _, e := range s.db.events {
		if filter.Matches(e) {
			out = append(out, cloneEvent(e))
		}
	}
	slices.SortFunc(out, func(a, b *models.Event) int {
		if c := a.StartTime.Compare(b.StartTime); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
	return out, nil
}
