package memory

import (
	"context"
	"slices"

	"volunteerhub/internal/participation/models"
	id "volunteerhub/pkg/domain"
	"volunteerhub/pkg/platform/sentinel"
)

type ParticipationStore struct {
	db *DB
}

func (s *ParticipationStore) Create(ctx context.Context, p *models.Participation) error {
	db := s.db
	db.mu.Lock()
	defer db.mu.Unlock()

	key := userEventKey{user: p.UserID, event: p.EventID}
	if _, exists := db.byUserEvent[key]; exists {
		return sentinel.ErrAlreadyUsed
	}
	if _, exists := db.participations[p.ID]; exists {
		return sentinel.ErrAlreadyUsed
	}
	db.participations[p.ID] = cloneParticipation(p)
	db.byUserEvent[key] = p.ID
	record(ctx, func() {
		delete(db.participations, p.ID)
		delete(db.byUserEvent, key)
	})
	return nil
}

func (s *ParticipationStore) FindByID(_ context.Context, participationID id.ParticipationID) (*models.Participation, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	p, ok := s.db.participations[participationID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneParticipation(p), nil
}

// FindByIDForUpdate is FindByID; DB.RunInTx already serializes writers.
func (s *ParticipationStore) FindByIDForUpdate(ctx context.Context, participationID id.ParticipationID) (*models.Participation, error) {
	return s.FindByID(ctx, participationID)
}

func (s *ParticipationStore) FindByUserAndEvent(_ context.Context, userID id.UserID, eventID id.EventID) (*models.Participation, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	pid, ok := s.db.byUserEvent[userEventKey{user: userID, event: eventID}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneParticipation(s.db.participations[pid]), nil
}

func (s *ParticipationStore) ListByUser(_ context.Context, userID id.UserID) ([]*models.Participation, error) {
	return s.list(func(p *models.Participation) bool { return p.UserID == userID }), nil
}

func (s *ParticipationStore) ListByEvent(_ context.Context, eventID id.EventID) ([]*models.Participation, error) {
	return s.list(func(p *models.Participation) bool { return p.EventID == eventID }), nil
}

func (s *ParticipationStore) CountByEventAndStatus(_ context.Context, eventID id.EventID, status models.Status) (int, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	n := 0
	for _, p := range s.db.participations {
		if p.EventID == eventID && p.Status == status {
			n++
		}
	}
	return n, nil
}

func (s *ParticipationStore) Update(ctx context.Context, p *models.Participation) error {
	db := s.db
	db.mu.Lock()
	defer db.mu.Unlock()
	prev, ok := db.participations[p.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	db.participations[p.ID] = cloneParticipation(p)
	record(ctx, func() { db.participations[p.ID] = prev })
	return nil
}

// list returns matches newest application first.
func (s *ParticipationStore) list(match func(*models.Participation) bool) []*models.Participation {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	var out []*models.Participation
	for _, p := range s.db.participations {
		if match(p) {
			out = append(out, cloneParticipation(p))
		}
	}
	slices.SortFunc(out, func(a, b *models.Participation) int {
		return b.AppliedAt.Compare(a.AppliedAt)
	})
	return out
}
