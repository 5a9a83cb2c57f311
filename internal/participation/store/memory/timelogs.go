package memory

import (
	"context"
	"slices"

	"volunteerhub/internal/participation/models"
	id "volunteerhub/pkg/domain"
	"volunteerhub/pkg/platform/sentinel"
)

type TimeLogStore struct {
	db *DB
}

func (s *TimeLogStore) Create(ctx context.Context, log *models.TimeLog) error {
	db := s.db
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, exists := db.timeLogs[log.ID]; exists {
		return sentinel.ErrAlreadyUsed
	}
	if log.IsOpen() {
		if _, open := db.openByPart[log.ParticipationID]; open {
			return sentinel.ErrAlreadyUsed
		}
		db.openByPart[log.ParticipationID] = log.ID
	}
	db.timeLogs[log.ID] = cloneTimeLog(log)
	record(ctx, func() {
		delete(db.timeLogs, log.ID)
		if db.openByPart[log.ParticipationID] == log.ID {
			delete(db.openByPart, log.ParticipationID)
		}
	})
	return nil
}

func (s *TimeLogStore) FindOpen(_ context.Context, participationID id.ParticipationID) (*models.TimeLog, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	logID, ok := s.db.openByPart[participationID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneTimeLog(s.db.timeLogs[logID]), nil
}

func (s *TimeLogStore) ListByParticipation(_ context.Context, participationID id.ParticipationID) ([]*models.TimeLog, error) {
	return s.list(func(t *models.TimeLog) bool { return t.ParticipationID == participationID }), nil
}

func (s *TimeLogStore) ListOpenByUser(_ context.Context, userID id.UserID) ([]*models.TimeLog, error) {
	return s.list(func(t *models.TimeLog) bool { return t.UserID == userID && t.IsOpen() }), nil
}

func (s *TimeLogStore) Update(ctx context.Context, log *models.TimeLog) error {
	db := s.db
	db.mu.Lock()
	defer db.mu.Unlock()

	prev, ok := db.timeLogs[log.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	wasOpen := db.openByPart[log.ParticipationID] == log.ID
	if log.IsOpen() && !wasOpen {
		if _, open := db.openByPart[log.ParticipationID]; open {
			return sentinel.ErrAlreadyUsed
		}
	}

	db.timeLogs[log.ID] = cloneTimeLog(log)
	if log.IsOpen() {
		db.openByPart[log.ParticipationID] = log.ID
	} else if wasOpen {
		delete(db.openByPart, log.ParticipationID)
	}
	record(ctx, func() {
		db.timeLogs[log.ID] = prev
		if wasOpen {
			db.openByPart[log.ParticipationID] = log.ID
		} else if db.openByPart[log.ParticipationID] == log.ID {
			delete(db.openByPart, log.ParticipationID)
		}
	})
	return nil
}

// list returns matches in check-in order.
func (s *TimeLogStore) list(match func(*models.TimeLog) bool) []*models.TimeLog {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	var out []*models.TimeLog
	for _, t := range s.db.timeLogs {
		if match(t) {
			out = append(out, cloneTimeLog(t))
		}
	}
	slices.SortFunc(out, func(a, b *models.TimeLog) int {
		return a.CheckInTime.Compare(b.CheckInTime)
	})
	return out
}
