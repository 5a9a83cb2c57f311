package memory

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	id "volunteerhub/pkg/domain"
	audit "volunteerhub/pkg/platform/audit"
)

type outboxRow struct {
	event       audit.Event
	publishedAt *time.Time
}

// OutboxStore keeps compliance events alongside the rows they describe.
// Appends inside RunInTx are undone with the rest of the unit of work.
type OutboxStore struct {
	db *DB
}

func (s *OutboxStore) Append(ctx context.Context, event audit.Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	db := s.db
	db.mu.Lock()
	defer db.mu.Unlock()
	db.outbox = append(db.outbox, outboxRow{event: event})
	eventID := event.ID
	record(ctx, func() {
		db.outbox = slices.DeleteFunc(db.outbox, func(r outboxRow) bool { return r.event.ID == eventID })
	})
	return nil
}

// Pending returns unpublished events in append order.
func (s *OutboxStore) Pending(_ context.Context, limit int) ([]audit.Event, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	var out []audit.Event
	for _, r := range s.db.outbox {
		if r.publishedAt != nil {
			continue
		}
		out = append(out, r.event)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *OutboxStore) MarkPublished(_ context.Context, ids []uuid.UUID, at time.Time) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for i := range s.db.outbox {
		r := &s.db.outbox[i]
		if r.publishedAt == nil && slices.Contains(ids, r.event.ID) {
			t := at
			r.publishedAt = &t
		}
	}
	return nil
}

func (s *OutboxStore) ListByUser(_ context.Context, userID id.UserID) ([]audit.Event, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	out := []audit.Event{}
	for _, r := range s.db.outbox {
		if r.event.UserID == userID {
			out = append(out, r.event)
		}
	}
	return out, nil
}
