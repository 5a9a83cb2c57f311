// Package memory is an append-only audit sink kept in process memory.
package memory

import (
	"context"
	"sync"

	id "volunteerhub/pkg/domain"
	audit "volunteerhub/pkg/platform/audit"
)

// Store records events in arrival order.
type Store struct {
	mu  sync.RWMutex
	log []audit.Event
}

func New() *Store {
	return &Store{}
}

func (s *Store) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	s.log = append(s.log, event)
	s.mu.Unlock()
	return nil
}

// ListByUser returns the user's events oldest first.
func (s *Store) ListByUser(_ context.Context, userID id.UserID) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []audit.Event
	for _, e := range s.log {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Store) CountByAction(action audit.AuditEvent) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, e := range s.log {
		if e.Action == action {
			n++
		}
	}
	return n
}
