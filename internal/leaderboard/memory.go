package leaderboard

import (
	"context"
	"sync"

	id "volunteerhub/pkg/domain"
)

// InMemory keeps totals in a map. Used when Redis is not configured.
type InMemory struct {
	mu     sync.RWMutex
	totals map[id.UserID]float64
}

func NewInMemory() *InMemory {
	return &InMemory{totals: make(map[id.UserID]float64)}
}

// Record stores total for userID. Totals only grow, so a stale write that
// arrives late cannot lower a score.
func (b *InMemory) Record(_ context.Context, userID id.UserID, total float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if total > b.totals[userID] {
		b.totals[userID] = total
	}
	return nil
}

func (b *InMemory) Top(_ context.Context, n int) ([]Entry, error) {
	n = NormalizeLimit(n)
	b.mu.RLock()
	entries := make([]Entry, 0, len(b.totals))
	for userID, total := range b.totals {
		entries = append(entries, Entry{UserID: userID, TotalHours: total})
	}
	b.mu.RUnlock()

	entries = rank(entries)
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries, nil
}
