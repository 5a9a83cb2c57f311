package service

import (
	"context"

	"volunteerhub/internal/leaderboard"
	id "volunteerhub/pkg/domain"
	"volunteerhub/pkg/platform/audit"
)

//go:generate mockgen -source=sinks.go -destination=mocks/mocks.go -package=mocks

// Outbox stores compliance events in the transaction that produced them.
// An Append error aborts that transaction.
type Outbox interface {
	audit.Store
	audit.Lister
}

// AuditPublisher receives events after their transaction commits.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Leaderboard is the hours ranking read model. Record is called with the
// committed total and must ignore totals lower than the stored one.
type Leaderboard interface {
	Record(ctx context.Context, userID id.UserID, total float64) error
	Top(ctx context.Context, n int) ([]leaderboard.Entry, error)
}
