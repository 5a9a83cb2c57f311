package audit

import (
	"context"

	id "volunteerhub/pkg/domain"
)

// Store is a destination for audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Lister reads a user's events back, oldest first.
type Lister interface {
	ListByUser(ctx context.Context, userID id.UserID) ([]Event, error)
}
