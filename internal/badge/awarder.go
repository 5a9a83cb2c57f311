package badge

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	id "volunteerhub/pkg/domain"
	dErrors "volunteerhub/pkg/domain-errors"
)

// Store is the persistence the Awarder needs. Grant must be idempotent per
// (user, badge) and report false when the pair already existed.
type Store interface {
	ListUserBadges(ctx context.Context, userID id.UserID) ([]*UserBadge, error)
	Grant(ctx context.Context, ub *UserBadge) (bool, error)
}

// Awarder grants every catalog badge a total qualifies for. Callers run it
// inside the same transaction that changed the total.
type Awarder struct {
	store   Store
	catalog []Badge
}

func NewAwarder(store Store, catalog []Badge) (*Awarder, error) {
	if store == nil {
		return nil, fmt.Errorf("badge store is required")
	}
	if len(catalog) == 0 {
		catalog = DefaultCatalog()
	}
	return &Awarder{store: store, catalog: SortCatalog(catalog)}, nil
}

// Catalog returns the badges in threshold order.
func (a *Awarder) Catalog() []Badge {
	out := make([]Badge, len(a.catalog))
	copy(out, a.catalog)
	return out
}

// Award recomputes eligibility from the full held set and grants what is
// missing. Returns the badges granted by this call only.
func (a *Awarder) Award(ctx context.Context, userID id.UserID, total float64, eventID *id.EventID, now time.Time) ([]Badge, error) {
	held, err := a.store.ListUserBadges(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load held badges")
	}
	heldSet := make(map[id.BadgeID]struct{}, len(held))
	for _, ub := range held {
		heldSet[ub.BadgeID] = struct{}{}
	}

	var granted []Badge
	for _, b := range Eligible(total, heldSet, a.catalog) {
		ub := &UserBadge{
			ID:        id.UserBadgeID(uuid.New()),
			UserID:    userID,
			BadgeID:   b.ID,
			EventID:   eventID,
			AwardedAt: now,
		}
		inserted, err := a.store.Grant(ctx, ub)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to grant badge")
		}
		if inserted {
			granted = append(granted, b)
		}
	}
	return granted, nil
}
