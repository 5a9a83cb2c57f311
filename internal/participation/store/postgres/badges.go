package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"volunteerhub/internal/badge"
	id "volunteerhub/pkg/domain"
	txcontext "volunteerhub/pkg/platform/tx"
)

type BadgeStore struct {
	db *sql.DB
}

func NewBadgeStore(db *sql.DB) *BadgeStore {
	return &BadgeStore{db: db}
}

func (s *BadgeStore) UpsertBadges(ctx context.Context, badges []badge.Badge) error {
	exec := txcontext.ExecutorFrom(ctx, s.db)
	for _, b := range badges {
		_, err := exec.ExecContext(ctx, `
			INSERT INTO badges (id, name, description, criteria, image_url, threshold_hours)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				description = EXCLUDED.description,
				criteria = EXCLUDED.criteria,
				image_url = EXCLUDED.image_url,
				threshold_hours = EXCLUDED.threshold_hours
		`, string(b.ID), b.Name, b.Description, b.Criteria, b.ImageURL, b.ThresholdHours)
		if err != nil {
			return translate(err, "upsert badge "+string(b.ID))
		}
	}
	return nil
}

func (s *BadgeStore) ListBadges(ctx context.Context) ([]badge.Badge, error) {
	rows, err := txcontext.ExecutorFrom(ctx, s.db).QueryContext(ctx, `
		SELECT id, name, description, criteria, image_url, threshold_hours
		FROM badges ORDER BY threshold_hours, id
	`)
	if err != nil {
		return nil, translate(err, "list badges")
	}
	defer rows.Close()

	var out []badge.Badge
	for rows.Next() {
		var (
			b       badge.Badge
			badgeID string
		)
		if err := rows.Scan(&badgeID, &b.Name, &b.Description, &b.Criteria, &b.ImageURL, &b.ThresholdHours); err != nil {
			return nil, fmt.Errorf("scan badge: %w", err)
		}
		b.ID = id.BadgeID(badgeID)
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate badges: %w", err)
	}
	return out, nil
}

func (s *BadgeStore) ListUserBadges(ctx context.Context, userID id.UserID) ([]*badge.UserBadge, error) {
	rows, err := txcontext.ExecutorFrom(ctx, s.db).QueryContext(ctx, `
		SELECT id, user_id, badge_id, event_id, awarded_at
		FROM user_badges WHERE user_id = $1 ORDER BY awarded_at, badge_id
	`, uuid.UUID(userID))
	if err != nil {
		return nil, translate(err, "list user badges")
	}
	defer rows.Close()

	var out []*badge.UserBadge
	for rows.Next() {
		var (
			ub        badge.UserBadge
			ubID, uid uuid.UUID
			badgeID   string
			eventID   uuid.NullUUID
		)
		if err := rows.Scan(&ubID, &uid, &badgeID, &eventID, &ub.AwardedAt); err != nil {
			return nil, fmt.Errorf("scan user badge: %w", err)
		}
		ub.ID = id.UserBadgeID(ubID)
		ub.UserID = id.UserID(uid)
		ub.BadgeID = id.BadgeID(badgeID)
		ub.AwardedAt = ub.AwardedAt.UTC()
		if eventID.Valid {
			e := id.EventID(eventID.UUID)
			ub.EventID = &e
		}
		out = append(out, &ub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user badges: %w", err)
	}
	return out, nil
}

// Grant inserts the award; the (user_id, badge_id) constraint makes a
// concurrent or repeated grant a no-op reported as false.
func (s *BadgeStore) Grant(ctx context.Context, ub *badge.UserBadge) (bool, error) {
	var eventID uuid.NullUUID
	if ub.EventID != nil {
		eventID = uuid.NullUUID{UUID: uuid.UUID(*ub.EventID), Valid: true}
	}
	res, err := txcontext.ExecutorFrom(ctx, s.db).ExecContext(ctx, `
		INSERT INTO user_badges (id, user_id, badge_id, event_id, awarded_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, badge_id) DO NOTHING
	`, uuid.UUID(ub.ID), uuid.UUID(ub.UserID), string(ub.BadgeID), eventID, ub.AwardedAt)
	if err != nil {
		return false, translate(err, "grant badge")
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("grant badge rows affected: %w", err)
	}
	return rows == 1, nil
}
