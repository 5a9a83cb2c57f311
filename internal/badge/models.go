package badge

import (
	"time"

	id "volunteerhub/pkg/domain"
)

// Badge is a catalog entry earned once a volunteer's cumulative hours reach
// ThresholdHours.
type Badge struct {
	ID             id.BadgeID `json:"id"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	Criteria       string     `json:"criteria"`
	ImageURL       string     `json:"image_url"`
	ThresholdHours float64    `json:"threshold_hours"`
}

// UserBadge records that a user holds a badge. At most one per (UserID,
// BadgeID); never revoked. EventID names the event whose hours triggered the
// award when known.
type UserBadge struct {
	ID        id.UserBadgeID `json:"id"`
	UserID    id.UserID      `json:"user_id"`
	BadgeID   id.BadgeID     `json:"badge_id"`
	EventID   *id.EventID    `json:"event_id,omitempty"`
	AwardedAt time.Time      `json:"awarded_at"`
}

// HeldBadge is a UserBadge joined with its catalog entry for display.
type HeldBadge struct {
	Badge     Badge       `json:"badge"`
	AwardedAt time.Time   `json:"awarded_at"`
	EventID   *id.EventID `json:"event_id,omitempty"`
}
