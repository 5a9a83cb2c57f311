// Package logstore writes audit events as structured log lines.
package logstore

import (
	"context"
	"log/slog"

	audit "volunteerhub/pkg/platform/audit"
)

type Store struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Store {
	return &Store{logger: logger}
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	attrs := []any{
		"log_type", "audit",
		"action", event.Action,
		"category", event.Category(),
		"user_id", event.UserID,
		"timestamp", event.Timestamp,
	}
	if event.RequestID != "" {
		attrs = append(attrs, "request_id", event.RequestID)
	}
	if !event.ActorID.IsNil() {
		attrs = append(attrs, "actor_id", event.ActorID)
	}
	if !event.EventID.IsNil() {
		attrs = append(attrs, "event_id", event.EventID)
	}
	if !event.ParticipationID.IsNil() {
		attrs = append(attrs, "participation_id", event.ParticipationID)
	}
	if !event.BadgeID.IsNil() {
		attrs = append(attrs, "badge_id", event.BadgeID)
	}
	if event.Hours != 0 {
		attrs = append(attrs, "hours", event.Hours)
	}
	if event.TotalHours != 0 {
		attrs = append(attrs, "total_hours", event.TotalHours)
	}
	s.logger.InfoContext(ctx, string(event.Action), attrs...)
	return nil
}
