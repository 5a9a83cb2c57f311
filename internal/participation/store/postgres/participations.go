package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"volunteerhub/internal/participation/models"
	id "volunteerhub/pkg/domain"
	"volunteerhub/pkg/platform/sentinel"
	txcontext "volunteerhub/pkg/platform/tx"
)

const participationColumns = `id, user_id, event_id, status, volunteer_hours, applied_at, approved_at, completed_at`

type ParticipationStore struct {
	db *sql.DB
}

func NewParticipationStore(db *sql.DB) *ParticipationStore {
	return &ParticipationStore{db: db}
}

func (s *ParticipationStore) Create(ctx context.Context, p *models.Participation) error {
	_, err := txcontext.ExecutorFrom(ctx, s.db).ExecContext(ctx, `
		INSERT INTO participations (`+participationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		uuid.UUID(p.ID),
		uuid.UUID(p.UserID),
		uuid.UUID(p.EventID),
		string(p.Status),
		p.VolunteerHours,
		p.AppliedAt,
		nullTime(p.ApprovedAt),
		nullTime(p.CompletedAt),
	)
	return translate(err, "create participation")
}

func (s *ParticipationStore) FindByID(ctx context.Context, participationID id.ParticipationID) (*models.Participation, error) {
	return s.findOne(ctx, `SELECT `+participationColumns+` FROM participations WHERE id = $1`, uuid.UUID(participationID))
}

func (s *ParticipationStore) FindByIDForUpdate(ctx context.Context, participationID id.ParticipationID) (*models.Participation, error) {
	return s.findOne(ctx, `SELECT `+participationColumns+` FROM participations WHERE id = $1 FOR UPDATE`, uuid.UUID(participationID))
}

func (s *ParticipationStore) FindByUserAndEvent(ctx context.Context, userID id.UserID, eventID id.EventID) (*models.Participation, error) {
	return s.findOne(ctx, `SELECT `+participationColumns+` FROM participations WHERE user_id = $1 AND event_id = $2`,
		uuid.UUID(userID), uuid.UUID(eventID))
}

func (s *ParticipationStore) ListByUser(ctx context.Context, userID id.UserID) ([]*models.Participation, error) {
	return s.list(ctx, `SELECT `+participationColumns+` FROM participations WHERE user_id = $1 ORDER BY applied_at DESC`, uuid.UUID(userID))
}

func (s *ParticipationStore) ListByEvent(ctx context.Context, eventID id.EventID) ([]*models.Participation, error) {
	return s.list(ctx, `SELECT `+participationColumns+` FROM participations WHERE event_id = $1 ORDER BY applied_at DESC`, uuid.UUID(eventID))
}

func (s *ParticipationStore) CountByEventAndStatus(ctx context.Context, eventID id.EventID, status models.Status) (int, error) {
	var n int
	err := txcontext.ExecutorFrom(ctx, s.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM participations WHERE event_id = $1 AND status = $2`,
		uuid.UUID(eventID), string(status),
	).Scan(&n)
	if err != nil {
		return 0, translate(err, "count participations")
	}
	return n, nil
}

func (s *ParticipationStore) Update(ctx context.Context, p *models.Participation) error {
	res, err := txcontext.ExecutorFrom(ctx, s.db).ExecContext(ctx, `
		UPDATE participations
		SET status = $2, volunteer_hours = $3, approved_at = $4, completed_at = $5
		WHERE id = $1
	`,
		uuid.UUID(p.ID),
		string(p.Status),
		p.VolunteerHours,
		nullTime(p.ApprovedAt),
		nullTime(p.CompletedAt),
	)
	if err != nil {
		return translate(err, "update participation")
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update participation rows affected: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *ParticipationStore) findOne(ctx context.Context, query string, args ...any) (*models.Participation, error) {
	p, err := scanParticipation(txcontext.ExecutorFrom(ctx, s.db).QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, translate(err, "find participation")
	}
	return p, nil
}

func (s *ParticipationStore) list(ctx context.Context, query string, args ...any) ([]*models.Participation, error) {
	rows, err := txcontext.ExecutorFrom(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translate(err, "list participations")
	}
	defer rows.Close()

	var out []*models.Participation
	for rows.Next() {
		p, err := scanParticipation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan participation: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate participations: %w", err)
	}
	return out, nil
}

func scanParticipation(row rowScanner) (*models.Participation, error) {
	var (
		p                       models.Participation
		pid, userID, eventID    uuid.UUID
		status                  string
		approvedAt, completedAt sql.NullTime
	)
	if err := row.Scan(&pid, &userID, &eventID, &status, &p.VolunteerHours, &p.AppliedAt, &approvedAt, &completedAt); err != nil {
		return nil, err
	}
	p.ID = id.ParticipationID(pid)
	p.UserID = id.UserID(userID)
	p.EventID = id.EventID(eventID)
	p.Status = models.Status(status)
	p.AppliedAt = p.AppliedAt.UTC()
	p.ApprovedAt = timePtr(approvedAt)
	p.CompletedAt = timePtr(completedAt)
	return &p, nil
}
