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

const timeLogColumns = `id, participation_id, user_id, event_id, check_in_time, check_out_time, hours_worked`

type TimeLogStore struct {
	db *sql.DB
}

func NewTimeLogStore(db *sql.DB) *TimeLogStore {
	return &TimeLogStore{db: db}
}

// Create relies on time_logs_one_open_per_participation to reject a second
// open session; the violation surfaces as sentinel.ErrAlreadyUsed.
func (s *TimeLogStore) Create(ctx context.Context, log *models.TimeLog) error {
	_, err := txcontext.ExecutorFrom(ctx, s.db).ExecContext(ctx, `
		INSERT INTO time_logs (`+timeLogColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		uuid.UUID(log.ID),
		uuid.UUID(log.ParticipationID),
		uuid.UUID(log.UserID),
		uuid.UUID(log.EventID),
		log.CheckInTime,
		nullTime(log.CheckOutTime),
		log.HoursWorked,
	)
	return translate(err, "create time log")
}

func (s *TimeLogStore) FindOpen(ctx context.Context, participationID id.ParticipationID) (*models.TimeLog, error) {
	log, err := scanTimeLog(txcontext.ExecutorFrom(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+timeLogColumns+` FROM time_logs WHERE participation_id = $1 AND check_out_time IS NULL`,
		uuid.UUID(participationID),
	))
	if err != nil {
		return nil, translate(err, "find open time log")
	}
	return log, nil
}

func (s *TimeLogStore) ListByParticipation(ctx context.Context, participationID id.ParticipationID) ([]*models.TimeLog, error) {
	return s.list(ctx,
		`SELECT `+timeLogColumns+` FROM time_logs WHERE participation_id = $1 ORDER BY check_in_time`,
		uuid.UUID(participationID))
}

func (s *TimeLogStore) ListOpenByUser(ctx context.Context, userID id.UserID) ([]*models.TimeLog, error) {
	return s.list(ctx,
		`SELECT `+timeLogColumns+` FROM time_logs WHERE user_id = $1 AND check_out_time IS NULL ORDER BY check_in_time`,
		uuid.UUID(userID))
}

func (s *TimeLogStore) Update(ctx context.Context, log *models.TimeLog) error {
	res, err := txcontext.ExecutorFrom(ctx, s.db).ExecContext(ctx, `
		UPDATE time_logs SET check_out_time = $2, hours_worked = $3 WHERE id = $1
	`,
		uuid.UUID(log.ID),
		nullTime(log.CheckOutTime),
		log.HoursWorked,
	)
	if err != nil {
		return translate(err, "update time log")
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update time log rows affected: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *TimeLogStore) list(ctx context.Context, query string, args ...any) ([]*models.TimeLog, error) {
	rows, err := txcontext.ExecutorFrom(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translate(err, "list time logs")
	}
	defer rows.Close()

	var out []*models.TimeLog
	for rows.Next() {
		log, err := scanTimeLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan time log: %w", err)
		}
		out = append(out, log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate time logs: %w", err)
	}
	return out, nil
}

func scanTimeLog(row rowScanner) (*models.TimeLog, error) {
	var (
		log                         models.TimeLog
		logID, partID, userID, evID uuid.UUID
		checkOut                    sql.NullTime
	)
	if err := row.Scan(&logID, &partID, &userID, &evID, &log.CheckInTime, &checkOut, &log.HoursWorked); err != nil {
		return nil, err
	}
	log.ID = id.TimeLogID(logID)
	log.ParticipationID = id.ParticipationID(partID)
	log.UserID = id.UserID(userID)
	log.EventID = id.EventID(evID)
	log.CheckInTime = log.CheckInTime.UTC()
	log.CheckOutTime = timePtr(checkOut)
	return &log, nil
}
