package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"volunteerhub/internal/participation/models"
	id "volunteerhub/pkg/domain"
	txcontext "volunteerhub/pkg/platform/tx"
)

const eventColumns = `id, organization_id, title, description, location, start_time, end_time, max_participants, created_at`

type EventStore struct {
	db *sql.DB
}

func NewEventStore(db *sql.DB) *EventStore {
	return &EventStore{db: db}
}

func (s *EventStore) Create(ctx context.Context, e *models.Event) error {
	_, err := txcontext.ExecutorFrom(ctx, s.db).ExecContext(ctx, `
		INSERT INTO events (`+eventColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		uuid.UUID(e.ID),
		uuid.UUID(e.OrganizationID),
		e.Title,
		e.Description,
		e.Location,
		e.StartTime,
		e.EndTime,
		e.MaxParticipants,
		e.CreatedAt,
	)
	return translate(err, "create event")
}

func (s *EventStore) FindByID(ctx context.Context, eventID id.EventID) (*models.Event, error) {
	return s.findOne(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, eventID)
}

// FindByIDForUpdate locks the event row. Apply and Approve take it before
// counting approved participations so capacity checks cannot interleave.
func (s *EventStore) FindByIDForUpdate(ctx context.Context, eventID id.EventID) (*models.Event, error) {
	return s.findOne(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1 FOR UPDATE`, eventID)
}

// List returns matching events ordered by start time.
func (s *EventStore) List(ctx context.Context, filter models.EventFilter) ([]*models.Event, error) {
	var orgID *uuid.UUID
	if !filter.OrganizationID.IsNil() {
		u := uuid.UUID(filter.OrganizationID)
		orgID = &u
	}
	var endsAfter sql.NullTime
	if !filter.EndsAfter.IsZero() {
		endsAfter = sql.NullTime{Time: filter.EndsAfter, Valid: true}
	}
	rows, err := txcontext.ExecutorFrom(ctx, s.db).QueryContext(ctx, `
		SELECT `+eventColumns+` FROM events
		WHERE ($1::uuid IS NULL OR organization_id = $1)
		  AND ($2::timestamptz IS NULL OR end_time > $2)
		ORDER BY start_time, id
	`, orgID, endsAfter)
	if err != nil {
		return nil, translate(err, "list events")
	}
	defer rows.Close()

	out := make([]*models.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return out, nil
}

func (s *EventStore) findOne(ctx context.Context, query string, eventID id.EventID) (*models.Event, error) {
	e, err := scanEvent(txcontext.ExecutorFrom(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(eventID)))
	if err != nil {
		return nil, translate(err, "find event")
	}
	return e, nil
}

func scanEvent(row rowScanner) (*models.Event, error) {
	var (
		e          models.Event
		eid, orgID uuid.UUID
	)
	if err := row.Scan(
		&eid, &orgID, &e.Title, &e.Description, &e.Location,
		&e.StartTime, &e.EndTime, &e.MaxParticipants, &e.CreatedAt,
	); err != nil {
		return nil, err
	}
	e.ID = id.EventID(eid)
	e.OrganizationID = id.OrganizationID(orgID)
	e.StartTime = e.StartTime.UTC()
	e.EndTime = e.EndTime.UTC()
	e.CreatedAt = e.CreatedAt.UTC()
	return &e, nil
}
