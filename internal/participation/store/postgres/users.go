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

const userColumns = `id, role, name, email, total_volunteer_hours, created_at`

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Ensure(ctx context.Context, u *models.User) error {
	_, err := txcontext.ExecutorFrom(ctx, s.db).ExecContext(ctx, `
		INSERT INTO users (id, role, name, email, total_volunteer_hours, created_at)
		VALUES ($1, $2, $3, $4, 0, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = COALESCE(NULLIF(EXCLUDED.name, ''), users.name),
			email = COALESCE(NULLIF(EXCLUDED.email, ''), users.email)
	`,
		uuid.UUID(u.ID),
		string(u.Role),
		u.Name,
		u.Email,
		u.CreatedAt,
	)
	return translate(err, "ensure user")
}

func (s *UserStore) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	return s.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
}

func (s *UserStore) FindByIDForUpdate(ctx context.Context, userID id.UserID) (*models.User, error) {
	return s.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, userID)
}

func (s *UserStore) UpdateTotalHours(ctx context.Context, userID id.UserID, total float64) error {
	res, err := txcontext.ExecutorFrom(ctx, s.db).ExecContext(ctx,
		`UPDATE users SET total_volunteer_hours = $2 WHERE id = $1`,
		uuid.UUID(userID), total,
	)
	if err != nil {
		return translate(err, "update user total hours")
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user total hours rows affected: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// ListTopByHours returns users with credited hours, highest first.
func (s *UserStore) ListTopByHours(ctx context.Context, limit int) ([]*models.User, error) {
	rows, err := txcontext.ExecutorFrom(ctx, s.db).QueryContext(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE total_volunteer_hours > 0
		ORDER BY total_volunteer_hours DESC, id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, translate(err, "list top users")
	}
	defer rows.Close()

	out := make([]*models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return out, nil
}

func (s *UserStore) findOne(ctx context.Context, query string, userID id.UserID) (*models.User, error) {
	u, err := scanUser(txcontext.ExecutorFrom(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(userID)))
	if err != nil {
		return nil, translate(err, "find user")
	}
	return u, nil
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u    models.User
		uid  uuid.UUID
		role string
	)
	if err := row.Scan(&uid, &role, &u.Name, &u.Email, &u.TotalVolunteerHours, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.ID = id.UserID(uid)
	u.Role = id.Role(role)
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}
