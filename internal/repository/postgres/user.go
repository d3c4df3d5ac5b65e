package postgres

import (
	"context"
	"database/sql"
	"errors"
)

// UserRepo implements repository.UserRepository
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo creates a new user repository
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// IsAuthorized checks if user is authorized
func (r *UserRepo) IsAuthorized(ctx context.Context, userID int64) (bool, error) {
	var authorized bool
	query := `SELECT authorized FROM users WHERE user_id = $1`
	err := conn(ctx, r.db).QueryRowContext(ctx, query, userID).Scan(&authorized)

	if errors.Is(err, sql.ErrNoRows) {
		// User doesn't exist yet
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return authorized, nil
}

// AuthorizeUser marks user as authorized
func (r *UserRepo) AuthorizeUser(ctx context.Context, userID int64) error {
	query := `
		INSERT INTO users (user_id, authorized)
		VALUES ($1, TRUE)
		ON CONFLICT (user_id)
		DO UPDATE SET authorized = TRUE
	`
	_, err := conn(ctx, r.db).ExecContext(ctx, query, userID)
	return err
}

// EnsureUserExists creates user if not exists and keeps the display name fresh.
// An empty username never overwrites a known one.
func (r *UserRepo) EnsureUserExists(ctx context.Context, userID int64, username string) error {
	query := `
		INSERT INTO users (user_id, username, authorized)
		VALUES ($1, $2, FALSE)
		ON CONFLICT (user_id)
		DO UPDATE SET username = COALESCE(NULLIF(EXCLUDED.username, ''), users.username)
	`
	_, err := conn(ctx, r.db).ExecContext(ctx, query, userID, username)
	return err
}
