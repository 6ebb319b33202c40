package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/and161185/todo-keeper/internal/crypto"
	"github.com/and161185/todo-keeper/internal/errs"
	"github.com/and161185/todo-keeper/internal/model"
)

// Constraint names from migrations/00001_init.sql.
const (
	usersPKey        = "users_pkey"
	usersUsernameKey = "users_username_key"
)

// UserRepo implements UserRepository using PostgreSQL. Session tokens live in
// their own table keyed by token.
type UserRepo struct{ db *DB }

// NewUserRepo constructs a user repository.
func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

// Create inserts a new user row.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	const q = `
INSERT INTO users (id, username, password_hash, email)
VALUES ($1, $2, $3, $4)`
	_, err := r.db.Pool.Exec(ctx, q, u.ID.String(), u.Username, u.Password.String(), u.Email)
	if constraint, ok := uniqueViolation(err); ok {
		if constraint == usersPKey {
			return errs.ErrIDConflict
		}
		return errs.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID selects a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id model.UserID) (*model.User, error) {
	const q = `
SELECT id, username, password_hash, email
FROM users WHERE id=$1`
	return scanUser(r.db.Pool.QueryRow(ctx, q, id.String()))
}

// GetByUsername selects a user by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	const q = `
SELECT id, username, password_hash, email
FROM users WHERE username=$1`
	return scanUser(r.db.Pool.QueryRow(ctx, q, username))
}

// GetBySessionToken selects the user holding tok.
func (r *UserRepo) GetBySessionToken(ctx context.Context, tok model.SessionToken) (*model.User, error) {
	const q = `
SELECT u.id, u.username, u.password_hash, u.email
FROM users u JOIN sessions s ON s.user_id = u.id
WHERE s.token=$1`
	return scanUser(r.db.Pool.QueryRow(ctx, q, tok.String()))
}

// AttachSessionToken inserts a session row for the named user.
func (r *UserRepo) AttachSessionToken(ctx context.Context, username string, tok model.SessionToken) error {
	const q = `
INSERT INTO sessions (token, user_id)
SELECT $1, id FROM users WHERE username=$2`
	tag, err := r.db.Pool.Exec(ctx, q, tok.String(), username)
	if err != nil {
		return fmt.Errorf("attach session token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// DetachSessionToken deletes the session row, if any.
func (r *UserRepo) DetachSessionToken(ctx context.Context, tok model.SessionToken) error {
	const q = `DELETE FROM sessions WHERE token=$1`
	if _, err := r.db.Pool.Exec(ctx, q, tok.String()); err != nil {
		return fmt.Errorf("detach session token: %w", err)
	}
	return nil
}

func scanUser(row pgx.Row) (*model.User, error) {
	var (
		id, username, hash string
		email              *string
	)
	if err := row.Scan(&id, &username, &hash, &email); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	uid, err := model.ParseUserID(id)
	if err != nil {
		return nil, fmt.Errorf("stored user id: %w", err)
	}
	pwd, err := crypto.ParseHashedPassword(hash)
	if err != nil {
		return nil, fmt.Errorf("stored password of %s: %w", uid, err)
	}
	return &model.User{ID: uid, Username: username, Password: pwd, Email: email}, nil
}
