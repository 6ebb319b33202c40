// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/and161185/todo-keeper/internal/model"
)

// UserRepository provides access to users and the session tokens attached to them.
// Every method is a single round trip to storage; callers get no cross-call atomicity.
type UserRepository interface {
	// Create inserts a new user with an empty token set.
	// Returns errs.ErrAlreadyExists on a username clash and errs.ErrIDConflict on an id clash.
	Create(ctx context.Context, u *model.User) error
	// GetByID loads a user by ID.
	GetByID(ctx context.Context, id model.UserID) (*model.User, error)
	// GetByUsername loads a user by username.
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// GetBySessionToken loads the user holding tok.
	GetBySessionToken(ctx context.Context, tok model.SessionToken) (*model.User, error)
	// AttachSessionToken adds tok to the token set of the named user.
	AttachSessionToken(ctx context.Context, username string, tok model.SessionToken) error
	// DetachSessionToken removes tok from whichever user holds it. Unknown tokens are not an error.
	DetachSessionToken(ctx context.Context, tok model.SessionToken) error
}
