package repository

import (
	"context"

	"github.com/and161185/todo-keeper/internal/model"
)

// TodoRepository stores one ordered task list per user.
type TodoRepository interface {
	// Get returns the user's tasks; a user without a document has an empty list.
	Get(ctx context.Context, owner model.UserID) ([]string, error)
	// Append atomically pushes task to the end of the owner's list, creating the
	// document on first use, and returns the resulting list.
	Append(ctx context.Context, owner model.UserID, task string) ([]string, error)
}

// Pinger is implemented by backends that can report connectivity for health checks.
type Pinger interface {
	Ping(ctx context.Context) error
}
