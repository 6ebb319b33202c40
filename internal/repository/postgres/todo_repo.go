package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/and161185/todo-keeper/internal/model"
)

// TodoRepo implements TodoRepository using PostgreSQL. Each user owns one row
// whose tasks column is a text array.
type TodoRepo struct{ db *DB }

// NewTodoRepo constructs a todo repository.
func NewTodoRepo(db *DB) *TodoRepo { return &TodoRepo{db: db} }

// Get returns the owner's tasks, or an empty list when no row exists.
func (r *TodoRepo) Get(ctx context.Context, owner model.UserID) ([]string, error) {
	const q = `SELECT tasks FROM todos WHERE owner=$1`
	var tasks []string
	if err := r.db.Pool.QueryRow(ctx, q, owner.String()).Scan(&tasks); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("select todos: %w", err)
	}
	if tasks == nil {
		tasks = []string{}
	}
	return tasks, nil
}

// Append concatenates task onto the stored array in a single statement, so
// concurrent appends for one owner serialize on the row lock and none is lost.
func (r *TodoRepo) Append(ctx context.Context, owner model.UserID, task string) ([]string, error) {
	const q = `
INSERT INTO todos (owner, tasks) VALUES ($1, ARRAY[$2::text])
ON CONFLICT (owner) DO UPDATE SET tasks = todos.tasks || EXCLUDED.tasks
RETURNING tasks`
	var tasks []string
	if err := r.db.Pool.QueryRow(ctx, q, owner.String(), task).Scan(&tasks); err != nil {
		return nil, fmt.Errorf("append todo: %w", err)
	}
	return tasks, nil
}
