package httpserver

import (
	"context"

	"github.com/and161185/todo-keeper/internal/model"
)

type ctxKey string

const userIDKey ctxKey = "todo.userID"

// WithUserID stores the authenticated user ID in context.
func WithUserID(ctx context.Context, id model.UserID) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// UserIDFromCtx fetches the user ID from context.
func UserIDFromCtx(ctx context.Context) (model.UserID, bool) {
	id, ok := ctx.Value(userIDKey).(model.UserID)
	if !ok || id.IsZero() {
		return "", false
	}
	return id, true
}
