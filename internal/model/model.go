// Package model defines domain entities used by services and repositories.
package model

import "github.com/and161185/todo-keeper/internal/crypto"

// User represents an account stored on the server. Session tokens are kept by the
// repositories and never travel back to API callers, so they are not part of this struct.
type User struct {
	ID       UserID                // PK
	Username string                // unique
	Password crypto.HashedPassword // Keccak-256(password)
	Email    *string               // optional, never set by registration
}

// Credentials is the username/password pair submitted on register and login.
type Credentials struct {
	Username string
	Password string
}

// TodoList is the ordered task list owned by exactly one user.
type TodoList struct {
	Owner UserID
	Tasks []string
}
