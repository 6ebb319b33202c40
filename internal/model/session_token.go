package model

import (
	"errors"
	"fmt"

	"github.com/gofrs/uuid/v5"
)

// ErrInvalidSessionToken is returned when parsing a malformed session token.
var ErrInvalidSessionToken = errors.New("invalid session token")

// SessionToken is an opaque bearer credential. It has no expiry; it stays valid
// until the owning user logs out with it.
type SessionToken struct{ id uuid.UUID }

// NewSessionToken returns a fresh random (v4) token.
func NewSessionToken() (SessionToken, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return SessionToken{}, fmt.Errorf("generate session token: %w", err)
	}
	return SessionToken{id: id}, nil
}

// ParseSessionToken parses the canonical string form produced by String.
func ParseSessionToken(s string) (SessionToken, error) {
	id, err := uuid.FromString(s)
	if err != nil || id == uuid.Nil {
		return SessionToken{}, fmt.Errorf("%w: %q", ErrInvalidSessionToken, s)
	}
	return SessionToken{id: id}, nil
}

// String returns the canonical lowercase hyphenated form.
func (t SessionToken) String() string { return t.id.String() }

// IsZero reports whether t is the zero value.
func (t SessionToken) IsZero() bool { return t.id == uuid.Nil }
