package model

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// UserIDLen is the length of the string form of a UserID.
const UserIDLen = 12

// ErrInvalidUserID is returned when parsing a malformed user id.
var ErrInvalidUserID = errors.New("invalid user id")

// UserID is a fixed-length identifier made of lowercase hex digits.
// The zero value is not a valid id.
type UserID string

// NewUserID returns a random id. Each position is drawn independently and
// uniformly from the 16 hex digits: every random byte yields two digits.
func NewUserID() (UserID, error) {
	b := make([]byte, UserIDLen/2)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate user id: %w", err)
	}
	return UserID(hex.EncodeToString(b)), nil
}

// ParseUserID parses s case-insensitively.
func ParseUserID(s string) (UserID, error) {
	if len(s) != UserIDLen {
		return "", fmt.Errorf("%w: length %d, want %d", ErrInvalidUserID, len(s), UserIDLen)
	}
	s = strings.ToLower(s)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return "", fmt.Errorf("%w: invalid character %q", ErrInvalidUserID, c)
		}
	}
	return UserID(s), nil
}

// MustParseUserID is like ParseUserID but panics on error. Intended for tests and constants.
func MustParseUserID(s string) UserID {
	id, err := ParseUserID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// String returns the canonical lowercase form.
func (id UserID) String() string { return string(id) }

// IsZero reports whether id is the zero value.
func (id UserID) IsZero() bool { return id == "" }

// Compare orders ids lexicographically by their string form.
func (id UserID) Compare(other UserID) int { return strings.Compare(string(id), string(other)) }
