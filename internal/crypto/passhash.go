// Package crypto implements server-side password hashing, verification and policy.
package crypto

import (
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Password policy.
const (
	minPasswordLen = 6  // exclusive
	maxPasswordLen = 15 // exclusive

	specialChars = "0123456789=!<[>]()-/{}~+%$|#';&+€"
	invalidChars = "#:\\\""
)

// ErrInvalidHash is returned when a stored digest cannot be decoded.
var ErrInvalidHash = errors.New("invalid password hash")

// HashedPassword is a Keccak-256 digest of a plaintext password.
// Hashes are unsalted so that digests written by earlier deployments keep verifying.
type HashedPassword []byte

// HashPassword returns the Keccak-256 digest of password.
func HashPassword(password string) HashedPassword {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(password))
	return h.Sum(nil)
}

// ParseHashedPassword decodes the lowercase hex form produced by String.
func ParseHashedPassword(s string) (HashedPassword, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}
	return b, nil
}

// String returns the digest as lowercase hex.
func (h HashedPassword) String() string { return hex.EncodeToString(h) }

// Matches rehashes candidate and compares digests in constant time.
func (h HashedPassword) Matches(candidate string) bool {
	return subtle.ConstantTimeCompare(HashPassword(candidate), h) == 1
}

// CheckPassword reports whether password satisfies the policy: byte length in
// (6, 15), at least one special character and no invalid character.
func CheckPassword(password string) bool {
	return len(password) > minPasswordLen &&
		len(password) < maxPasswordLen &&
		strings.ContainsAny(password, specialChars) &&
		!strings.ContainsAny(password, invalidChars)
}
