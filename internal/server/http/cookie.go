package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/and161185/todo-keeper/internal/model"
)

// Session cookie attributes.
const (
	SessionCookie = "session_token"
	cookiePath    = "/api"
)

// cookieCodec turns session tokens into cookie values and back. With a key the
// value is an HS256 JWT whose subject is the token; without one it is the raw token.
type cookieCodec struct {
	key    []byte
	secure bool
}

func (cc cookieCodec) encode(tok model.SessionToken) (string, error) {
	if len(cc.key) == 0 {
		return tok.String(), nil
	}
	claims := jwt.RegisteredClaims{
		Subject:  tok.String(),
		IssuedAt: jwt.NewNumericDate(time.Now()),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(cc.key)
}

func (cc cookieCodec) decode(v string) (model.SessionToken, error) {
	if len(cc.key) == 0 {
		return model.ParseSessionToken(v)
	}
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(v, &claims, func(*jwt.Token) (any, error) {
		return cc.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return model.SessionToken{}, fmt.Errorf("session cookie: %w", err)
	}
	if !parsed.Valid {
		return model.SessionToken{}, errors.New("session cookie: invalid signature")
	}
	return model.ParseSessionToken(claims.Subject)
}

// set writes the session cookie. HttpOnly, scoped to /api, SameSite=Lax.
func (cc cookieCodec) set(c *gin.Context, value string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, value, 0, cookiePath, "", cc.secure, true)
}

func (cc cookieCodec) clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, cookiePath, "", cc.secure, true)
}

// token extracts and decodes the session cookie. ok is false when the cookie
// is absent or cannot be decoded.
func (cc cookieCodec) token(c *gin.Context) (model.SessionToken, bool) {
	v, err := c.Cookie(SessionCookie)
	if err != nil || v == "" {
		return model.SessionToken{}, false
	}
	tok, err := cc.decode(v)
	if err != nil {
		return model.SessionToken{}, false
	}
	return tok, true
}
