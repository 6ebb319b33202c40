// Package service contains application services for authentication and todo lists.
package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/and161185/todo-keeper/internal/crypto"
	"github.com/and161185/todo-keeper/internal/errs"
	"github.com/and161185/todo-keeper/internal/limiter"
	"github.com/and161185/todo-keeper/internal/model"
	"github.com/and161185/todo-keeper/internal/repository"
)

// maxIDAttempts bounds the retries on user id collisions.
const maxIDAttempts = 16

// AuthService is the registration, login and session boundary.
type AuthService struct {
	users repository.UserRepository
	lim   limiter.Limiter
	log   *zap.Logger

	newUserID func() (model.UserID, error)
	newToken  func() (model.SessionToken, error)
}

// NewAuthService constructs AuthService. lim may be nil, which disables login throttling.
func NewAuthService(users repository.UserRepository, lim limiter.Limiter, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{
		users:     users,
		lim:       lim,
		log:       log,
		newUserID: model.NewUserID,
		newToken:  model.NewSessionToken,
	}
}

// Register creates an account and returns a session token already attached to it.
func (s *AuthService) Register(ctx context.Context, username, password string) (model.SessionToken, error) {
	if username == "" {
		return model.SessionToken{}, errs.ErrInvalidInput
	}
	if !crypto.CheckPassword(password) {
		return model.SessionToken{}, errs.ErrPasswordInsufficient
	}

	switch _, err := s.users.GetByUsername(ctx, username); {
	case err == nil:
		return model.SessionToken{}, errs.ErrUsernameInUse
	case !errors.Is(err, errs.ErrNotFound):
		return model.SessionToken{}, s.internal("lookup username", err)
	}

	if err := s.createUser(ctx, username, crypto.HashPassword(password)); err != nil {
		return model.SessionToken{}, err
	}

	tok, err := s.attachNewToken(ctx, username)
	if err != nil {
		return model.SessionToken{}, err
	}
	s.log.Info("user registered", zap.String("username", username))
	return tok, nil
}

func (s *AuthService) createUser(ctx context.Context, username string, pwd crypto.HashedPassword) error {
	for i := 0; i < maxIDAttempts; i++ {
		id, err := s.newUserID()
		if err != nil {
			return s.internal("generate user id", err)
		}
		switch _, err := s.users.GetByID(ctx, id); {
		case err == nil:
			s.log.Debug("user id taken", zap.String("id", id.String()))
			continue
		case !errors.Is(err, errs.ErrNotFound):
			return s.internal("lookup user id", err)
		}
		err = s.users.Create(ctx, &model.User{ID: id, Username: username, Password: pwd})
		switch {
		case err == nil:
			return nil
		case errors.Is(err, errs.ErrAlreadyExists):
			return errs.ErrUsernameInUse
		case errors.Is(err, errs.ErrIDConflict):
			s.log.Debug("user id collision", zap.String("id", id.String()))
			continue
		default:
			return s.internal("create user", err)
		}
	}
	return s.internal("create user", fmt.Errorf("no free id after %d attempts", maxIDAttempts))
}

// Login verifies credentials and attaches a fresh session token to the account.
// An unknown username and a wrong password fail identically.
func (s *AuthService) Login(ctx context.Context, username, password, remoteAddr string) (model.SessionToken, error) {
	ipHash := limiter.HashIP(remoteAddr)
	if s.lim != nil {
		allowed, _, err := s.lim.Allow(ctx, username, ipHash)
		if err != nil {
			return model.SessionToken{}, s.internal("limiter allow", err)
		}
		if !allowed {
			return model.SessionToken{}, errs.ErrRateLimited
		}
	}

	u, err := s.users.GetByUsername(ctx, username)
	if err != nil && !errors.Is(err, errs.ErrNotFound) {
		return model.SessionToken{}, s.internal("lookup username", err)
	}
	if err != nil || !u.Password.Matches(password) {
		return model.SessionToken{}, s.loginFailed(ctx, username, ipHash)
	}

	if s.lim != nil {
		if err := s.lim.Success(ctx, username, ipHash); err != nil {
			s.log.Warn("limiter reset failed", zap.String("username", username), zap.Error(err))
		}
	}
	return s.attachNewToken(ctx, username)
}

func (s *AuthService) loginFailed(ctx context.Context, username string, ipHash []byte) error {
	if s.lim == nil {
		return errs.ErrIncorrectCredentials
	}
	blocked, retry, err := s.lim.Failure(ctx, username, ipHash)
	if err != nil {
		s.log.Warn("limiter record failed", zap.String("username", username), zap.Error(err))
		return errs.ErrIncorrectCredentials
	}
	if blocked {
		s.log.Info("login blocked", zap.String("username", username), zap.Duration("retry_after", retry))
		return errs.ErrRateLimited
	}
	return errs.ErrIncorrectCredentials
}

// Logout detaches tok from its owner. Detaching an unknown token succeeds.
func (s *AuthService) Logout(ctx context.Context, tok *model.SessionToken) error {
	if tok == nil || tok.IsZero() {
		return errs.ErrMissingSessionToken
	}
	if err := s.users.DetachSessionToken(ctx, *tok); err != nil {
		return s.internal("detach session token", err)
	}
	return nil
}

// Resolve maps a presented token to its owner. A missing or unknown token is
// reported as (zero, false, nil); only storage failures return an error.
func (s *AuthService) Resolve(ctx context.Context, tok *model.SessionToken) (model.UserID, bool, error) {
	if tok == nil || tok.IsZero() {
		return "", false, nil
	}
	u, err := s.users.GetBySessionToken(ctx, *tok)
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return "", false, nil
	case err != nil:
		return "", false, s.internal("resolve session token", err)
	}
	return u.ID, true, nil
}

func (s *AuthService) attachNewToken(ctx context.Context, username string) (model.SessionToken, error) {
	tok, err := s.newToken()
	if err != nil {
		return model.SessionToken{}, s.internal("generate session token", err)
	}
	if err := s.users.AttachSessionToken(ctx, username, tok); err != nil {
		// ErrNotFound here means the account vanished between steps.
		return model.SessionToken{}, s.internal("attach session token", err)
	}
	return tok, nil
}

// internal logs the cause and returns ErrInternal wrapping it, so callers can
// still inspect the chain while clients only see the generic kind.
func (s *AuthService) internal(op string, err error) error {
	s.log.Error(op, zap.Error(err))
	return fmt.Errorf("%w: %s: %w", errs.ErrInternal, op, err)
}
