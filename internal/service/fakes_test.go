package service

import (
	"context"
	"sync"
	"time"

	"github.com/and161185/todo-keeper/internal/errs"
	"github.com/and161185/todo-keeper/internal/limiter"
	"github.com/and161185/todo-keeper/internal/model"
	"github.com/and161185/todo-keeper/internal/repository"
)

type fakeUsers struct {
	mu       sync.Mutex
	byName   map[string]*model.User
	tokens   map[model.SessionToken]string
	getErr   error
	hideName bool // GetByUsername reports not found, simulating a lost race
	hideIDs  bool // GetByID reports not found, simulating an id race

	createErr error
	attachErr error
	detachErr error
	tokenErr  error
}

var _ repository.UserRepository = (*fakeUsers)(nil)

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byName: map[string]*model.User{}, tokens: map[model.SessionToken]string{}}
}

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.byName[u.Username]; ok {
		return errs.ErrAlreadyExists
	}
	for _, existing := range f.byName {
		if existing.ID == u.ID {
			return errs.ErrIDConflict
		}
	}
	c := *u
	f.byName[u.Username] = &c
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id model.UserID) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.hideIDs {
		return nil, errs.ErrNotFound
	}
	for _, u := range f.byName {
		if u.ID == id {
			c := *u
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byName[username]
	if !ok || f.hideName {
		return nil, errs.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (f *fakeUsers) GetBySessionToken(_ context.Context, tok model.SessionToken) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.tokenErr != nil {
		return nil, f.tokenErr
	}
	name, ok := f.tokens[tok]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *f.byName[name]
	return &c, nil
}

func (f *fakeUsers) AttachSessionToken(_ context.Context, username string, tok model.SessionToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.attachErr != nil {
		return f.attachErr
	}
	if _, ok := f.byName[username]; !ok {
		return errs.ErrNotFound
	}
	f.tokens[tok] = username
	return nil
}

func (f *fakeUsers) DetachSessionToken(_ context.Context, tok model.SessionToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.detachErr != nil {
		return f.detachErr
	}
	delete(f.tokens, tok)
	return nil
}

type fakeTodos struct {
	mu     sync.Mutex
	lists  map[model.UserID][]string
	getErr error
	addErr error
}

var _ repository.TodoRepository = (*fakeTodos)(nil)

func newFakeTodos() *fakeTodos { return &fakeTodos{lists: map[model.UserID][]string{}} }

func (f *fakeTodos) Get(_ context.Context, owner model.UserID) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	return append([]string(nil), f.lists[owner]...), nil
}

func (f *fakeTodos) Append(_ context.Context, owner model.UserID, task string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return nil, f.addErr
	}
	f.lists[owner] = append(f.lists[owner], task)
	return append([]string(nil), f.lists[owner]...), nil
}

type fakeLimiter struct {
	mu sync.Mutex

	allowOK  bool
	allowErr error

	failBlocked bool
	failErr     error

	successErr error

	allowCalls   int
	failureCalls int
	successCalls int
}

var _ limiter.Limiter = (*fakeLimiter)(nil)

func (l *fakeLimiter) Allow(context.Context, string, []byte) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.allowCalls++
	if !l.allowOK {
		return false, time.Minute, l.allowErr
	}
	return true, 0, l.allowErr
}

func (l *fakeLimiter) Success(context.Context, string, []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.successCalls++
	return l.successErr
}

func (l *fakeLimiter) Failure(context.Context, string, []byte) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failureCalls++
	if l.failBlocked {
		return true, time.Minute, l.failErr
	}
	return false, 0, l.failErr
}
