package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/and161185/todo-keeper/internal/errs"
	"github.com/and161185/todo-keeper/internal/model"
	"github.com/and161185/todo-keeper/internal/repository"
)

// TodoService reads and appends to per-user task lists.
type TodoService struct {
	repo repository.TodoRepository
	log  *zap.Logger
}

// NewTodoService constructs TodoService.
func NewTodoService(repo repository.TodoRepository, log *zap.Logger) *TodoService {
	if log == nil {
		log = zap.NewNop()
	}
	return &TodoService{repo: repo, log: log}
}

// GetList returns the owner's tasks in insertion order, never nil.
func (s *TodoService) GetList(ctx context.Context, owner model.UserID) ([]string, error) {
	tasks, err := s.repo.Get(ctx, owner)
	if err != nil {
		s.log.Error("get todo list", zap.String("owner", owner.String()), zap.Error(err))
		return nil, fmt.Errorf("%w: get todo list: %w", errs.ErrInternal, err)
	}
	if tasks == nil {
		tasks = []string{}
	}
	return tasks, nil
}

// AddTask appends text to the owner's list and returns the resulting list.
// Any string is accepted, including the empty one.
func (s *TodoService) AddTask(ctx context.Context, owner model.UserID, text string) ([]string, error) {
	tasks, err := s.repo.Append(ctx, owner, text)
	if err != nil {
		s.log.Error("append task", zap.String("owner", owner.String()), zap.Error(err))
		return nil, fmt.Errorf("%w: append task: %w", errs.ErrInternal, err)
	}
	return tasks, nil
}
