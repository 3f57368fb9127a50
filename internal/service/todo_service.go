package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xxxsen/mtodo/internal/model"
	appErr "github.com/xxxsen/mtodo/internal/pkg/errors"
	"github.com/xxxsen/mtodo/internal/pkg/timeutil"
	"github.com/xxxsen/mtodo/internal/repo"
)

const (
	TitleMaxLen      = 200
	DefaultListLimit = 20
	MaxListLimit     = 100
)

type TodoService struct {
	todos *repo.TodoRepo
	now   func() time.Time
}

func NewTodoService(todos *repo.TodoRepo) *TodoService {
	return &TodoService{todos: todos, now: time.Now}
}

type TodoCreateInput struct {
	Title       string
	Description string
}

// TodoUpdateInput leaves a field untouched when it is nil.
type TodoUpdateInput struct {
	Title       *string
	Description *string
}

type TodoListQuery struct {
	Query string
	Skip  int
	Limit int
}

// authorizeOwner hides todos that do not belong to owner behind ErrNotFound,
// so absence and foreign ownership look the same to the caller.
func authorizeOwner(todo *model.Todo, err error, owner *model.User) (*model.Todo, error) {
	if err != nil {
		return nil, err
	}
	if todo == nil || owner == nil || todo.OwnerID != owner.ID {
		return nil, appErr.ErrNotFound
	}
	return todo, nil
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return appErr.NewValidationError("title", "required")
	}
	if utf8.RuneCountInString(title) > TitleMaxLen {
		return appErr.NewValidationError("title", "must be at most 200 characters")
	}
	return nil
}

func (s *TodoService) Create(ctx context.Context, owner *model.User, input TodoCreateInput) (*model.Todo, error) {
	if err := validateTitle(input.Title); err != nil {
		return nil, err
	}
	now := timeutil.ToMillis(s.now())
	todo := &model.Todo{
		Title:       input.Title,
		Description: input.Description,
		OwnerID:     owner.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.todos.Create(ctx, todo); err != nil {
		return nil, err
	}
	return todo, nil
}

func (s *TodoService) List(ctx context.Context, owner *model.User, query TodoListQuery) ([]model.Todo, error) {
	if query.Skip < 0 {
		return nil, appErr.NewValidationError("skip", "must be greater than or equal to 0")
	}
	if query.Limit == 0 {
		query.Limit = DefaultListLimit
	}
	if query.Limit < 1 || query.Limit > MaxListLimit {
		return nil, appErr.NewValidationError("limit", "must be between 1 and 100")
	}
	return s.todos.List(ctx, owner.ID, query.Query, query.Skip, query.Limit)
}

func (s *TodoService) Get(ctx context.Context, owner *model.User, todoID int64) (*model.Todo, error) {
	todo, err := s.todos.GetByID(ctx, todoID)
	return authorizeOwner(todo, err, owner)
}

func (s *TodoService) Update(ctx context.Context, owner *model.User, todoID int64, input TodoUpdateInput) (*model.Todo, error) {
	if input.Title != nil {
		if err := validateTitle(*input.Title); err != nil {
			return nil, err
		}
	}
	todo, err := s.Get(ctx, owner, todoID)
	if err != nil {
		return nil, err
	}
	if input.Title != nil {
		todo.Title = *input.Title
	}
	if input.Description != nil {
		todo.Description = *input.Description
	}
	// updated_at must move forward even for two writes in one millisecond
	updatedAt := timeutil.ToMillis(s.now())
	if updatedAt <= todo.UpdatedAt {
		updatedAt = todo.UpdatedAt + 1
	}
	todo.UpdatedAt = updatedAt
	if err := s.todos.Update(ctx, todo); err != nil {
		return nil, err
	}
	return todo, nil
}

func (s *TodoService) Delete(ctx context.Context, owner *model.User, todoID int64) error {
	if _, err := s.Get(ctx, owner, todoID); err != nil {
		return err
	}
	return s.todos.Delete(ctx, owner.ID, todoID)
}
