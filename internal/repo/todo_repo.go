package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/didi/gendry/builder"
	"github.com/jmoiron/sqlx"

	"github.com/xxxsen/mtodo/internal/model"
	"github.com/xxxsen/mtodo/internal/pkg/dbutil"
	appErr "github.com/xxxsen/mtodo/internal/pkg/errors"
)

var todoColumns = []string{"id", "title", "description", "owner_id", "created_at", "updated_at"}

type TodoRepo struct {
	db      *sqlx.DB
	dialect string
}

func NewTodoRepo(db *sqlx.DB) *TodoRepo {
	return &TodoRepo{db: db, dialect: dbutil.DialectOf(db)}
}

func (r *TodoRepo) Create(ctx context.Context, todo *model.Todo) error {
	data := map[string]interface{}{
		"title":       todo.Title,
		"description": todo.Description,
		"owner_id":    todo.OwnerID,
		"created_at":  todo.CreatedAt,
		"updated_at":  todo.UpdatedAt,
	}
	sqlStr, args, err := builder.BuildInsert("todos", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(r.dialect, sqlStr+" RETURNING id", args)
	if err := r.db.QueryRowxContext(ctx, sqlStr, args...).Scan(&todo.ID); err != nil {
		return fmt.Errorf("insert todo: %w", err)
	}
	return nil
}

// GetByID loads a todo regardless of owner; callers must check ownership.
func (r *TodoRepo) GetByID(ctx context.Context, todoID int64) (*model.Todo, error) {
	where := map[string]interface{}{"id": todoID, "_limit": []uint{0, 1}}
	sqlStr, args, err := builder.BuildSelect("todos", where, todoColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(r.dialect, sqlStr, args)
	var todo model.Todo
	if err := r.db.GetContext(ctx, &todo, sqlStr, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErr.ErrNotFound
		}
		return nil, fmt.Errorf("select todo: %w", err)
	}
	return &todo, nil
}

// List returns the owner's todos newest first, optionally filtered by a
// case-insensitive substring of title or description.
func (r *TodoRepo) List(ctx context.Context, ownerID int64, query string, skip, limit int) ([]model.Todo, error) {
	if skip < 0 {
		skip = 0
	}
	where := map[string]interface{}{
		"owner_id": ownerID,
		"_orderby": "id desc",
		"_limit":   []uint{uint(skip), uint(limit)},
	}
	if query != "" {
		pattern := "%" + dbutil.EscapeLike(query) + "%"
		where["_custom_search"] = builder.Custom(
			`(LOWER(title) LIKE LOWER(?) ESCAPE '\' OR LOWER(description) LIKE LOWER(?) ESCAPE '\')`,
			pattern, pattern,
		)
	}
	sqlStr, args, err := builder.BuildSelect("todos", where, todoColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(r.dialect, sqlStr, args)
	todos := make([]model.Todo, 0)
	if err := r.db.SelectContext(ctx, &todos, sqlStr, args...); err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	return todos, nil
}

func (r *TodoRepo) Update(ctx context.Context, todo *model.Todo) error {
	where := map[string]interface{}{
		"id":       todo.ID,
		"owner_id": todo.OwnerID,
	}
	update := map[string]interface{}{
		"title":       todo.Title,
		"description": todo.Description,
		"updated_at":  todo.UpdatedAt,
	}
	sqlStr, args, err := builder.BuildUpdate("todos", where, update)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(r.dialect, sqlStr, args)
	return execAffected(ctx, r.db, sqlStr, args)
}

func (r *TodoRepo) Delete(ctx context.Context, ownerID, todoID int64) error {
	where := map[string]interface{}{
		"id":       todoID,
		"owner_id": ownerID,
	}
	sqlStr, args, err := builder.BuildDelete("todos", where)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(r.dialect, sqlStr, args)
	return execAffected(ctx, r.db, sqlStr, args)
}
