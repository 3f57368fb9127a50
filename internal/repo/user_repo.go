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

var userColumns = []string{"id", "email", "full_name", "password_hash", "is_active", "created_at"}

type UserRepo struct {
	db      *sqlx.DB
	dialect string
}

func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db, dialect: dbutil.DialectOf(db)}
}

// Create inserts user and stores the assigned id back into it.
func (r *UserRepo) Create(ctx context.Context, user *model.User) error {
	data := map[string]interface{}{
		"email":         user.Email,
		"full_name":     user.FullName,
		"password_hash": user.PasswordHash,
		"is_active":     user.IsActive,
		"created_at":    user.CreatedAt,
	}
	sqlStr, args, err := builder.BuildInsert("users", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(r.dialect, sqlStr+" RETURNING id", args)
	if err := r.db.QueryRowxContext(ctx, sqlStr, args...).Scan(&user.ID); err != nil {
		if dbutil.IsConflict(err) {
			return appErr.ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, userID int64) (*model.User, error) {
	return r.getOne(ctx, map[string]interface{}{"id": userID})
}

// GetByEmail matches email case-insensitively.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, map[string]interface{}{
		"_custom_email": builder.Custom("LOWER(email) = LOWER(?)", email),
	})
}

func (r *UserRepo) getOne(ctx context.Context, where map[string]interface{}) (*model.User, error) {
	where["_limit"] = []uint{0, 1}
	sqlStr, args, err := builder.BuildSelect("users", where, userColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(r.dialect, sqlStr, args)
	var user model.User
	if err := r.db.GetContext(ctx, &user, sqlStr, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErr.ErrNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &user, nil
}

func (r *UserRepo) SetActive(ctx context.Context, email string, active bool) error {
	where := map[string]interface{}{
		"_custom_email": builder.Custom("LOWER(email) = LOWER(?)", email),
	}
	sqlStr, args, err := builder.BuildUpdate("users", where, map[string]interface{}{"is_active": active})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(r.dialect, sqlStr, args)
	return execAffected(ctx, r.db, sqlStr, args)
}

// DeleteByEmail removes the user; owned todos go with it through the
// ON DELETE CASCADE foreign key.
func (r *UserRepo) DeleteByEmail(ctx context.Context, email string) error {
	where := map[string]interface{}{
		"_custom_email": builder.Custom("LOWER(email) = LOWER(?)", email),
	}
	sqlStr, args, err := builder.BuildDelete("users", where)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(r.dialect, sqlStr, args)
	return execAffected(ctx, r.db, sqlStr, args)
}
