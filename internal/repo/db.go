package repo

import (
	"context"

	"github.com/jmoiron/sqlx"

	appErr "github.com/xxxsen/mtodo/internal/pkg/errors"
)

// execAffected runs a single-row write and reports ErrNotFound when no row matched.
func execAffected(ctx context.Context, db *sqlx.DB, sqlStr string, args []interface{}) error {
	result, err := db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}
