package dbutil

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func TestFinalize_Postgres(t *testing.T) {
	query, args := Finalize(DialectPostgres,
		"SELECT id FROM todos WHERE (owner_id=?) ORDER BY id DESC LIMIT ?,?",
		[]interface{}{int64(1), uint(20), uint(10)})
	require.Equal(t, "SELECT id FROM todos WHERE (owner_id=$1) ORDER BY id DESC LIMIT $2 OFFSET $3", query)
	require.Equal(t, []interface{}{int64(1), uint(10), uint(20)}, args)
}

func TestFinalize_SQLite(t *testing.T) {
	query, args := Finalize(DialectSQLite,
		"SELECT id FROM todos WHERE (owner_id=?) LIMIT ?,?",
		[]interface{}{int64(1), uint(0), uint(5)})
	require.Equal(t, "SELECT id FROM todos WHERE (owner_id=?) LIMIT ? OFFSET ?", query)
	require.Equal(t, []interface{}{int64(1), uint(5), uint(0)}, args)
}

func TestFinalize_NoLimit(t *testing.T) {
	query, args := Finalize(DialectPostgres, "SELECT id FROM users WHERE (id=?)", []interface{}{int64(3)})
	require.Equal(t, "SELECT id FROM users WHERE (id=$1)", query)
	require.Len(t, args, 1)
}

func TestIsConflict(t *testing.T) {
	require.True(t, IsConflict(&pq.Error{Code: "23505"}))
	require.True(t, IsConflict(fmt.Errorf("insert user: %w", &pq.Error{Code: "23505"})))
	require.False(t, IsConflict(&pq.Error{Code: "23503"}))
	require.False(t, IsConflict(errors.New("boom")))
	require.False(t, IsConflict(nil))
}

func TestEscapeLike(t *testing.T) {
	require.Equal(t, `100\%`, EscapeLike("100%"))
	require.Equal(t, `a\_b`, EscapeLike("a_b"))
	require.Equal(t, `c:\\tmp`, EscapeLike(`c:\tmp`))
	require.Equal(t, "plain", EscapeLike("plain"))
}
