package dbutil

import (
	"errors"
	"regexp"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

var limitRegex = regexp.MustCompile(`(?i)LIMIT\s+\?\s*,\s*\?`)

// Finalize turns gendry output into SQL the given dialect accepts:
// "LIMIT ?,?" becomes "LIMIT ? OFFSET ?" and placeholders are rebound.
func Finalize(dialect, query string, args []interface{}) (string, []interface{}) {
	loc := limitRegex.FindStringIndex(query)
	if loc != nil {
		prefix := query[:loc[0]]
		qCount := strings.Count(prefix, "?")
		if qCount+1 < len(args) {
			args[qCount], args[qCount+1] = args[qCount+1], args[qCount]
			query = limitRegex.ReplaceAllString(query, "LIMIT ? OFFSET ?")
		}
	}
	return sqlx.Rebind(BindType(dialect), query), args
}

// DialectOf maps the registered driver name of db to a dialect.
func DialectOf(db *sqlx.DB) string {
	if db.DriverName() == "postgres" {
		return DialectPostgres
	}
	return DialectSQLite
}

func BindType(dialect string) int {
	if dialect == DialectPostgres {
		return sqlx.DOLLAR
	}
	return sqlx.QUESTION
}

func IsConflict(err error) bool {
	var pgErr *pq.Error
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var sqlErr *sqlite.Error
	if errors.As(err, &sqlErr) {
		return sqlErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE || sqlErr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}

// EscapeLike escapes LIKE metacharacters with a backslash; pair it with ESCAPE '\'.
func EscapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}
