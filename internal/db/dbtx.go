package db

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
)

// DBTX is the common interface satisfied by both *sql.DB and *sql.Tx.
// Repository implementations depend on this interface instead of the
// concrete *sql.DB, enabling transactional composition.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
	_ DBTX = rebinder{}
)

// Bind adapts conn to the dialect. Repositories write queries with "?"
// placeholders; Postgres needs them numbered.
func Bind(dialect Dialect, conn DBTX) DBTX {
	if dialect != DialectPostgres {
		return conn
	}
	if _, ok := conn.(rebinder); ok {
		return conn
	}
	return rebinder{conn: conn}
}

type rebinder struct {
	conn DBTX
}

func (r rebinder) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return r.conn.ExecContext(ctx, Rebind(query), args...)
}

func (r rebinder) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return r.conn.QueryContext(ctx, Rebind(query), args...)
}

func (r rebinder) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return r.conn.QueryRowContext(ctx, Rebind(query), args...)
}

// Rebind rewrites "?" placeholders as $1, $2, ... Question marks inside
// single-quoted literals are left alone.
func Rebind(query string) string {
	if !strings.Contains(query, "?") {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for i := 0; i < len(query); i++ {
		ch := query[i]
		switch {
		case ch == '\'':
			inQuote = !inQuote
			b.WriteByte(ch)
		case ch == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}
