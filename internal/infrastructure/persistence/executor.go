package persistence

import (
	"context"
	"database/sql"
)

// Executor is satisfied by *sql.DB and *sql.Tx
type Executor interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}
