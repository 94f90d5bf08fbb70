package db

import (
	"context"
	"database/sql"
)

// DBTX is what the kv store needs from a connection: single-row reads and
// statements. Both the pool and an open transaction satisfy it, so a store
// built on a tx writes inside it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)
