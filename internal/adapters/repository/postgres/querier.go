package postgres

import (
	"context"
	"database/sql"
)

// SQLQuerier is satisfied by both *sqlx.DB and *sqlx.Tx so repositories
// run the same way inside and outside a unit of work
type SQLQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}
