// Package store loads project tables from SQL databases.
package store

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/quickmap/internal/table"
)

// Supported drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Source runs a query and returns its result set as a table.
type Source interface {
	Query(ctx context.Context, query string, args ...any) (*table.Table, error)
	Close() error
}

// Open connects to the database named by driver and dsn. poolCfg tunes the Postgres pool and
// may be nil; SQLite ignores it.
func Open(ctx context.Context, driver, dsn string, poolCfg *PoolConfig) (Source, error) {
	if dsn == "" {
		return nil, eris.New("store: database_url is empty")
	}
	switch strings.ToLower(driver) {
	case DriverPostgres, "postgresql", "pgx":
		return NewPostgres(ctx, dsn, poolCfg)
	case DriverSQLite, "sqlite3":
		return NewSQLite(dsn)
	default:
		return nil, eris.Errorf("store: unsupported driver %q", driver)
	}
}
