// Package migrations embeds the SQL migration files so they can be used
// by the goose programmatic API in tests, the CLI and server bootstrap.
// Each supported SQL dialect has its own directory.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

// FS holds all *.sql migration files embedded at compile time.
//
//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS

// ForDialect returns the migration directory for a goose dialect.
func ForDialect(dialect goose.Dialect) (fs.FS, error) {
	var dir string
	switch dialect {
	case goose.DialectPostgres:
		dir = "postgres"
	case goose.DialectSQLite3:
		dir = "sqlite"
	default:
		return nil, fmt.Errorf("migrations: unsupported dialect %q", dialect)
	}
	return fs.Sub(FS, dir)
}

// NewProvider builds a goose provider over the embedded migrations for dialect.
func NewProvider(dialect goose.Dialect, db *sql.DB) (*goose.Provider, error) {
	fsys, err := ForDialect(dialect)
	if err != nil {
		return nil, err
	}
	return goose.NewProvider(dialect, db, fsys)
}

// Up applies every pending migration and returns how many were applied.
func Up(ctx context.Context, dialect goose.Dialect, db *sql.DB) (int, error) {
	provider, err := NewProvider(dialect, db)
	if err != nil {
		return 0, fmt.Errorf("migrations.Up: create provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("migrations.Up: %w", err)
	}
	return len(results), nil
}
