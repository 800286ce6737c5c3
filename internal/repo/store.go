package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/pressly/goose/v3"

	"github.com/pkordes/dayplanner/migrations"
)

// Store drivers accepted by Open.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverFile     = "file"
)

// Options selects and locates a storage backend.
type Options struct {
	Driver      string // postgres, sqlite or file
	DatabaseURL string // postgres
	SQLitePath  string // sqlite
	FileDir     string // file
}

// Store bundles one backend's repositories.
type Store struct {
	Driver  string
	Days    DayRepo
	Catalog Catalog

	close func()
}

// Close releases the backend's connections.
func (s Store) Close() {
	if s.close != nil {
		s.close()
	}
}

// Open connects to the backend named by opts.Driver and verifies it is
// reachable. A SQLite database is migrated on open; Postgres migrations are
// applied by the operator CLI.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case DriverPostgres:
		pool, err := pgxpool.New(ctx, opts.DatabaseURL)
		if err != nil {
			return Store{}, fmt.Errorf("repo.Open: create pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return Store{}, fmt.Errorf("repo.Open: ping: %w", err)
		}
		return Store{
			Driver:  DriverPostgres,
			Days:    NewDayRepo(pool),
			Catalog: NewCatalog(pool),
			close:   pool.Close,
		}, nil

	case DriverSQLite:
		db, err := OpenSQLite(opts.SQLitePath)
		if err != nil {
			return Store{}, err
		}
		if _, err := migrations.Up(ctx, goose.DialectSQLite3, db); err != nil {
			db.Close()
			return Store{}, fmt.Errorf("repo.Open: %w", err)
		}
		return Store{
			Driver:  DriverSQLite,
			Days:    NewSQLiteDayRepo(db),
			Catalog: NewSQLiteCatalog(db),
			close:   func() { db.Close() },
		}, nil

	case DriverFile:
		fs := NewFileStore(opts.FileDir)
		return Store{Driver: DriverFile, Days: fs, Catalog: fs}, nil
	}
	return Store{}, fmt.Errorf("repo.Open: unknown driver %q", opts.Driver)
}

// Migrate applies the embedded migrations of a SQL backend and returns how
// many were applied. The file backend has no schema and applies none.
func Migrate(ctx context.Context, opts Options) (int, error) {
	switch opts.Driver {
	case DriverPostgres:
		db, err := sql.Open("pgx", opts.DatabaseURL)
		if err != nil {
			return 0, fmt.Errorf("repo.Migrate: open: %w", err)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return 0, fmt.Errorf("repo.Migrate: ping: %w", err)
		}
		return migrations.Up(ctx, goose.DialectPostgres, db)

	case DriverSQLite:
		db, err := OpenSQLite(opts.SQLitePath)
		if err != nil {
			return 0, err
		}
		defer db.Close()
		return migrations.Up(ctx, goose.DialectSQLite3, db)

	case DriverFile:
		return 0, nil
	}
	return 0, fmt.Errorf("repo.Migrate: unknown driver %q", opts.Driver)
}
