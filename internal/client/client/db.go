package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/authkeeper/internal/client/migrations"
	"github.com/dmitrijs2005/authkeeper/internal/filex"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// StateFileName is the session database inside the state directory.
const StateFileName = "session.db"

// RunMigrations applies the embedded client schema. A provider is used so
// the goose package globals stay untouched.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	p, err := goose.NewProvider(goose.DialectSQLite3, db, migrations.Migrations)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	if _, err := p.Up(ctx); err != nil {
		return fmt.Errorf("migrate client state: %w", err)
	}
	return nil
}

// InitDatabase opens the SQLite database at dsn and migrates it.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// one connection keeps writes ordered and lets ":memory:" work
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// OpenState prepares stateDir and opens the session database inside it.
func OpenState(ctx context.Context, stateDir string) (*sql.DB, error) {
	dir, err := filex.EnsureStateDir(stateDir)
	if err != nil {
		return nil, err
	}
	return InitDatabase(ctx, filex.StateFile(dir, StateFileName))
}
