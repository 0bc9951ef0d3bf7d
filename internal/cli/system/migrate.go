package system

import (
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/mwhitaker/caretrack/internal/cli"
	"github.com/mwhitaker/caretrack/internal/migration"
	"github.com/mwhitaker/caretrack/internal/storage/postgres"
	"github.com/mwhitaker/caretrack/internal/storage/sqlite"
	"github.com/mwhitaker/caretrack/migrations"
)

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	// Init opens the database without the schema-version gate that Load
	// applies, then brings the schema up to date.
	if err := ctx.Store.Init(); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	defer ctx.Store.Close()

	db, migrationFS, err := migrationTarget(ctx)
	if err != nil {
		return err
	}

	version, err := migration.NewRunner(db, migrationFS).CurrentVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	fmt.Printf("Database schema is at version %d.\n", version)

	return nil
}

// migrationTarget resolves the database handle and the driver-specific
// migration directory for the active storage provider.
func migrationTarget(ctx *cli.Context) (*sql.DB, fs.FS, error) {
	switch store := ctx.Store.(type) {
	case *sqlite.Store:
		db := store.GetDB()
		if db == nil {
			return nil, nil, fmt.Errorf("database connection is nil")
		}
		subFS, err := fs.Sub(migrations.FS, "sqlite")
		if err != nil {
			return nil, nil, fmt.Errorf("failed to access sqlite migrations: %w", err)
		}
		return db, subFS, nil
	case *postgres.Store:
		db := store.GetDB()
		if db == nil {
			return nil, nil, fmt.Errorf("database connection is nil")
		}
		subFS, err := fs.Sub(migrations.FS, "postgres")
		if err != nil {
			return nil, nil, fmt.Errorf("failed to access postgres migrations: %w", err)
		}
		return db, subFS, nil
	default:
		return nil, nil, fmt.Errorf("migrate command requires SQLite or PostgreSQL storage")
	}
}
