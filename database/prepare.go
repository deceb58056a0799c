package database

import (
	"context"
	"fmt"

	"github.com/kbukum/insane/logger"
)

// TruncateFunc empties the application's tables.
type TruncateFunc func(ctx context.Context, db *DB) error

// Prepare brings the schema into the state the configuration asks for:
// dangerously_recreate resets the schema and stops there, otherwise
// auto_migrate applies pending migrations and dangerously_truncate empties
// the tables afterwards. A nil migrator skips the migration steps.
func Prepare(ctx context.Context, db *DB, cfg Config, migrator *Migrator, truncate TruncateFunc, log *logger.Logger) error {
	if log == nil {
		log = logger.WithComponent("database")
	}

	if cfg.DangerouslyRecreate {
		if migrator == nil {
			return fmt.Errorf("dangerously_recreate requires migrations")
		}
		log.Warn("recreating schema")
		return migrator.Reset(ctx)
	}

	if cfg.AutoMigrate && migrator != nil {
		log.Info("auto migrating")
		if err := migrator.Up(ctx); err != nil {
			return err
		}
	}

	if cfg.DangerouslyTruncate && truncate != nil {
		log.Warn("truncating tables")
		if err := truncate(ctx, db); err != nil {
			return fmt.Errorf("truncate: %w", err)
		}
	}
	return nil
}
