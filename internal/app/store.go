package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/guttosm/sectorpulse/config"
	"github.com/guttosm/sectorpulse/internal/storage"
)

// migrator is an indirection for unit testing; defaults to storage.Migrate.
var migrator = storage.Migrate

// OpenSnapshotStore connects to PostgreSQL and applies pending schema
// migrations. The caller owns the returned handle.
func OpenSnapshotStore(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	db, err := postgresOpener(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}
	if err := migrator(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate snapshot schema: %w", err)
	}
	return db, nil
}
