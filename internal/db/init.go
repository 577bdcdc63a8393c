package db

import (
	"context"
	"fmt"

	"github.com/taskorchestrator/engine/internal/config"
)

// InitDB connects to the configured database and brings it up to the
// latest schema version in one call. This is the entry point used by the
// serve and migrate commands.
func InitDB(ctx context.Context, cfg config.DatabaseConfig) (Database, error) {
	database, err := InitDatabase(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if _, err := Migrate(ctx, database); err != nil {
		database.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return database, nil
}
