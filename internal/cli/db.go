package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/taskorchestrator/engine/internal/config"
	"github.com/taskorchestrator/engine/internal/db"
	"github.com/taskorchestrator/engine/internal/repository"
)

// LoadConfig discovers the project root and loads its workflow
// configuration, resolving a relative database.dsn against that root so a
// relative sqlite path in config.yaml always means "relative to the project
// root" regardless of the caller's working directory.
func LoadConfig() (*config.Config, string, error) {
	root, err := FindProjectRoot()
	if err != nil {
		return nil, "", err
	}

	cfg, err := config.Load(root)
	if err != nil {
		return nil, "", fmt.Errorf("load config: %w", err)
	}

	if cfg.Database.Driver != "turso" && cfg.Database.DSN != "" && !filepath.IsAbs(cfg.Database.DSN) {
		cfg.Database.DSN = filepath.Join(root, cfg.Database.DSN)
	}

	return cfg, root, nil
}

// initDatabase loads configuration, connects to the database and brings it
// up to the latest schema version, wrapping the connection in a
// repository.DB.
func initDatabase(ctx context.Context) (*repository.DB, error) {
	cfg, _, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	database, err := db.InitDB(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	return repository.NewDB(database), nil
}
