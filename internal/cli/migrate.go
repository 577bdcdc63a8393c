package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taskorchestrator/engine/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply any pending schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := LoadConfig()
		if err != nil {
			return err
		}

		database, err := db.InitDatabase(cmd.Context(), cfg.Database)
		if err != nil {
			return fmt.Errorf("connect: %w", err)
		}
		defer database.Close()

		applied, err := db.Migrate(cmd.Context(), database)
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}

		if len(applied) == 0 {
			Info("schema already up to date")
			return nil
		}
		for _, version := range applied {
			Success(fmt.Sprintf("applied migration %d", version))
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(migrateCmd)
}
