package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taskorchestrator/engine/internal/db"
)

var repairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Audit schema_history checksums against the migrations built into this binary",
	Long: `repair never rewrites or re-executes anything; it reports any migration
whose recorded checksum no longer matches the SQL compiled into this binary,
which usually means the binary and the database it's pointed at came from
different versions of the engine.`,
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

		mismatches, err := db.Repair(cmd.Context(), database)
		if err != nil {
			return fmt.Errorf("repair: %w", err)
		}

		if len(mismatches) == 0 {
			Success("schema_history matches the compiled-in migrations")
			return nil
		}
		for _, m := range mismatches {
			Error(fmt.Sprintf("migration %d (%s): recorded checksum %s != current %s", m.Version, m.Name, m.RecordedChecksum, m.CurrentChecksum))
		}
		return fmt.Errorf("%d checksum mismatch(es) found", len(mismatches))
	},
}

func init() {
	RootCmd.AddCommand(repairCmd)
}
