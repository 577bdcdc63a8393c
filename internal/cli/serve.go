package cli

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/taskorchestrator/engine/internal/dispatch"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the stdio JSON-line tool server agents talk to",
	Long: `serve reads one JSON object per line from stdin, dispatches it to the
matching tool handler, and writes one JSON response per line to stdout. It
runs until stdin closes. SIGINT/SIGTERM cancel the context handed to the
tool handlers; they do not end the read loop, which stops only when stdin
closes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg, root, err := LoadConfig()
		if err != nil {
			return err
		}

		db, err := GetDB(ctx)
		if err != nil {
			return err
		}

		templatesDir := filepath.Join(root, ".taskorchestrator", "templates")
		d := dispatch.NewEngineDispatcher(cfg, db, templatesDir)
		srv := dispatch.NewServer(d, os.Stdin, os.Stdout)

		return srv.Run(ctx)
	},
}

func init() {
	RootCmd.AddCommand(serveCmd)
}
