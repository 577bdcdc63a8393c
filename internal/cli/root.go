package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config holds the global CLI configuration, populated from persistent
// flags before any subcommand runs.
type Config struct {
	NoColor bool
	Verbose bool
}

// GlobalConfig is the shared configuration instance.
var GlobalConfig = &Config{}

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:   "taskorchestrator",
	Short: "Task Orchestrator - workflow engine for AI-driven development",
	Long: `Task Orchestrator tracks projects, features and tasks through a
configurable status workflow and exposes it to AI agents over a line-
delimited JSON protocol on stdin/stdout.

It provides a SQLite- or Turso-backed database for tracking project state,
with commands for running the agent-facing server and managing the schema.`,
	Version: "dev", // set by SetVersion() from build-time injection
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if GlobalConfig.NoColor {
			pterm.DisableColor()
		}
		if GlobalConfig.Verbose {
			pterm.EnableDebugMessages()
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return CloseDB()
	},
}

// SetVersion sets the version string from build-time injection.
func SetVersion(version string) {
	RootCmd.Version = version
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	RootCmd.PersistentFlags().BoolVar(&GlobalConfig.NoColor, "no-color", false, "Disable colored output")
	RootCmd.PersistentFlags().BoolVarP(&GlobalConfig.Verbose, "verbose", "v", false, "Enable verbose/debug output")

	if err := viper.BindPFlag("no-color", RootCmd.PersistentFlags().Lookup("no-color")); err != nil {
		panic(err)
	}
	if err := viper.BindPFlag("verbose", RootCmd.PersistentFlags().Lookup("verbose")); err != nil {
		panic(err)
	}
}

// FindProjectRoot walks up the directory tree from the current working
// directory looking for markers, in order:
//  1. .taskorchestrator/ (primary marker - config and default DB location)
//  2. .git/ (fallback for projects not yet initialized)
//
// Returns the current working directory if no marker is found, so the
// engine still runs (against embedded config defaults) outside any
// recognized project.
func FindProjectRoot() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}

	dir := wd
	for {
		if info, err := os.Stat(filepath.Join(dir, ".taskorchestrator")); err == nil && info.IsDir() {
			return dir, nil
		}
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return wd, nil
		}
		dir = parent
	}
}

// Success prints a success message.
func Success(message string) {
	if !GlobalConfig.NoColor {
		pterm.Success.Println(message)
	} else {
		fmt.Println("done:", message)
	}
}

// Error prints an error message.
func Error(message string) {
	if !GlobalConfig.NoColor {
		pterm.Error.Println(message)
	} else {
		fmt.Fprintln(os.Stderr, "error:", message)
	}
}

// Info prints an informational message.
func Info(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	if !GlobalConfig.NoColor {
		pterm.Info.Println(message)
	} else {
		fmt.Println(message)
	}
}
