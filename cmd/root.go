// Package cmd implements the voxpersona command line interface.
package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/voxpersona/voxpersona/internal/log"
)

var rootCmd = &cobra.Command{
	Use:   "voxpersona",
	Short: "Conversational portfolio assistant with speech synthesis",
	Long: `voxpersona answers visitor questions in the persona's own voice.

It retrieves relevant passages from an indexed knowledge base, generates a
first-person answer, and synthesizes matching speech audio with lip-sync
alignment timing. Run "voxpersona serve" to start the HTTP API or
"voxpersona ingest" to rebuild the knowledge base.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called from main.
func Execute() error {
	return rootCmd.Execute()
}

// newLogger builds the process logger. Level comes from the DEBUG environment
// variable; output goes to stderr so stdout stays clean for command output.
func newLogger() log.Logger {
	cfg := log.Config{Level: slog.LevelInfo}
	if os.Getenv("DEBUG") != "" {
		cfg.Level = slog.LevelDebug
	}
	logger := log.New(cfg)
	slog.SetDefault(logger)
	return logger
}
