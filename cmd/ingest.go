package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/voxpersona/voxpersona/internal/app"
	"github.com/voxpersona/voxpersona/internal/config"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Rebuild the knowledge base from the knowledge directory",
	Long: `Rebuild the knowledge base from the knowledge directory.

Existing file-sourced documents are removed, then every Markdown and text
file under the knowledge directory is split into chunks, embedded, and
stored. Seeded documents are left untouched.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runIngest(cmd.Context(), cmd)
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(ctx context.Context, cmd *cobra.Command) error {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			logger.Warn("shutdown error", "error", closeErr)
		}
	}()

	count, err := a.Indexer.Reindex(ctx)
	if err != nil {
		return fmt.Errorf("rebuilding knowledge base: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Ingested %d document chunks from %s\n", count, cfg.KnowledgeDir)
	return nil
}
