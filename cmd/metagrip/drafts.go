package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"metagrip/internal/logging"
	"metagrip/internal/ui"
	"metagrip/internal/ui/services/drafts"
)

// draftsCmd prints the ETL listing
var draftsCmd = &cobra.Command{
	Use:   "drafts",
	Short: "List ETL applications and drafts",
	Long: `Lists the published ETL batch applications of the namespace followed by
the drafts stored in the user preferences.`,
	RunE: runDrafts,
}

func runDrafts(cmd *cobra.Command, args []string) error {
	_, cfg := loadConfig(nil)

	logger, err := logging.New(logging.Options{File: "-", Level: "warn", Verbose: verbose})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	c, err := newClient(cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	apps, err := drafts.NewService(c, logger).Load(ctx, cfg.Server.Namespace)
	if err != nil {
		logger.Error("failed to load drafts", zap.Error(err))
		return fmt.Errorf("failed to load ETL applications: %w", err)
	}
	if len(apps) == 0 {
		fmt.Fprintln(os.Stderr, "No ETL applications or drafts.")
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), ui.RenderETLTable(apps))
	return nil
}
