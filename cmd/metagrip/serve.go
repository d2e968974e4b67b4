package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"metagrip/internal/devserver"
	"metagrip/internal/logging"
)

var (
	serveAddr       string
	serveDB         string
	serveSeed       string
	serveStartDelay time.Duration
)

// serveCmd runs the development backend
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a local development backend",
	Long: `Serves the metadata search, program lifecycle, preferences and adapter
endpoints from a SQLite store seeded with sample entities.

Example:
  metagrip serve --addr :11015 --db ./dev.db --seed fixtures.yaml`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:11015", "listen address")
	serveCmd.Flags().StringVar(&serveDB, "db", ":memory:", "SQLite database path")
	serveCmd.Flags().StringVar(&serveSeed, "seed", "", "YAML seed file (default is the built-in fixture)")
	serveCmd.Flags().DurationVar(&serveStartDelay, "start-delay", 2*time.Second, "time programs spend STARTING")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger, err := logging.New(logging.Options{File: "-", Verbose: verbose})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	store, err := devserver.Open(serveDB, devserver.WithStartDelay(serveStartDelay))
	if err != nil {
		return err
	}
	defer store.Close()

	empty, err := store.Empty(ctx)
	if err != nil {
		return err
	}
	if empty {
		seed, err := devserver.LoadSeedFile(serveSeed)
		if err != nil {
			return err
		}
		if err := store.Import(ctx, seed); err != nil {
			return fmt.Errorf("failed to import seed: %w", err)
		}
	} else {
		logger.Info("database already populated, skipping seed", zap.String("db", serveDB))
	}

	srv := devserver.NewServer(store, logger)
	return srv.Run(ctx, serveAddr, func(addr net.Addr) {
		logger.Info("devserver listening", zap.String("addr", addr.String()), zap.String("db", serveDB))
		fmt.Fprintf(cmd.OutOrStdout(), "metagrip devserver listening on http://%s\n", addr)
	})
}
