package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"metagrip/internal/client"
	"metagrip/internal/config"
	"metagrip/internal/eventbus"
	"metagrip/internal/logging"
	"metagrip/internal/ui"
)

var (
	// Global flags
	configPath string
	serverURL  string
	namespace  string
	verbose    bool

	// browse flags
	location string
)

// rootCmd browses the metadata catalog when run without a subcommand
var rootCmd = &cobra.Command{
	Use:   "metagrip",
	Short: "metagrip - terminal console for data platform metadata",
	Long: `metagrip browses the applications, artifacts, datasets, programs and
streams of a data platform namespace, starts and stops programs, and lists
ETL applications and drafts.

Run without arguments to open the browser. Use "metagrip serve" to run a
local development backend.`,
	SilenceUsage: true,
	RunE:         runBrowse,
}

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Open the entity browser",
	Long: `Opens the entity browser. The location is a query string such as
"?q=purch&filter=dataset&page=2"; when omitted the last location is restored.`,
	RunE: runBrowse,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/metagrip/config.toml)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "platform base URL (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&namespace, "namespace", "n", "", "namespace (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	for _, c := range []*cobra.Command{rootCmd, browseCmd} {
		c.Flags().StringVarP(&location, "location", "l", "", "initial location query string")
	}

	rootCmd.AddCommand(browseCmd, serveCmd, draftsCmd, fieldsCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies flag overrides. A broken
// file is logged to stderr and defaults are used.
func loadConfig(bus eventbus.EventBus) (config.ConfigService, *config.Config) {
	svc := config.NewConfigServiceWithBus(configPath, bus)
	cfg, err := svc.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		cfg = config.DefaultConfig()
	}
	if serverURL != "" {
		cfg.Server.BaseURL = serverURL
	}
	if namespace != "" {
		cfg.Server.Namespace = namespace
	}
	return svc, cfg
}

func newClient(cfg *config.Config, logger *zap.Logger) (*client.Client, error) {
	return client.New(cfg.Server.BaseURL,
		client.WithTimeout(cfg.Server.Timeout),
		client.WithLogger(logger))
}

func runBrowse(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	configSvc, cfg := loadConfig(nil)

	logger, err := logging.New(logging.Options{
		File:    cfg.Logging.File,
		Level:   cfg.Logging.Level,
		Verbose: verbose,
	})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	bus := eventbus.New(logger)
	defer bus.Close()

	c, err := newClient(cfg, logger)
	if err != nil {
		return err
	}

	start := location
	if start == "" && cfg.UISettings.RestoreLocation {
		start = cfg.LastLocation
	}

	model := ui.NewModel(ui.Options{
		Config:   cfg,
		API:      c,
		Bus:      bus,
		Logger:   logger,
		Location: start,
	})
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	model.SetProgram(p)

	// Forward the events the UI reacts to
	for _, t := range []eventbus.EventType{eventbus.EventError, eventbus.EventConfigSaved} {
		unsubscribe := bus.Subscribe(t, func(e eventbus.DomainEvent) {
			p.Send(ui.EventMsg{Event: e})
		})
		defer unsubscribe()
	}

	logger.Info("starting browser",
		zap.String("server", cfg.Server.BaseURL),
		zap.String("namespace", cfg.Server.Namespace),
		zap.String("location", start))

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("error running program: %w", err)
	}

	cfg.LastLocation = model.Location()
	if err := configSvc.Save(cfg); err != nil {
		logger.Warn("failed to save config", zap.Error(err))
	}
	return nil
}
