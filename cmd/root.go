package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/juststeveking/lookout/internal/config"
	"github.com/juststeveking/lookout/internal/logging"
	"github.com/spf13/cobra"
)

var (
	configFlag  string
	secretsFlag string
	logLevel    string
)

var rootCmd = &cobra.Command{
	Use:   "lookout",
	Short: "Scheduled uptime checks with chat and status page notifications",
	Long: `Lookout probes your HTTP endpoints on a schedule, remembers what it saw,
and tells people about it. Downtime is posted to a Telegram chat and mirrored
to your Statuspage components and incidents.

Every "lookout run" is one stateless activation. Schedule it with cron,
a systemd timer, or "lookout watch" while developing.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.SetConfigPath(configFlag)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "config file (default ~/.config/lookout/config.yml)")
	rootCmd.PersistentFlags().StringVar(&secretsFlag, "secrets", "", "dotenv secrets file (default secrets.env next to the config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")
}

// loadConfig reads the config file and points the user at init when it is missing
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load config: %w (run 'lookout init' to create one)", err)
		}
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// loadRuntime loads the config, the secrets and the logger one activation needs
func loadRuntime() (*config.Config, *config.Env, *slog.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	logger, err := logging.New(cfg.Logging, os.Stderr)
	if err != nil {
		return nil, nil, nil, err
	}

	path := secretsFlag
	if path == "" {
		if path, err = config.GetSecretsPath(); err != nil {
			return nil, nil, nil, err
		}
	}
	env, err := config.LoadEnv(path)
	if err != nil {
		return nil, nil, nil, err
	}

	return cfg, env, logger, nil
}

// requirePersistentStore rejects stores that start empty in every process.
// Alert de-duplication and recovery replies depend on state from the last run.
func requirePersistentStore(store config.StoreConfig) error {
	if !store.Persistent() {
		return fmt.Errorf("store driver %q does not keep state between runs; use bolt, redis or postgres (or --dry-run)", store.Driver)
	}
	return nil
}
