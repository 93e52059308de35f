package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/juststeveking/lookout/internal/kv"
	"github.com/juststeveking/lookout/internal/worker"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

var (
	watchSchedule string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run activations on a schedule",
	Long: `Keep running activations on a cron schedule until interrupted. Each tick
is a full "lookout run"; a tick that fires while the previous one is still
running is skipped.

Examples:
  lookout watch
  lookout watch --schedule "*/5 * * * *"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, env, logger, err := loadRuntime()
		if err != nil {
			return err
		}

		if len(cfg.Checks) == 0 {
			return fmt.Errorf("no checks configured (run 'lookout check:add' to add one)")
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		store, err := kv.Open(ctx, cfg.Store, logger)
		if err != nil {
			return err
		}
		defer store.Close()

		w, err := worker.New(cfg, env, store, logger, worker.Options{})
		if err != nil {
			return err
		}
		defer w.Close()

		cronLog := cronLogger{logger.With("component", "scheduler")}
		scheduler := cron.New(cron.WithLogger(cronLog), cron.WithChain(
			cron.Recover(cronLog),
			cron.SkipIfStillRunning(cronLog),
		))

		if _, err := scheduler.AddFunc(watchSchedule, func() {
			if _, err := w.Activate(ctx); err != nil {
				logger.Error("activation failed", "error", err)
			}
		}); err != nil {
			return fmt.Errorf("invalid schedule %q: %w", watchSchedule, err)
		}

		logger.Info("watching", "schedule", watchSchedule, "checks", len(cfg.Checks), "channels", w.Channels())
		scheduler.Start()

		<-ctx.Done()
		<-scheduler.Stop().Done()
		logger.Info("stopped")

		return nil
	},
}

func init() {
	watchCmd.Flags().StringVarP(&watchSchedule, "schedule", "s", "@every 1m", "cron expression or descriptor")
	rootCmd.AddCommand(watchCmd)
}

// cronLogger routes scheduler messages through slog
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
