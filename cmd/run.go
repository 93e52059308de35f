package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/juststeveking/lookout/internal/kv"
	"github.com/juststeveking/lookout/internal/worker"
	"github.com/spf13/cobra"
)

var (
	runDryRun bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run every check once and notify",
	Long: `Probe every configured check, persist the snapshot and notify the
enabled channels. Exits non-zero only when the store cannot be read or written;
a down check is a successful run.

Examples:
  lookout run
  lookout run --dry-run`,
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

		var store kv.Store
		if runDryRun {
			store = kv.NewMemory()
		} else {
			if err := requirePersistentStore(cfg.Store); err != nil {
				return err
			}
			store, err = kv.Open(ctx, cfg.Store, logger)
			if err != nil {
				return err
			}
		}
		defer store.Close()

		w, err := worker.New(cfg, env, store, logger, worker.Options{DryRun: runDryRun})
		if err != nil {
			return err
		}
		defer w.Close()

		snapshot, err := w.Activate(ctx)
		if err != nil {
			return err
		}

		if runDryRun {
			fmt.Printf("%s %s\n\n", titleStyle.Render("Dry run"), summary(snapshot))
			renderSnapshot(os.Stdout, snapshot)
		}

		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "use an in-memory store, skip notifications and print the results")
	rootCmd.AddCommand(runCmd)
}
