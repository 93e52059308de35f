package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/juststeveking/lookout/internal/kv"
	"github.com/juststeveking/lookout/internal/notify"
	"github.com/juststeveking/lookout/internal/state"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the last persisted results",
	Long: `Display the snapshot written by the most recent run, when it was taken,
and which checks the notification channels currently consider down.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, logger, err := loadRuntime()
		if err != nil {
			return err
		}

		if err := requirePersistentStore(cfg.Store); err != nil {
			return err
		}

		ctx := context.Background()
		store, err := kv.Open(ctx, cfg.Store, logger)
		if err != nil {
			return err
		}
		defer store.Close()

		snapshot, checkedAt, err := state.New(store).Load(ctx)
		if err != nil {
			return err
		}

		if checkedAt.IsZero() {
			fmt.Println("No runs recorded yet.")
			fmt.Println("\nRun the checks with:")
			fmt.Println("  lookout run")
			return nil
		}

		fmt.Printf("%s %s\n", titleStyle.Render("Lookout"), summary(snapshot))
		fmt.Println(metadataStyle.Render(fmt.Sprintf("Last checked %s (%s)",
			humanize.Time(checkedAt), checkedAt.Local().Format("2006-01-02 15:04:05"))))
		fmt.Println()

		renderSnapshot(os.Stdout, snapshot)

		failed, err := notify.NewStateStore(store, logger).LastFailedChecks(ctx)
		if err != nil {
			return err
		}
		if len(failed) > 0 {
			fmt.Printf("\nNotified as down: %s\n", strings.Join(failed, ", "))
		}
		if cfg.StatuspageURL != "" {
			fmt.Printf("\nStatus page: %s\n", cfg.StatuspageURL)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
