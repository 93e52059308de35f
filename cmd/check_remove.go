package cmd

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/juststeveking/lookout/internal/config"
	"github.com/spf13/cobra"
)

var (
	removeWithoutPrompt bool
)

var checkRemoveCmd = &cobra.Command{
	Use:     "check:remove <name>",
	Aliases: []string{"check:rm"},
	Short:   "Stop monitoring a check",
	Long: `Delete a check from the config file. State already stored for it is left
alone; the next run simply stops reporting it.

Example:
  lookout check:remove api-prod
  lookout check:rm web --yes`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		check, err := cfg.FindCheck(args[0])
		if err != nil {
			return err
		}
		name, target := check.Name, check.Target

		if !removeWithoutPrompt {
			confirmed := false
			prompt := huh.NewConfirm().
				Title(fmt.Sprintf("Stop monitoring %s?", name)).
				Description(target).
				Affirmative("Remove").
				Negative("Keep").
				Value(&confirmed)
			if err := prompt.Run(); err != nil {
				return err
			}
			if !confirmed {
				fmt.Printf("Kept '%s'.\n", name)
				return nil
			}
		}

		if err := cfg.RemoveCheck(name); err != nil {
			return err
		}
		if err := config.SaveConfig(cfg); err != nil {
			return err
		}

		fmt.Printf("✓ '%s' removed, %d check(s) left\n", name, len(cfg.Checks))
		return nil
	},
}

func init() {
	checkRemoveCmd.Flags().BoolVarP(&removeWithoutPrompt, "yes", "y", false, "remove without asking")
	rootCmd.AddCommand(checkRemoveCmd)
}
