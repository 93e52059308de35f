package cmd

import (
	"fmt"
	"os"

	"github.com/juststeveking/lookout/internal/config"
	"github.com/spf13/cobra"
)

var (
	overwriteConfig bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config file",
	Long: `Write a commented starter config to ~/.config/lookout/config.yml, or to
the path given with --config. State is kept in lookout.db in the same
directory unless you point the store at Redis or Postgres.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.InitConfig(overwriteConfig); err != nil {
			return err
		}

		configPath, _ := config.GetConfigPath()
		storePath, _ := config.GetStorePath()
		secretsPath, _ := config.GetSecretsPath()

		fmt.Println(titleStyle.Render("Lookout is ready"))
		fmt.Printf("  config   %s\n", configPath)
		fmt.Printf("  state    %s\n", storePath)

		if _, err := os.Stat(secretsPath); err == nil {
			fmt.Printf("  secrets  %s\n", secretsPath)
		} else {
			fmt.Printf("  secrets  %s\n", metadataStyle.Render(secretsPath+" (not created yet)"))
		}

		fmt.Println("\nAdd checks with 'lookout check:add -i', then try them without alerting anyone:")
		fmt.Println("  lookout run --dry-run")

		return nil
	},
}

func init() {
	initCmd.Flags().BoolVarP(&overwriteConfig, "force", "f", false, "replace an existing config file")
	rootCmd.AddCommand(initCmd)
}
