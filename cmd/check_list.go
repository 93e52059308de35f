package cmd

import (
	"fmt"

	"github.com/juststeveking/lookout/internal/config"
	"github.com/spf13/cobra"
)

var checkListCmd = &cobra.Command{
	Use:   "check:list",
	Short: "List all configured checks",
	Long:  `Display all checks currently configured in lookout.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if len(cfg.Checks) == 0 {
			fmt.Println("No checks configured yet.")
			fmt.Println("\nAdd a check with:")
			fmt.Println("  lookout check:add --name <name> --target <url>")
			return nil
		}

		fmt.Println(titleStyle.Render(fmt.Sprintf("Configured checks (%d):", len(cfg.Checks))))
		fmt.Println()

		for _, check := range cfg.Checks {
			fmt.Printf("  • %s\n", check.Name)
			fmt.Printf("    Target: %s\n", check.Target)

			if check.ProbeTarget != "" {
				fmt.Printf("    Probes: %s\n", check.ProbeTarget)
			}

			method := check.Method
			if method == "" {
				method = config.DefaultMethod
			}
			codes := formatCodes(check.ExpectedCodes)
			if codes == "" {
				codes = "200"
			}
			fmt.Println(metadataStyle.Render(fmt.Sprintf("    %s, expects %s, %d retries", method, codes, check.RetryCount)))

			fmt.Println()
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkListCmd)
}
