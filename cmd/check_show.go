package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var checkShowCmd = &cobra.Command{
	Use:   "check:show <name>",
	Short: "Show details of a specific check",
	Long: `Display detailed configuration for a specific check.
Secret references are shown as written, never expanded.

Example:
  lookout check:show api-prod`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		found, err := cfg.FindCheck(args[0])
		if err != nil {
			return err
		}

		// Display check details
		fmt.Printf("Check: %s\n", found.Name)
		fmt.Println("─────────────────────────────────────")
		fmt.Printf("Target:           %s\n", found.Target)

		if found.ProbeTarget != "" {
			fmt.Printf("Probe Target:     %s\n", found.ProbeTarget)
		}

		if found.Method != "" {
			fmt.Printf("Method:           %s\n", found.Method)
		}

		if len(found.ExpectedCodes) > 0 {
			fmt.Printf("Expected Codes:   %s\n", formatCodes(found.ExpectedCodes))
		}

		if found.Timeout != "" {
			fmt.Printf("Timeout:          %s\n", found.Timeout)
		}

		fmt.Printf("Retries:          %d\n", found.RetryCount)

		if found.Auth != nil && found.Auth.Type != "" {
			fmt.Printf("Auth:             %s\n", found.Auth.Type)
		}

		if len(found.Headers) > 0 {
			fmt.Println("\nHeaders:")
			keys := make([]string, 0, len(found.Headers))
			for key := range found.Headers {
				keys = append(keys, key)
			}
			sort.Strings(keys)
			for _, key := range keys {
				fmt.Printf("  %s: %s\n", key, found.Headers[key])
			}
		}

		if found.Body != "" {
			fmt.Printf("\nBody:\n  %s\n", found.Body)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkShowCmd)
}
