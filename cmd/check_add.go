package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/juststeveking/lookout/internal/config"
	"github.com/spf13/cobra"
)

var (
	checkName          string
	checkTarget        string
	checkProbeTarget   string
	checkMethod        string
	checkExpectedCodes []int
	checkTimeout       string
	checkRetryCount    int
	checkHeaders       map[string]string
	checkBody          string
	checkAuthType      string
	checkInteractive   bool
)

var checkAddCmd = &cobra.Command{
	Use:   "check:add",
	Short: "Add a new check",
	Long: `Add a new check to your lookout configuration.

Examples:
  lookout check:add --name api-prod --target https://api.example.com
  lookout check:add --name web --target https://example.com --probe-target https://example.com/health --retry-count 2
  lookout check:add --name admin --target https://admin.example.com --auth access
  lookout check:add -i`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if checkInteractive {
			if err := runCheckForm(); err != nil {
				return err
			}
		}

		// Validate required fields
		if checkName == "" {
			return fmt.Errorf("check name is required (--name)")
		}
		if checkTarget == "" {
			return fmt.Errorf("check target is required (--target)")
		}

		// Load existing config
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		check := config.CheckConfig{
			Name:          checkName,
			Target:        checkTarget,
			ProbeTarget:   checkProbeTarget,
			Method:        strings.ToUpper(checkMethod),
			ExpectedCodes: checkExpectedCodes,
			Timeout:       checkTimeout,
			RetryCount:    checkRetryCount,
			Headers:       checkHeaders,
			Body:          checkBody,
		}
		if checkAuthType != "" {
			check.Auth = &config.Auth{Type: checkAuthType}
		}

		if err := cfg.AddCheck(check); err != nil {
			return err
		}

		if err := config.SaveConfig(cfg); err != nil {
			return err
		}

		configPath, _ := config.GetConfigPath()
		fmt.Printf("✓ Added check '%s' to %s\n", checkName, configPath)
		if check.Auth != nil {
			fmt.Println("  Set the auth secrets in the config or secrets.env before the next run.")
		}

		return nil
	},
}

func init() {
	checkAddCmd.Flags().StringVarP(&checkName, "name", "n", "", "check name (required)")
	checkAddCmd.Flags().StringVarP(&checkTarget, "target", "t", "", "public URL of the service (required)")
	checkAddCmd.Flags().StringVar(&checkProbeTarget, "probe-target", "", "URL to probe instead of the target")
	checkAddCmd.Flags().StringVar(&checkMethod, "method", config.DefaultMethod, "HTTP method for the probe")
	checkAddCmd.Flags().IntSliceVar(&checkExpectedCodes, "expected-codes", nil, "HTTP status codes that count as up (default 200)")
	checkAddCmd.Flags().StringVar(&checkTimeout, "timeout", "", "per-attempt timeout, e.g. 5s (default "+config.DefaultTimeout+")")
	checkAddCmd.Flags().IntVar(&checkRetryCount, "retry-count", 0, "extra attempts after a failure")
	checkAddCmd.Flags().StringToStringVar(&checkHeaders, "headers", nil, "HTTP headers (key=value), ${NAME} expands secrets")
	checkAddCmd.Flags().StringVar(&checkBody, "body", "", "request body")
	checkAddCmd.Flags().StringVar(&checkAuthType, "auth", "", "auth type (bearer, basic, access)")
	checkAddCmd.Flags().BoolVarP(&checkInteractive, "interactive", "i", false, "fill in the check with a form")

	rootCmd.AddCommand(checkAddCmd)
}

// runCheckForm asks for the common fields, using any flags as defaults
func runCheckForm() error {
	if checkMethod == "" {
		checkMethod = config.DefaultMethod
	}
	codes := formatCodes(checkExpectedCodes)
	retries := strconv.Itoa(checkRetryCount)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&checkName).
				Validate(required("name")),
			huh.NewInput().
				Title("Target").
				Description("Public URL shown in notifications").
				Value(&checkTarget).
				Validate(required("target")),
			huh.NewInput().
				Title("Probe target").
				Description("Leave empty to probe the target").
				Value(&checkProbeTarget),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Method").
				Options(huh.NewOptions("GET", "HEAD", "POST", "PUT", "PATCH", "DELETE", "OPTIONS")...).
				Value(&checkMethod),
			huh.NewInput().
				Title("Expected status codes").
				Placeholder("200").
				Value(&codes).
				Validate(func(s string) error {
					_, err := parseCodes(s)
					return err
				}),
			huh.NewInput().
				Title("Timeout").
				Placeholder(config.DefaultTimeout).
				Value(&checkTimeout).
				Validate(func(s string) error {
					if s == "" {
						return nil
					}
					_, err := time.ParseDuration(s)
					return err
				}),
			huh.NewInput().
				Title("Retries").
				Value(&retries).
				Validate(func(s string) error {
					n, err := strconv.Atoi(s)
					if err != nil || n < 0 {
						return errors.New("must be a number of 0 or more")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Auth").
				Options(
					huh.NewOption("None", ""),
					huh.NewOption("Bearer token", "bearer"),
					huh.NewOption("Basic", "basic"),
					huh.NewOption("Access service token", "access"),
				).
				Value(&checkAuthType),
		),
	)

	if err := form.Run(); err != nil {
		return err
	}

	var err error
	if checkExpectedCodes, err = parseCodes(codes); err != nil {
		return err
	}
	checkRetryCount, _ = strconv.Atoi(retries)
	return nil
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

// parseCodes reads a comma separated list of HTTP status codes
func parseCodes(s string) ([]int, error) {
	var codes []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		code, err := strconv.Atoi(part)
		if err != nil || code < 100 || code > 599 {
			return nil, fmt.Errorf("invalid status code %q", part)
		}
		codes = append(codes, code)
	}
	return codes, nil
}

func formatCodes(codes []int) string {
	parts := make([]string, 0, len(codes))
	for _, code := range codes {
		parts = append(parts, strconv.Itoa(code))
	}
	return strings.Join(parts, ",")
}
