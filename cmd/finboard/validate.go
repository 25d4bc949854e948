package main

import (
	"fmt"

	"github.com/finboard/finboard/config"
	"github.com/spf13/cobra"
)

// validateCmd validates a config file without starting the server.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a finboard configuration file without starting the server.

This command parses the YAML, expands environment variables, and validates
all fields. It's useful for CI/CD pipelines or pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  finboard validate -c config.yaml
  finboard validate --config /etc/finboard/config.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Count total widgets (direct + from grids)
	directWidgets := len(cfg.Widgets)
	gridWidgets := 0
	for _, g := range cfg.Grids {
		// Calculate cartesian product size
		size := 1
		for _, vals := range g.Dimensions {
			size *= len(vals)
		}
		gridWidgets += size
	}

	fmt.Printf("Config is valid!\n")
	fmt.Printf("  Port:             %d\n", cfg.Port)
	fmt.Printf("  Refresh interval: %s\n", cfg.RefreshInterval.Duration())
	fmt.Printf("  Widgets:          %d direct + %d from grids = %d total\n",
		directWidgets, gridWidgets, directWidgets+gridWidgets)

	return nil
}
