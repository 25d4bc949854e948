// Package main is the entry point for the finboard CLI.
//
// Finboard can be run either as a library (SDK) or as a standalone binary
// with YAML configuration. This CLI provides the standalone binary approach.
//
// Usage:
//
//	finboard serve -c config.yaml    # Start the dashboard
//	finboard validate -c config.yaml # Validate configuration
//	finboard fetch --url URL         # One-shot fetch for debugging
//	finboard version                 # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version information - set by GoReleaser at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
// It just displays help - actual functionality is in subcommands.
var rootCmd = &cobra.Command{
	Use:   "finboard",
	Short: "A lightweight finance dashboard",
	Long: `Finboard is a lightweight, real-time finance dashboard.

It polls JSON market data endpoints at configurable intervals, extracts
values via key paths, and displays them in a web UI with Server-Sent
Events for live updates.

Quick start:
  1. Create a config file (finboard.yaml)
  2. Run: finboard serve -c finboard.yaml
  3. Open http://localhost:8080 in your browser

Example config:
  port: 8080
  refresh_interval: 30s
  widgets:
    - name: AAPL
      url: https://www.alphavantage.co/query?function=GLOBAL_QUOTE&symbol=AAPL&apikey=${AV_API_KEY}
      path: "Global Quote.05. price"
      error_check: alphavantage`,
	// No Run/RunE means this just shows help when called without subcommands
}

// Execute runs the root command.
// This is the main entry point called from main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this finboard binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("finboard %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	// Environment overrides: FINBOARD_CONFIG, FINBOARD_PORT, FINBOARD_LOG_LEVEL
	viper.SetEnvPrefix("finboard")
	viper.AutomaticEnv()

	// Register subcommands with root
	rootCmd.AddCommand(versionCmd)
}
