package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/finboard/finboard/internal/fetch"
	"github.com/finboard/finboard/keypath"
	"github.com/spf13/cobra"
)

// fetchCmd performs a single fetch and prints the resolved value.
// Useful for trying out key paths against a live endpoint before
// committing them to a config file.
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch a URL once and resolve a key path",
	Long: `Fetch a JSON endpoint once and print the value at the given key path.

This is a debugging aid for finding the right path expression for a widget.
Without --path the whole response body is printed.

Example:
  finboard fetch --url "https://www.alphavantage.co/query?function=GLOBAL_QUOTE&symbol=AAPL&apikey=demo" \
    --path "Global Quote.05. price"`,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().String("url", "", "URL to fetch (required)")
	fetchCmd.Flags().String("path", "", "key path to resolve against the response")
	fetchCmd.Flags().Duration("timeout", 10*time.Second, "request timeout")
	fetchCmd.Flags().StringToString("header", nil, "request header, repeatable (key=value)")
	_ = fetchCmd.MarkFlagRequired("url")
}

func runFetch(cmd *cobra.Command, args []string) error {
	url, _ := cmd.Flags().GetString("url")
	path, _ := cmd.Flags().GetString("path")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	headers, _ := cmd.Flags().GetStringToString("header")

	client := fetch.NewClient()
	defer client.Close()

	resp := client.Get(context.Background(), url, headers, timeout)
	if resp.Err != nil {
		return fmt.Errorf("request failed: %w", resp.Err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	var parsed any
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		return fmt.Errorf("response is not valid JSON: %w", err)
	}

	value := parsed
	if path != "" {
		resolved, found := keypath.Resolve(parsed, path)
		if !found {
			return fmt.Errorf("path %q not found in response; top-level keys: %v",
				path, keypath.TopKeys(parsed, 10))
		}
		value = resolved
	}

	out, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to render value: %w", err)
	}

	fmt.Printf("%s\n", out)
	fmt.Printf("latency: %s\n", resp.Latency.Round(time.Millisecond))
	return nil
}
