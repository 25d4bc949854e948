// Package config provides YAML configuration parsing for finboard.
//
// This package enables running finboard as a standalone binary with a
// configuration file, as an alternative to the programmatic SDK approach.
//
// Example configuration:
//
//	port: 8080
//	refresh_interval: 1m
//	cache_ttl: 30s
//
//	widgets:
//	  - name: AAPL
//	    url: https://www.alphavantage.co/query?function=GLOBAL_QUOTE&symbol=AAPL&apikey=${AV_API_KEY}
//	    path: "Global Quote.05. price"
//	    error_check: alphavantage
//
//	grids:
//	  - name: Quote
//	    url_template: "https://www.alphavantage.co/query?function=GLOBAL_QUOTE&symbol={{.symbol}}&apikey=${AV_API_KEY}"
//	    path: "Global Quote.05. price"
//	    dimensions:
//	      symbol: [AAPL, MSFT, GOOG]
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
	"text/template"
	"time"

	"gopkg.in/yaml.v3"
)

// minRefreshInterval is the minimum allowed refresh interval for production
// configs. This prevents accidental DoS of providers with overly aggressive
// polling.
const minRefreshInterval = 1 * time.Second

// Config is the root configuration structure for finboard.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// Title is the dashboard title. Defaults to "finboard" if not set.
	Title string `yaml:"title"`

	// Port is the HTTP server port. Defaults to 8080.
	Port int `yaml:"port"`

	// RefreshInterval is the default time between fetch cycles for widgets
	// that do not set their own interval.
	// Accepts duration strings like "10s", "1m", "500ms".
	// Defaults to 30s.
	RefreshInterval Duration `yaml:"refresh_interval"`

	// CacheTTL enables response caching for the given time-to-live.
	// Widgets sharing a URL then share one response within the window.
	CacheTTL Duration `yaml:"cache_ttl"`

	// RateLimit throttles outbound requests per target host.
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	// Widgets defines individual dashboard widgets.
	Widgets []WidgetConfig `yaml:"widgets"`

	// Grids defines widget grids that expand via cartesian product.
	Grids []GridConfig `yaml:"grids"`
}

// RateLimitConfig configures per-host request throttling.
type RateLimitConfig struct {
	// RPS is the allowed requests per second per host. Zero disables
	// throttling.
	RPS float64 `yaml:"rps"`

	// Burst is the token bucket burst size. Defaults to 1 when RPS is set.
	Burst int `yaml:"burst"`
}

// WidgetConfig defines a single dashboard widget.
type WidgetConfig struct {
	// Name is the display name shown in the dashboard.
	Name string `yaml:"name"`

	// URL is the JSON endpoint to poll, query parameters and API keys
	// included. Supports environment variable substitution: ${VAR} or
	// ${VAR:-default}
	URL string `yaml:"url"`

	// Path is the key path resolved against each response body.
	// Empty addresses the whole body.
	Path string `yaml:"path"`

	// Kind is the rendering hint: "card" (default), "table", or "chart".
	Kind string `yaml:"kind"`

	// Timeout is the request timeout. Defaults to 10s.
	Timeout Duration `yaml:"timeout"`

	// Headers are custom HTTP headers sent with each request.
	// Values support environment variable substitution.
	Headers map[string]string `yaml:"headers"`

	// Interval is the custom refresh interval for this widget.
	// If not specified, uses the global refresh_interval. An explicit "0s"
	// disables the recurring schedule (startup and manual refresh only).
	// A non-zero interval must be between 1s and 1h.
	Interval *Duration `yaml:"interval"`

	// ErrorCheck detects provider errors reported inside 200 OK bodies.
	// Can be shorthand ("alphavantage", "fields:error,message") or
	// structured.
	ErrorCheck ErrorCheckConfig `yaml:"error_check"`
}

// GridConfig defines a widget grid that expands via cartesian product.
//
// For example, with dimensions {symbol: [AAPL, MSFT], currency: [USD, EUR]},
// the grid expands to 4 widgets: AAPL/USD, AAPL/EUR, MSFT/USD, MSFT/EUR.
type GridConfig struct {
	// Name is the base name for generated widgets.
	Name string `yaml:"name"`

	// URLTemplate is a Go template for generating widget URLs.
	// Dimension keys are available as template variables: {{.symbol}}
	// Supports environment variable substitution in the template.
	URLTemplate string `yaml:"url_template"`

	// Path is the key path for all generated widgets. May itself reference
	// dimension keys with template syntax.
	Path string `yaml:"path"`

	// Dimensions maps dimension names to their possible values.
	// The cartesian product of all dimensions generates the widgets.
	Dimensions map[string][]string `yaml:"dimensions"`

	// Kind is the rendering hint for all generated widgets.
	Kind string `yaml:"kind"`

	// Timeout is the request timeout for all generated widgets.
	Timeout Duration `yaml:"timeout"`

	// Headers are custom HTTP headers for all generated widgets.
	Headers map[string]string `yaml:"headers"`

	// Interval is the custom refresh interval for all generated widgets.
	// Same semantics as the widget-level field.
	Interval *Duration `yaml:"interval"`

	// ErrorCheck detects provider errors for all generated widgets.
	ErrorCheck ErrorCheckConfig `yaml:"error_check"`
}

// ErrorCheckConfig specifies how to detect provider errors carried inside
// successful HTTP responses.
//
// It supports two formats in YAML:
//
// Shorthand string:
//
//	error_check: alphavantage
//	error_check: fields:error,message
//	error_check: none
//
// Structured object:
//
//	error_check:
//	  type: fields
//	  keys: [error, message]
type ErrorCheckConfig struct {
	// Type is the check type: "none", "alphavantage", "fields".
	Type string

	// Keys are the top-level body keys inspected (for type: fields).
	Keys []string
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// UnmarshalYAML implements yaml.Unmarshaler for ErrorCheckConfig.
func (e *ErrorCheckConfig) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		return e.parseShorthand(s)
	}

	if node.Kind == yaml.MappingNode {
		// temporary struct to avoid infinite recursion
		var raw struct {
			Type string   `yaml:"type"`
			Keys []string `yaml:"keys"`
		}
		if err := node.Decode(&raw); err != nil {
			return err
		}
		e.Type = raw.Type
		e.Keys = raw.Keys
		return nil
	}

	return fmt.Errorf("error_check must be a string or object, got %v", node.Kind)
}

// parseShorthand parses error check shorthand syntax.
//
// Supported formats:
//   - "none" → trust 2xx bodies as-is
//   - "alphavantage" → Alpha Vantage's error keys
//   - "fields:k1,k2" → fail on the named top-level keys
func (e *ErrorCheckConfig) parseShorthand(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	if idx := strings.Index(s, ":"); idx != -1 {
		e.Type = s[:idx]
		value := s[idx+1:]

		switch e.Type {
		case "fields":
			for _, k := range strings.Split(value, ",") {
				k = strings.TrimSpace(k)
				if k != "" {
					e.Keys = append(e.Keys, k)
				}
			}
		default:
			return fmt.Errorf("unknown error_check type %q", e.Type)
		}
		return nil
	}

	switch s {
	case "none", "alphavantage":
		e.Type = s
	default:
		return fmt.Errorf("unknown error_check %q (expected 'none', 'alphavantage', or 'fields:k1,k2')", s)
	}
	return nil
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// already have an error, skip processing
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		// submatches[2] is ":-..." (non-empty if default syntax was used)
		// submatches[3] is the actual default value (may be empty for ${VAR:-})
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Environment variables in the file are expanded before parsing.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in URL, URLTemplate, and Header values.
// Defaults are applied for Port (8080) and RefreshInterval (30s).
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.RefreshInterval == 0 {
		cfg.RefreshInterval = Duration(30 * time.Second)
	}

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	if c.RefreshInterval.Duration() < minRefreshInterval {
		return fmt.Errorf("refresh_interval must be at least %s, got %s", minRefreshInterval, c.RefreshInterval.Duration())
	}

	if c.CacheTTL.Duration() < 0 {
		return fmt.Errorf("cache_ttl cannot be negative, got %s", c.CacheTTL.Duration())
	}

	if c.RateLimit.RPS < 0 {
		return fmt.Errorf("rate_limit.rps cannot be negative, got %v", c.RateLimit.RPS)
	}

	for i := range c.Widgets {
		w := &c.Widgets[i]

		if w.Name == "" {
			return fmt.Errorf("widgets[%d]: name is required", i)
		}

		if w.URL == "" {
			return fmt.Errorf("widgets[%d] (%s): url is required", i, w.Name)
		}
		expanded, err := expandEnvVars(w.URL)
		if err != nil {
			return fmt.Errorf("widgets[%d] (%s): url: %w", i, w.Name, err)
		}
		w.URL = expanded

		parsedURL, err := url.Parse(w.URL)
		if err != nil {
			return fmt.Errorf("widgets[%d] (%s): invalid url: %w", i, w.Name, err)
		}
		if parsedURL.Scheme == "" {
			return fmt.Errorf("widgets[%d] (%s): url must have a scheme (http:// or https://)", i, w.Name)
		}
		if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			return fmt.Errorf("widgets[%d] (%s): url scheme must be http or https, got %q", i, w.Name, parsedURL.Scheme)
		}

		for k, v := range w.Headers {
			expanded, err := expandEnvVars(v)
			if err != nil {
				return fmt.Errorf("widgets[%d] (%s): headers[%s]: %w", i, w.Name, k, err)
			}
			w.Headers[k] = expanded
		}

		if err := validateKind(w.Kind, fmt.Sprintf("widgets[%d] (%s)", i, w.Name)); err != nil {
			return err
		}

		if w.Timeout != 0 {
			if w.Timeout.Duration() < 0 {
				return fmt.Errorf("widgets[%d] (%s): timeout cannot be negative, got %s",
					i, w.Name, w.Timeout.Duration())
			}
			if w.Timeout.Duration() < time.Second {
				return fmt.Errorf("widgets[%d] (%s): timeout must be at least 1s if specified, got %s",
					i, w.Name, w.Timeout.Duration())
			}
		}

		if err := validateInterval(w.Interval, fmt.Sprintf("widgets[%d] (%s)", i, w.Name)); err != nil {
			return err
		}

		if err := validateErrorCheck(&w.ErrorCheck, fmt.Sprintf("widgets[%d] (%s)", i, w.Name)); err != nil {
			return err
		}
	}

	for i := range c.Grids {
		g := &c.Grids[i]

		if g.Name == "" {
			return fmt.Errorf("grids[%d]: name is required", i)
		}

		if g.URLTemplate == "" {
			return fmt.Errorf("grids[%d] (%s): url_template is required", i, g.Name)
		}
		expanded, err := expandEnvVars(g.URLTemplate)
		if err != nil {
			return fmt.Errorf("grids[%d] (%s): url_template: %w", i, g.Name, err)
		}
		g.URLTemplate = expanded

		// fail fast before SDK tries to use invalid template
		if _, err := template.New("").Parse(g.URLTemplate); err != nil {
			return fmt.Errorf("grids[%d] (%s): invalid url_template: %w", i, g.Name, err)
		}

		if len(g.Dimensions) == 0 {
			return fmt.Errorf("grids[%d] (%s): at least one dimension is required", i, g.Name)
		}
		for dimName, dimValues := range g.Dimensions {
			if len(dimValues) == 0 {
				return fmt.Errorf("grids[%d] (%s): dimension %q has no values", i, g.Name, dimName)
			}
			seen := make(map[string]struct{}, len(dimValues))
			for _, v := range dimValues {
				if _, exists := seen[v]; exists {
					return fmt.Errorf("grids[%d] (%s): dimension %q has duplicate value %q", i, g.Name, dimName, v)
				}
				seen[v] = struct{}{}
			}
		}

		for k, v := range g.Headers {
			expanded, err := expandEnvVars(v)
			if err != nil {
				return fmt.Errorf("grids[%d] (%s): headers[%s]: %w", i, g.Name, k, err)
			}
			g.Headers[k] = expanded
		}

		if err := validateKind(g.Kind, fmt.Sprintf("grids[%d] (%s)", i, g.Name)); err != nil {
			return err
		}

		if g.Timeout != 0 {
			if g.Timeout.Duration() < 0 {
				return fmt.Errorf("grids[%d] (%s): timeout cannot be negative, got %s",
					i, g.Name, g.Timeout.Duration())
			}
			if g.Timeout.Duration() < time.Second {
				return fmt.Errorf("grids[%d] (%s): timeout must be at least 1s if specified, got %s",
					i, g.Name, g.Timeout.Duration())
			}
		}

		if err := validateInterval(g.Interval, fmt.Sprintf("grids[%d] (%s)", i, g.Name)); err != nil {
			return err
		}

		if err := validateErrorCheck(&g.ErrorCheck, fmt.Sprintf("grids[%d] (%s)", i, g.Name)); err != nil {
			return err
		}
	}

	if len(c.Widgets) == 0 && len(c.Grids) == 0 {
		return errors.New("at least one widget or grid must be defined")
	}

	return nil
}

// validateKind checks a rendering hint string.
func validateKind(kind, context string) error {
	switch kind {
	case "", "card", "table", "chart":
		return nil
	default:
		return fmt.Errorf("%s: kind must be card, table, or chart, got %q", context, kind)
	}
}

// validateInterval checks a widget or grid refresh interval. A nil interval
// means the global default applies; an explicit zero disables the schedule.
func validateInterval(d *Duration, context string) error {
	if d == nil || d.Duration() == 0 {
		return nil
	}
	if d.Duration() < time.Second {
		return fmt.Errorf("%s: interval must be at least 1s, got %s", context, d.Duration())
	}
	if d.Duration() > time.Hour {
		return fmt.Errorf("%s: interval must not exceed 1h, got %s", context, d.Duration())
	}
	return nil
}

// validateErrorCheck validates an error check configuration.
func validateErrorCheck(e *ErrorCheckConfig, context string) error {
	if e.Type == "" {
		return nil // empty means none, which is valid
	}

	switch e.Type {
	case "none", "alphavantage":
		// no additional validation needed
	case "fields":
		if len(e.Keys) == 0 {
			return fmt.Errorf("%s: error_check type 'fields' requires keys", context)
		}
	default:
		return fmt.Errorf("%s: unknown error_check type %q", context, e.Type)
	}

	return nil
}
