package finboard

import (
	"errors"
	"fmt"
	"time"
)

// gridConfig holds configuration during widget grid construction.
type gridConfig struct {
	urlTemplate string
	path        string
	dimensions  map[string][]string
	headers     map[string]string
	timeout     time.Duration
	kind        Kind
	interval    time.Duration
	intervalSet bool
	errorCheck  ErrorCheck
}

// GridOption configures widget grid generation.
// GridOption implements the functional options pattern for [NewWidgetGrid].
type GridOption func(*gridConfig) error

// WithURLTemplate sets the URL template for widget generation.
// The template uses Go's text/template syntax with dimension keys as variables.
//
// Example:
//
//	WithURLTemplate("https://api.example.com/quote?symbol={{.symbol}}&currency={{.currency}}")
//
// Returns an error if the template string is empty.
func WithURLTemplate(tmpl string) GridOption {
	return func(cfg *gridConfig) error {
		if tmpl == "" {
			return errors.New("URL template required")
		}
		cfg.urlTemplate = tmpl
		return nil
	}
}

// WithDimensions sets the dimension values for cartesian product expansion.
// Each key in the map becomes a template variable, and the cartesian product
// of all values generates the widget combinations.
//
// Example:
//
//	WithDimensions(map[string][]string{
//	    "symbol":   {"AAPL", "MSFT"},
//	    "currency": {"USD", "EUR"},
//	})
//
// Returns an error if the map is empty, any dimension has no values,
// or any value is an empty string.
func WithDimensions(dims map[string][]string) GridOption {
	return func(cfg *gridConfig) error {
		if len(dims) == 0 {
			return errors.New("at least one dimension required")
		}
		for k, vals := range dims {
			if len(vals) == 0 {
				return fmt.Errorf("dimension '%s' has no values", k)
			}
			for i, v := range vals {
				if v == "" {
					return fmt.Errorf("dimension '%s' contains empty value at index %d", k, i)
				}
			}
		}
		cfg.dimensions = dims
		return nil
	}
}

// WithGridPath sets the key path expression for all generated widgets.
//
// The path may itself reference dimension keys with template syntax; values
// are interpolated without URL encoding. An empty path delivers the whole
// response body.
//
// Example:
//
//	WithGridPath("Global Quote.05. price")
func WithGridPath(path string) GridOption {
	return func(cfg *gridConfig) error {
		cfg.path = path
		return nil
	}
}

// WithGridHeaders adds HTTP headers to all generated widgets.
//
// Accepts variadic key-value pairs. The number of arguments must be even.
//
// Example:
//
//	WithGridHeaders("Authorization", "Bearer token")
func WithGridHeaders(keyValues ...string) GridOption {
	return func(cfg *gridConfig) error {
		if len(keyValues)%2 != 0 {
			return errors.New("WithGridHeaders requires an even number of arguments (key-value pairs)")
		}
		if cfg.headers == nil {
			cfg.headers = make(map[string]string)
		}
		for i := 0; i < len(keyValues); i += 2 {
			cfg.headers[keyValues[i]] = keyValues[i+1]
		}
		return nil
	}
}

// WithGridTimeout sets the HTTP request timeout for all generated widgets.
//
// Returns an error if the duration is negative.
// A duration of zero is valid and means use the widget default.
func WithGridTimeout(d time.Duration) GridOption {
	return func(cfg *gridConfig) error {
		if d < 0 {
			return errors.New("timeout cannot be negative")
		}
		cfg.timeout = d
		return nil
	}
}

// WithGridKind sets the rendering hint for all generated widgets.
// If not set, widgets use [KindCard].
//
// Returns an error if the kind is not one of the supported values.
func WithGridKind(k Kind) GridOption {
	return func(cfg *gridConfig) error {
		switch k {
		case KindCard, KindTable, KindChart:
			cfg.kind = k
			return nil
		default:
			return errors.New("kind must be card, table, or chart")
		}
	}
}

// WithGridInterval sets a custom refresh interval for all generated widgets.
// This overrides the board's default refresh interval.
//
// A zero duration disables the recurring schedule on every generated widget;
// a non-zero interval must be between 1 second and 1 hour.
//
// Note: The interval is measured from when a cycle starts, not when it
// completes.
//
// Example:
//
//	WithGridInterval(30 * time.Second)
func WithGridInterval(d time.Duration) GridOption {
	return func(cfg *gridConfig) error {
		if d < 0 {
			return errors.New("interval cannot be negative")
		}
		if d != 0 && d < time.Second {
			return errors.New("interval must be at least 1 second")
		}
		if d > time.Hour {
			return errors.New("interval must not exceed 1 hour")
		}
		cfg.interval = d
		cfg.intervalSet = true
		return nil
	}
}

// WithGridErrorCheck sets a provider error predicate for all generated
// widgets. If nil, 2xx bodies are trusted as-is.
func WithGridErrorCheck(check ErrorCheck) GridOption {
	return func(cfg *gridConfig) error {
		cfg.errorCheck = check
		return nil
	}
}
