package finboard

import (
	"errors"
	"time"
)

// widgetConfig holds mutable state during widget construction.
type widgetConfig struct {
	path        string
	kind        Kind
	headers     map[string]string
	timeout     time.Duration
	interval    time.Duration
	intervalSet bool
	errorCheck  ErrorCheck
}

// WidgetOption is a function that configures a [Widget] during construction.
//
// WidgetOption implements the functional options pattern, allowing optional
// configuration to be passed to [NewWidget] in a type-safe, extensible way.
// Options return an error if validation fails.
//
// Built-in options: [WithPath], [WithRefreshInterval], [WithWidgetTimeout],
// [WithWidgetHeaders], [WithKind], [WithErrorCheck].
type WidgetOption func(*widgetConfig) error

// WithPath sets the key path expression resolved against each response body.
//
// The path uses dot notation with optional bracket indices for arrays.
// Resolution prefers an exact key match at each level, so provider keys that
// themselves contain dots (Alpha Vantage's "Global Quote" or "09. change")
// work without escaping: "Global Quote.09. change" resolves by first trying
// the literal segment, then joining it with following segments.
//
// An empty path (the default) delivers the whole parsed response body.
//
// Example:
//
//	w, err := finboard.NewWidget("BTC", url,
//	    finboard.WithPath("bitcoin.usd"),
//	)
func WithPath(path string) WidgetOption {
	return func(cfg *widgetConfig) error {
		cfg.path = path
		return nil
	}
}

// WithRefreshInterval sets a custom refresh interval for this widget.
//
// When set, this widget is refreshed at the specified interval instead of
// the board default. A zero interval disables the recurring schedule: the
// widget fetches once on startup and thereafter only on manual refresh.
//
// A non-zero interval must be at least 1 second and at most 1 hour.
// Returns an error if the interval is outside these bounds or negative.
//
// Note: The interval is measured from when a cycle starts, not when it
// completes. Cycles that outlast the interval may overlap; the last
// completed cycle determines the visible value.
//
// Example:
//
//	fast, _ := finboard.NewWidget("BTC price", url,
//	    finboard.WithRefreshInterval(10 * time.Second),
//	)
//
//	static, _ := finboard.NewWidget("Company overview", url,
//	    finboard.WithRefreshInterval(0), // fetch once, refresh manually
//	)
func WithRefreshInterval(d time.Duration) WidgetOption {
	return func(cfg *widgetConfig) error {
		if d < 0 {
			return errors.New("refresh interval cannot be negative")
		}
		if d != 0 && d < time.Second {
			return errors.New("refresh interval must be at least 1 second")
		}
		if d > time.Hour {
			return errors.New("refresh interval must not exceed 1 hour")
		}
		cfg.interval = d
		cfg.intervalSet = true
		return nil
	}
}

// WithWidgetTimeout sets the HTTP request timeout for this widget.
//
// If the endpoint does not respond within this duration, the cycle fails
// and the widget surfaces the timeout as its error while retaining its last
// successful value. Defaults to 10 seconds if not specified.
//
// Example:
//
//	w, err := finboard.NewWidget("Slow API", url,
//	    finboard.WithWidgetTimeout(30 * time.Second),
//	)
//
// Returns an error if the duration is zero or negative.
func WithWidgetTimeout(d time.Duration) WidgetOption {
	return func(cfg *widgetConfig) error {
		if d <= 0 {
			return errors.New("timeout must be positive")
		}
		cfg.timeout = d
		return nil
	}
}

// WithWidgetHeaders adds custom HTTP headers to fetch requests for this widget.
//
// Use this for providers that take their API key or auth token in a header
// rather than a query parameter. Headers are sent with every fetch request.
//
// Accepts variadic key-value pairs. The number of arguments must be even.
//
// Example:
//
//	w, err := finboard.NewWidget("Portfolio", url,
//	    finboard.WithWidgetHeaders("Authorization", "Bearer token123"),
//	)
//
// Returns an error if an odd number of arguments is provided.
func WithWidgetHeaders(keyValues ...string) WidgetOption {
	return func(cfg *widgetConfig) error {
		if len(keyValues)%2 != 0 {
			return errors.New("WithWidgetHeaders requires an even number of arguments (key-value pairs)")
		}
		for i := 0; i < len(keyValues); i += 2 {
			cfg.headers[keyValues[i]] = keyValues[i+1]
		}
		return nil
	}
}

// WithKind sets the widget's rendering hint.
//
// Supported kinds are [KindCard] (default), [KindTable], and [KindChart].
//
// Example:
//
//	w, err := finboard.NewWidget("Global Quote", url,
//	    finboard.WithPath("Global Quote"),
//	    finboard.WithKind(finboard.KindTable),
//	)
//
// Returns an error if the kind is not one of the supported values.
func WithKind(k Kind) WidgetOption {
	return func(cfg *widgetConfig) error {
		switch k {
		case KindCard, KindTable, KindChart:
			cfg.kind = k
			return nil
		default:
			return errors.New("kind must be card, table, or chart")
		}
	}
}

// WithErrorCheck sets a provider error predicate for this widget.
//
// Some finance APIs report failures inside a 200 OK body rather than via
// the HTTP status code. The check inspects each parsed response before path
// resolution; a non-nil return fails the cycle through the ordinary error
// channel, so the widget keeps its stale value and surfaces the message.
//
// Example:
//
//	w, err := finboard.NewWidget("AAPL", url,
//	    finboard.WithErrorCheck(finboard.AlphaVantageErrorCheck),
//	)
func WithErrorCheck(check ErrorCheck) WidgetOption {
	return func(cfg *widgetConfig) error {
		cfg.errorCheck = check
		return nil
	}
}
