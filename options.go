package finboard

import (
	"errors"
	"log/slog"
	"time"
)

// boardConfig holds mutable state during Board construction.
type boardConfig struct {
	title           string
	widgets         []Widget
	refreshInterval time.Duration
	port            int
	cacheTTL        time.Duration
	hostRPS         float64
	hostBurst       int
	logger          *slog.Logger
	updateCallbacks []func(Result)
}

// Option is a function that configures a [Board] instance during construction.
//
// Option implements the functional options pattern, allowing optional
// configuration to be passed to [New] in a type-safe, extensible way.
// Options return an error if validation fails.
//
// Built-in options: [WithWidget], [WithWidgets], [WithDefaultRefreshInterval],
// [WithPort], [WithTitle], [WithCacheTTL], [WithHostRateLimit],
// [WithUpdateCallback], [WithLogger].
type Option func(*boardConfig) error

// WithWidget adds a single [Widget] to the board.
//
// Can be called multiple times to add multiple widgets. At least one widget
// must be configured for [New] to succeed.
//
// Example:
//
//	board, err := finboard.New(
//	    finboard.WithWidget(w1),
//	    finboard.WithWidget(w2),
//	)
func WithWidget(w Widget) Option {
	return func(cfg *boardConfig) error {
		cfg.widgets = append(cfg.widgets, w)
		return nil
	}
}

// WithWidgets adds multiple [Widget] values to the board.
//
// This is a convenience function for adding several widgets at once.
// Equivalent to calling [WithWidget] multiple times.
//
// Example:
//
//	board, err := finboard.New(
//	    finboard.WithWidgets(w1, w2, w3),
//	)
func WithWidgets(widgets ...Widget) Option {
	return func(cfg *boardConfig) error {
		cfg.widgets = append(cfg.widgets, widgets...)
		return nil
	}
}

// WithDefaultRefreshInterval sets the refresh interval applied to widgets
// that do not carry their own via [WithRefreshInterval].
//
// Each widget refreshes on its own independent schedule; the default only
// supplies the cadence, it does not align the ticks. Defaults to 30 seconds
// if not specified.
//
// Example:
//
//	board, err := finboard.New(
//	    finboard.WithWidget(w),
//	    finboard.WithDefaultRefreshInterval(time.Minute),
//	)
//
// Returns an error if the duration is zero or negative.
func WithDefaultRefreshInterval(d time.Duration) Option {
	return func(cfg *boardConfig) error {
		if d <= 0 {
			return errors.New("default refresh interval must be positive")
		}
		cfg.refreshInterval = d
		return nil
	}
}

// WithPort sets the HTTP port for the dashboard server.
//
// The dashboard UI and API will be available at http://localhost:<port>.
// Defaults to 8080 if not specified.
//
// Example:
//
//	board, err := finboard.New(
//	    finboard.WithWidget(w),
//	    finboard.WithPort(9090),
//	)
//
// Returns an error if the port is outside the valid range (1-65535).
func WithPort(port int) Option {
	return func(cfg *boardConfig) error {
		if port < 1 || port > 65535 {
			return errors.New("port must be between 1 and 65535")
		}
		cfg.port = port
		return nil
	}
}

// WithCacheTTL enables response caching with the given time-to-live.
//
// Widgets pointing at the same URL then share a single response within the
// TTL window, and concurrent requests for one URL are collapsed into a
// single upstream call. A zero TTL (the default) stores nothing but still
// collapses concurrent requests.
//
// Example:
//
//	board, err := finboard.New(
//	    finboard.WithWidgets(widgets...),
//	    finboard.WithCacheTTL(30 * time.Second),
//	)
//
// Returns an error if the duration is negative.
func WithCacheTTL(d time.Duration) Option {
	return func(cfg *boardConfig) error {
		if d < 0 {
			return errors.New("cache TTL cannot be negative")
		}
		cfg.cacheTTL = d
		return nil
	}
}

// WithHostRateLimit throttles outbound requests per target host.
//
// Free-tier finance APIs enforce strict rate limits; a board with many
// widgets on one provider will trip them without throttling. Each host gets
// its own token bucket allowing rps requests per second with the given
// burst. Zero rps (the default) disables throttling.
//
// Example:
//
//	// Alpha Vantage free tier: 5 requests/minute
//	board, err := finboard.New(
//	    finboard.WithWidgets(widgets...),
//	    finboard.WithHostRateLimit(5.0/60.0, 1),
//	)
//
// Returns an error if rps is negative.
func WithHostRateLimit(rps float64, burst int) Option {
	return func(cfg *boardConfig) error {
		if rps < 0 {
			return errors.New("host rate limit cannot be negative")
		}
		cfg.hostRPS = rps
		cfg.hostBurst = burst
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for the Board instance.
//
// This allows SDK consumers to control where logs are written and in what
// format. If not specified, [slog.Default] is used.
//
// Example:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
//	board, err := finboard.New(
//	    finboard.WithWidget(w),
//	    finboard.WithLogger(logger),
//	)
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *boardConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithUpdateCallback registers a function to be called on every widget state
// transition, including the loading flip at the start of each cycle.
//
// The callback receives a [Result] containing the widget identity and its
// full tri-state: loading flag, resolved data, and error.
//
// Multiple callbacks may be registered by calling WithUpdateCallback
// multiple times; they execute in registration order.
//
// IMPORTANT: Callbacks must be non-blocking. Long-running operations should
// dispatch work to a separate goroutine. Blocking callbacks will delay the
// publishing of subsequent results for that widget.
//
// Callbacks are invoked from the fetch cycle's goroutine. Panics within
// callbacks are recovered and logged; they do not crash the fetcher.
//
// Example:
//
//	board, err := finboard.New(
//	    finboard.WithWidget(w),
//	    finboard.WithUpdateCallback(func(r finboard.Result) {
//	        if r.Err != nil {
//	            log.Printf("ALERT: %s failed: %v", r.WidgetName, r.Err)
//	        }
//	    }),
//	)
//
// Nil callbacks are silently ignored.
func WithUpdateCallback(cb func(Result)) Option {
	return func(cfg *boardConfig) error {
		if cb == nil {
			return nil // no-op for nil callback (safe to call)
		}
		cfg.updateCallbacks = append(cfg.updateCallbacks, cb)
		return nil
	}
}

// WithTitle sets the dashboard title displayed in the browser tab and header.
//
// If not specified, defaults to "finboard".
//
// Example:
//
//	board, err := finboard.New(
//	    finboard.WithWidget(w),
//	    finboard.WithTitle("Portfolio Overview"),
//	)
func WithTitle(title string) Option {
	return func(cfg *boardConfig) error {
		cfg.title = title
		return nil
	}
}
