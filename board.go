package finboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/finboard/finboard/dashboard"
	"github.com/finboard/finboard/internal/fetch"
	"github.com/finboard/finboard/internal/server"
	"github.com/finboard/finboard/internal/store"
)

const (
	defaultRefreshInterval = 30 * time.Second
	defaultPort            = 8080
)

// Board is the main orchestrator for widget fetching and dashboard serving.
//
// Board coordinates one independent fetcher per widget, stores the resolved
// values, and serves a real-time dashboard via HTTP. It is created using
// [New] with functional options and started with [Board.Start].
//
// The typical lifecycle is:
//
//	board, err := finboard.New(finboard.WithWidget(w))
//	if err != nil {
//	    slog.Error("failed to create board", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//
//	board.Start(ctx) // blocks until context cancelled
//
// The caller controls the lifecycle via the context. Cancel the context to
// trigger graceful shutdown.
type Board struct {
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

// New creates a new [Board] instance with the given options.
//
// At least one widget must be configured via [WithWidget] or [WithWidgets].
// Other options have sensible defaults:
//   - Default refresh interval: 30 seconds
//   - Port: 8080
//   - Caching and host rate limiting: disabled
//
// Returns an error if no widgets are configured or if any option is invalid.
//
// Example:
//
//	board, err := finboard.New(
//	    finboard.WithWidget(w),
//	    finboard.WithDefaultRefreshInterval(time.Minute),
//	    finboard.WithPort(9090),
//	)
func New(opts ...Option) (*Board, error) {
	cfg := &boardConfig{
		widgets:         []Widget{},
		refreshInterval: defaultRefreshInterval,
		port:            defaultPort,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if len(cfg.widgets) == 0 {
		return nil, errors.New("at least one widget is required")
	}

	// validate widget name uniqueness (names are how users tell tiles apart)
	seen := make(map[string]bool, len(cfg.widgets))
	for _, w := range cfg.widgets {
		if seen[w.name] {
			return nil, fmt.Errorf("duplicate widget name: %q", w.name)
		}
		seen[w.name] = true
	}

	if cfg.port < 1 || cfg.port > 65535 {
		return nil, fmt.Errorf("port must be between 1 and 65535, got %d", cfg.port)
	}

	// default to slog.Default() if no logger provided
	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Board{
		title:           cfg.title,
		widgets:         cfg.widgets,
		refreshInterval: cfg.refreshInterval,
		port:            cfg.port,
		cacheTTL:        cfg.cacheTTL,
		hostRPS:         cfg.hostRPS,
		hostBurst:       cfg.hostBurst,
		logger:          logger,
		updateCallbacks: cfg.updateCallbacks,
	}, nil
}

// Start begins fetching widget data and serving the dashboard.
//
// Start is a blocking call that runs until the provided context is cancelled.
// During execution:
//
//   - Every widget fetches immediately, then on its own independent schedule
//   - The HTTP server starts on the configured port
//   - Fetch failures are logged; successes update the dashboard in real time
//   - The dashboard is available at http://localhost:<port>
//
// The caller controls the lifecycle via context cancellation. For signal
// handling, use [signal.NotifyContext]:
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//	board.Start(ctx)
//
// Returns nil on graceful shutdown. Returns an error if the HTTP server
// fails to start.
func (b *Board) Start(ctx context.Context) error {
	b.logger.Info("finboard starting", "widget_count", len(b.widgets))
	b.logger.Info("dashboard available", "url", fmt.Sprintf("http://localhost:%d", b.port))

	// check if context already cancelled
	if ctx.Err() != nil {
		return nil
	}

	resultStore := store.NewMemoryStore()

	// shared infrastructure: one connection pool, one cache, one limiter
	client := fetch.NewClient()
	cache := fetch.NewCache(b.cacheTTL)
	limiter := fetch.NewHostLimiter(b.hostRPS, b.hostBurst)

	fetchers := make(map[string]*fetch.Fetcher, len(b.widgets))
	for _, w := range b.widgets {
		interval := b.refreshInterval
		if d, ok := w.RefreshInterval(); ok {
			interval = d
		}

		fetchers[w.id] = fetch.New(fetch.Config{
			WidgetID:   w.id,
			Name:       w.name,
			URL:        w.url,
			Path:       w.path,
			Interval:   interval,
			Timeout:    w.timeout,
			Headers:    w.headers,
			ErrorCheck: w.errorCheck,
			Cache:      cache,
			Limiter:    limiter,
			OnUpdate:   b.makeUpdateHandler(w, resultStore),
			Logger:     b.logger,
			Client:     client,
		})
	}

	cleanup := func() {
		for _, f := range fetchers {
			f.Stop()
		}
		client.Close()
	}

	refresh := func(id string) bool {
		f, ok := fetchers[id]
		if !ok {
			return false
		}
		f.Refetch()
		return true
	}

	// start the HTTP server before the fetchers so the first loading states
	// are already observable via SSE
	httpServer := server.NewServer(resultStore, refresh, b.port, dashboard.Assets, b.title, b.logger)
	if err := httpServer.Start(ctx); err != nil {
		cleanup()
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	for _, f := range fetchers {
		f.Start()
	}

	<-ctx.Done()
	cleanup()
	b.logger.Info("finboard stopped")
	return nil
}

// Widgets returns a copy of the configured widgets.
//
// The returned slice is a copy; modifying it does not affect the Board.
// Each [Widget] in the slice is immutable.
func (b *Board) Widgets() []Widget {
	cp := make([]Widget, len(b.widgets))
	copy(cp, b.widgets)
	return cp
}

// Port returns the configured HTTP port for the dashboard server.
func (b *Board) Port() int {
	return b.port
}

// DefaultRefreshInterval returns the refresh interval applied to widgets
// without their own.
func (b *Board) DefaultRefreshInterval() time.Duration {
	return b.refreshInterval
}

// makeUpdateHandler binds a widget to the store and the registered update
// callbacks. The returned function runs on the fetch cycle's goroutine.
func (b *Board) makeUpdateHandler(w Widget, resultStore store.Store) func(fetch.Result) {
	return func(fr fetch.Result) {
		// store update first (callbacks fire after data is persisted)
		resultStore.Update(fetchResultToStoreResult(w, fr))

		if len(b.updateCallbacks) == 0 {
			return
		}
		publicResult := fetchResultToPublicResult(w, fr)
		for _, cb := range b.updateCallbacks {
			invokeCallbackSafe(cb, publicResult, b.logger)
		}
	}
}

// fetchResultToStoreResult converts a fetch result to its storage form.
func fetchResultToStoreResult(w Widget, fr fetch.Result) store.WidgetResult {
	var errStr *string
	if fr.Err != nil {
		s := fr.Err.Error()
		errStr = &s
	}

	return store.WidgetResult{
		ID:        w.id,
		Name:      w.name,
		Kind:      string(w.kind),
		URL:       w.url,
		Path:      w.path,
		Loading:   fr.Loading,
		Data:      fr.Data,
		Error:     errStr,
		CheckedAt: fr.CheckedAt,
	}
}

// fetchResultToPublicResult converts an internal fetch result to the public
// API type.
func fetchResultToPublicResult(w Widget, fr fetch.Result) Result {
	return Result{
		WidgetID:   w.id,
		WidgetName: w.name,
		Kind:       w.kind,
		URL:        w.url,
		Path:       w.path,
		Loading:    fr.Loading,
		Data:       fr.Data,
		Err:        fr.Err,
		CheckedAt:  fr.CheckedAt,
	}
}

// invokeCallbackSafe calls an update callback with panic recovery.
// Panics are logged but do not propagate.
func invokeCallbackSafe(cb func(Result), result Result, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("update callback panicked",
				"panic", r,
				"widget", result.WidgetName,
			)
		}
	}()
	cb(result)
}
