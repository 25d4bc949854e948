package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/finboard/finboard/keypath"
)

// maxDiagnosticKeys bounds how many top-level response keys are included in
// a resolution-failure message.
const maxDiagnosticKeys = 10

// Result is the tri-state outcome a [Fetcher] exposes to its consumers.
//
// Invariants:
//   - Loading=true means a cycle is in flight and has surfaced no new error
//     yet; Data and Err still describe the previous completed cycle.
//   - Err != nil means the last cycle failed; Data retains the last
//     successful value (stale but present), or nil if no cycle ever
//     succeeded.
type Result struct {
	// Loading reports whether a fetch cycle is currently in flight.
	Loading bool

	// Data is the value resolved from the most recently completed
	// successful cycle. May be any JSON type, including nil for a present
	// JSON null.
	Data any

	// Err is the failure of the most recently completed cycle, nil on
	// success.
	Err error

	// CheckedAt is the completion time of the most recent cycle.
	CheckedAt time.Time
}

// Config carries everything a [Fetcher] needs for its lifetime. One Fetcher
// is bound to one widget; the widget's URL must already contain any query
// parameters, API keys included.
type Config struct {
	// WidgetID identifies the owning widget in logs and updates.
	WidgetID string

	// Name is the widget's display name, used for logging only.
	Name string

	// URL is the JSON endpoint to poll. An empty URL disables fetching.
	URL string

	// Path is the key path expression resolved against each response body.
	// Empty addresses the whole body.
	Path string

	// Interval is the refresh cadence. Zero or negative disables the
	// recurring schedule; the fetcher then only runs on Start and Refetch.
	Interval time.Duration

	// Timeout is the per-request timeout. Zero uses the transport default.
	Timeout time.Duration

	// Headers are sent with every request.
	Headers map[string]string

	// AutoStart runs Start during New.
	AutoStart bool

	// ErrorCheck, when set, inspects each parsed 2xx body before path
	// resolution. A non-nil return fails the cycle through the ordinary
	// error channel (provider rate-limit notices and the like).
	ErrorCheck func(body any) error

	// Cache, when set, is consulted before issuing a request and dedups
	// concurrent requests for the same URL. Shared across fetchers.
	Cache *Cache

	// Limiter, when set, throttles requests per target host. Shared
	// across fetchers.
	Limiter *HostLimiter

	// OnUpdate fires after every state transition with a snapshot of the
	// result. Called from the cycle's goroutine; must not block.
	OnUpdate func(Result)

	// Logger receives cycle failures. Defaults to slog.Default().
	Logger *slog.Logger

	// Client is the HTTP client to use. Defaults to a new [Client];
	// sharing one across fetchers is recommended for pooling.
	Client *Client
}

// Fetcher polls one JSON endpoint, resolves a key path against each
// response, and republishes the extracted value with loading/error status.
//
// A Fetcher owns its timer and result state exclusively; fetchers share
// nothing mutable with each other beyond the cache and limiter they are
// explicitly given. All methods are safe for concurrent use.
//
// Cycles may overlap when a cycle outlasts the refresh interval; the
// fetcher tolerates this, and whichever cycle completes last determines the
// visible result.
type Fetcher struct {
	widgetID   string
	name       string
	client     *Client
	cache      *Cache
	limiter    *HostLimiter
	errorCheck func(body any) error
	onUpdate   func(Result)
	logger     *slog.Logger

	mu         sync.Mutex
	url        string
	path       string
	interval   time.Duration
	timeout    time.Duration
	headers    map[string]string
	result     Result
	started    bool
	stopped    bool
	cancelTick context.CancelFunc // nil when no schedule is running
}

// New creates a [Fetcher] from cfg. With cfg.AutoStart the first cycle runs
// immediately (when the URL is non-empty) and the recurring schedule begins
// (when the interval is positive).
func New(cfg Config) *Fetcher {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	client := cfg.Client
	if client == nil {
		client = NewClient()
	}

	f := &Fetcher{
		widgetID:   cfg.WidgetID,
		name:       cfg.Name,
		client:     client,
		cache:      cfg.Cache,
		limiter:    cfg.Limiter,
		errorCheck: cfg.ErrorCheck,
		onUpdate:   cfg.OnUpdate,
		logger:     logger,
		url:        cfg.URL,
		path:       cfg.Path,
		interval:   cfg.Interval,
		timeout:    cfg.Timeout,
		headers:    cfg.Headers,
	}

	if cfg.AutoStart {
		f.Start()
	}
	return f
}

// WidgetID returns the owning widget's ID.
func (f *Fetcher) WidgetID() string {
	return f.widgetID
}

// Result returns a snapshot of the current tri-state result.
func (f *Fetcher) Result() Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.result
}

// Start runs an immediate cycle and begins the recurring schedule.
//
// Start is idempotent: once started, further calls are no-ops, so a cycle
// already in flight is never duplicated by re-invocation. Start after Stop
// is a no-op.
func (f *Fetcher) Start() {
	f.mu.Lock()
	if f.started || f.stopped {
		f.mu.Unlock()
		return
	}
	f.started = true
	f.scheduleLocked()
	url := f.url
	f.mu.Unlock()

	if url != "" {
		go f.runCycle()
	}
}

// Stop cancels the recurring schedule synchronously and freezes the
// fetcher's state. An in-flight request is allowed to complete, but its
// outcome is discarded; a stopped fetcher never updates its result again.
// Stop is idempotent.
func (f *Fetcher) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
	if f.cancelTick != nil {
		f.cancelTick()
		f.cancelTick = nil
	}
}

// Refetch triggers one out-of-band cycle (a manual refresh) without
// disturbing the recurring cadence. Any still-fresh cache entry for the URL
// is invalidated so the refresh actually hits the network. No-op on a
// stopped fetcher or when the URL is empty.
func (f *Fetcher) Refetch() {
	f.mu.Lock()
	ok := !f.stopped && f.url != ""
	url := f.url
	f.mu.Unlock()

	if !ok {
		return
	}
	if f.cache != nil {
		f.cache.Invalidate(url)
	}
	go f.runCycle()
}

// Reconfigure replaces the fetcher's URL and interval. The existing
// schedule is torn down and rebuilt rather than accumulated; an in-flight
// cycle is unaffected (its outcome still lands, against the new
// configuration's state). A URL change triggers an immediate cycle; an
// interval-only change does not.
func (f *Fetcher) Reconfigure(url string, interval time.Duration) {
	f.mu.Lock()
	if f.stopped {
		f.mu.Unlock()
		return
	}

	urlChanged := url != f.url
	f.url = url
	f.interval = interval

	if f.cancelTick != nil {
		f.cancelTick()
		f.cancelTick = nil
	}
	if f.started {
		f.scheduleLocked()
	}
	started := f.started
	f.mu.Unlock()

	if started && urlChanged && url != "" {
		go f.runCycle()
	}
}

// scheduleLocked starts the ticker goroutine for the current URL and
// interval. Caller must hold f.mu. No-op when a schedule is already running
// or the configuration does not call for one.
func (f *Fetcher) scheduleLocked() {
	if f.cancelTick != nil || f.interval <= 0 || f.url == "" {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	f.cancelTick = cancel
	interval := f.interval

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				// each cycle runs in its own goroutine so a slow
				// response cannot stall the cadence
				go f.runCycle()
			}
		}
	}()
}

// runCycle performs one complete fetch cycle: GET, parse, provider check,
// path resolution, publish. Every failure is absorbed into the result's Err
// field; nothing propagates to the caller.
func (f *Fetcher) runCycle() {
	f.mu.Lock()
	if f.stopped || f.url == "" {
		f.mu.Unlock()
		return
	}
	url, path, timeout := f.url, f.path, f.timeout
	headers := f.headers
	f.mu.Unlock()

	f.publish(func(r *Result) {
		r.Loading = true
		r.Err = nil
	})

	value, err := f.cycle(url, path, headers, timeout)

	now := time.Now()
	if err != nil {
		f.logger.Warn("fetch cycle failed",
			"widget", f.name,
			"url", url,
			"error", err.Error(),
		)
		f.publish(func(r *Result) {
			r.Loading = false
			r.Err = err
			r.CheckedAt = now
			// previous Data retained
		})
		return
	}

	f.publish(func(r *Result) {
		r.Loading = false
		r.Err = nil
		r.Data = value
		r.CheckedAt = now
	})
}

// cycle fetches, parses, and resolves one response. Panics anywhere in the
// cycle are recovered, logged with a correlation ID, and returned as the
// cycle error so loading state is always restored.
func (f *Fetcher) cycle(url, path string, headers map[string]string, timeout time.Duration) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			f.logger.Error("fetch cycle panic",
				"correlation_id", correlationID,
				"widget", f.name,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
			value = nil
			err = fmt.Errorf("fetch cycle panic (correlation_id: %s)", correlationID)
		}
	}()

	body, err := f.fetchBody(url, headers, timeout)
	if err != nil {
		return nil, err
	}

	var parsed any
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, err
	}

	if f.errorCheck != nil {
		if err := f.errorCheck(parsed); err != nil {
			return nil, err
		}
	}

	resolved, found := keypath.Resolve(parsed, path)
	if !found {
		return nil, fmt.Errorf("path %q not found in response; top-level keys: %v",
			path, keypath.TopKeys(parsed, maxDiagnosticKeys))
	}

	return resolved, nil
}

// fetchBody retrieves the response body for url, going through the shared
// cache (and its in-flight dedup) when one is configured. Only successful
// bodies are returned; a non-2xx status is mapped to the canonical
// "HTTP <status>: <statusText>" error.
func (f *Fetcher) fetchBody(url string, headers map[string]string, timeout time.Duration) ([]byte, error) {
	do := func() ([]byte, error) {
		ctx := context.Background()

		if f.limiter != nil {
			if err := f.limiter.Wait(ctx, url); err != nil {
				return nil, err
			}
		}

		resp := f.client.Get(ctx, url, headers, timeout)
		if resp.Err != nil {
			return nil, resp.Err
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
		}
		return resp.Body, nil
	}

	if f.cache != nil {
		return f.cache.GetOrFetch(url, do)
	}
	return do()
}

// publish applies mut to the result and notifies the update callback with a
// snapshot. Publishing against a stopped fetcher is a no-op, which is what
// guards late in-flight completions after teardown.
func (f *Fetcher) publish(mut func(*Result)) {
	f.mu.Lock()
	if f.stopped {
		f.mu.Unlock()
		return
	}
	mut(&f.result)
	snapshot := f.result
	cb := f.onUpdate
	f.mu.Unlock()

	if cb != nil {
		cb(snapshot)
	}
}
