// Package finboard provides a lightweight, embeddable dashboard for polling
// JSON finance APIs and displaying extracted values in real-time.
//
// finboard is designed as an SDK-first library, allowing developers to
// programmatically configure and deploy dashboards as part of their
// applications. Each widget names a JSON endpoint and a key path; finboard
// polls the endpoint on its own schedule, resolves the path against each
// response, and publishes the value with loading and error state. It follows
// functional programming principles with immutable types, pure functions,
// and composable configuration via the functional options pattern.
//
// # Quick Start
//
// Create widgets and start the dashboard with graceful shutdown:
//
//	w, _ := finboard.NewWidget("AAPL", "https://www.alphavantage.co/query?function=GLOBAL_QUOTE&symbol=AAPL&apikey=demo",
//	    finboard.WithPath("Global Quote.05. price"),
//	)
//	board, _ := finboard.New(finboard.WithWidget(w))
//
//	// Set up graceful shutdown on SIGINT/SIGTERM
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	board.Start(ctx) // blocks until context is cancelled
//
// # Configuration
//
// finboard uses the functional options pattern for configuration:
//
//	board, err := finboard.New(
//	    finboard.WithWidget(w1),
//	    finboard.WithWidget(w2),
//	    finboard.WithDefaultRefreshInterval(time.Minute),
//	    finboard.WithPort(9090),
//	    finboard.WithCacheTTL(30 * time.Second),
//	    finboard.WithHostRateLimit(5.0/60.0, 1),
//	)
//
// Widgets can also be configured with options:
//
//	w, err := finboard.NewWidget("BTC", "https://api.coingecko.com/api/v3/simple/price?ids=bitcoin&vs_currencies=usd",
//	    finboard.WithPath("bitcoin.usd"),
//	    finboard.WithRefreshInterval(10 * time.Second),
//	    finboard.WithWidgetHeaders("Authorization", "Bearer token"),
//	    finboard.WithKind(finboard.KindCard),
//	)
//
// # Key Paths
//
// Paths use dot notation with optional bracket indices:
//
//	"Global Quote.05. price"   nested object fields, dotted keys included
//	"quotes[0].bid"            array element, then field
//	""                         the whole response body
//
// Resolution prefers exact key matches, so provider keys that contain dots
// (common in Alpha Vantage responses) need no escaping. See the keypath
// package for the full rules.
//
// # Provider Error Checks
//
// Some finance APIs report failures inside 200 OK bodies. Error checks
// inspect each parsed response before path resolution:
//
//   - [FieldErrorCheck]: Fails when named top-level keys carry a message
//   - [AlphaVantageErrorCheck]: Alpha Vantage's "Error Message"/"Note"/"Information" keys
//   - [FirstErrorCheck]: Tries multiple checks in order, returning the first failure
//
// Custom checks can be created by implementing the [ErrorCheck] function type.
//
// # Architecture
//
// finboard consists of several packages:
//
//   - keypath: Key path resolution against parsed JSON
//   - internal/fetch: Per-widget fetchers with shared cache and rate limiter
//   - internal/store: In-memory storage with pub/sub for real-time updates
//   - internal/server: HTTP server with REST API and Server-Sent Events
//   - dashboard: Embedded web UI assets
//
// The internal packages are not part of the public API and may change
// without notice. The library is designed for single-binary deployment
// using Go's embed directive for static assets.
package finboard
