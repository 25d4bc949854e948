package finboard

import (
	"errors"
	"net/url"
	"time"

	"github.com/google/uuid"
)

const defaultWidgetTimeout = 10 * time.Second

// Widget represents one dashboard tile: a JSON endpoint to poll and a key
// path to resolve against each response.
//
// Widget is immutable after creation via [NewWidget]. All fields are private
// with getter methods that return copies of mutable data (maps), ensuring
// the widget cannot be modified after construction.
//
// Widgets are configured using the functional options pattern with
// [WidgetOption] functions such as [WithPath], [WithRefreshInterval],
// [WithWidgetTimeout], [WithWidgetHeaders], [WithKind], and [WithErrorCheck].
type Widget struct {
	id          string
	name        string
	url         string
	path        string
	kind        Kind
	headers     map[string]string
	timeout     time.Duration
	interval    time.Duration
	intervalSet bool
	errorCheck  ErrorCheck
}

// ID returns the widget's unique identifier, generated at construction.
// The ID keys the widget in the store, the REST API, and manual refreshes.
func (w Widget) ID() string {
	return w.id
}

// Name returns the widget's display name.
// The name is used for identification in the dashboard and logs.
func (w Widget) Name() string {
	return w.name
}

// URL returns the widget's target URL as a string.
// This is the JSON endpoint that will be polled.
func (w Widget) URL() string {
	return w.url
}

// Path returns the widget's key path expression.
// An empty path addresses the whole response body.
func (w Widget) Path() string {
	return w.path
}

// Kind returns the widget's rendering hint.
// Defaults to [KindCard] if not explicitly set via [WithKind].
func (w Widget) Kind() Kind {
	return w.kind
}

// Headers returns a copy of the widget's custom HTTP headers.
// These headers are sent with every fetch request for this widget.
func (w Widget) Headers() map[string]string {
	return copyMap(w.headers)
}

// Timeout returns the widget's HTTP request timeout.
// Defaults to 10 seconds if not explicitly set via [WithWidgetTimeout].
func (w Widget) Timeout() time.Duration {
	return w.timeout
}

// RefreshInterval returns the widget's custom refresh interval and whether
// one was explicitly set. When unset, the board's default interval applies
// (see [WithDefaultRefreshInterval]). An explicit zero disables the
// recurring schedule for this widget; it then refreshes only on startup and
// manual refresh.
func (w Widget) RefreshInterval() (time.Duration, bool) {
	return w.interval, w.intervalSet
}

// ErrorCheck returns the widget's provider error predicate.
// Returns nil if no check was specified, meaning 2xx bodies are trusted.
func (w Widget) ErrorCheck() ErrorCheck {
	return w.errorCheck
}

// NewWidget creates a [Widget] with the given name, URL, and options.
//
// The name parameter is a human-readable label displayed in the dashboard.
// The rawURL parameter must be a valid URL with a scheme (http:// or
// https://) and must already carry any query parameters the provider needs,
// API keys included. A unique widget ID is generated automatically.
//
// Options are applied in order using the functional options pattern.
// See [WithPath], [WithRefreshInterval], [WithWidgetTimeout],
// [WithWidgetHeaders], [WithKind], and [WithErrorCheck].
//
// Returns an error if the name is empty or the URL is invalid.
//
// Example:
//
//	w, err := finboard.NewWidget("AAPL", "https://www.alphavantage.co/query?function=GLOBAL_QUOTE&symbol=AAPL&apikey=demo",
//	    finboard.WithPath("Global Quote.05. price"),
//	    finboard.WithRefreshInterval(time.Minute),
//	)
func NewWidget(name, rawURL string, opts ...WidgetOption) (Widget, error) {
	if name == "" {
		return Widget{}, errors.New("widget name cannot be empty")
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return Widget{}, errors.New("invalid URL: " + err.Error())
	}
	if parsedURL.Scheme == "" {
		return Widget{}, errors.New("URL must have a scheme (http:// or https://)")
	}

	cfg := &widgetConfig{
		headers: make(map[string]string),
		kind:    KindCard,
		timeout: defaultWidgetTimeout,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return Widget{}, err
		}
	}

	return Widget{
		id:          uuid.NewString(),
		name:        name,
		url:         rawURL,
		path:        cfg.path,
		kind:        cfg.kind,
		headers:     cfg.headers,
		timeout:     cfg.timeout,
		interval:    cfg.interval,
		intervalSet: cfg.intervalSet,
		errorCheck:  cfg.errorCheck,
	}, nil
}

// copyMap returns a shallow copy of the map.
func copyMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	cp := make(map[string]string, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}
