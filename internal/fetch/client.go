package fetch

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"resty.dev/v3"
)

const maxResponseBodySize = 1 << 20 // 1MB

// connection pooling limits to prevent resource exhaustion when many widgets
// poll the same handful of providers
const (
	defaultMaxIdleConns        = 100
	defaultMaxIdleConnsPerHost = 10
	defaultMaxConnsPerHost     = 10
	defaultIdleConnTimeout     = 60 * time.Second
)

// Response holds the outcome of a single HTTP GET made by [Client].
type Response struct {
	// Body contains the response body, limited to 1MB.
	Body []byte

	// StatusCode is the HTTP status code. Zero if the request failed
	// before a response was received.
	StatusCode int

	// Latency is the total time taken for the request.
	Latency time.Duration

	// Err contains any transport-level error. nil means a response was
	// received, though its status code may still indicate failure.
	Err error
}

// Client is the HTTP client used by widget fetchers.
//
// It is a thin wrapper over resty configured for polling workloads:
// connection pooling limits, a 1MB response body cap, and per-request
// timeouts applied via context rather than a global client timeout.
type Client struct {
	rc *resty.Client
}

// NewClient creates a [Client] ready for concurrent use by any number of
// fetchers.
func NewClient() *Client {
	rc := resty.New().
		SetHeader("Accept", "application/json").
		SetTransport(&http.Transport{
			MaxIdleConns:        defaultMaxIdleConns,
			MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
			MaxConnsPerHost:     defaultMaxConnsPerHost,
			IdleConnTimeout:     defaultIdleConnTimeout,
		}).
		SetResponseBodyLimit(maxResponseBodySize)

	return &Client{rc: rc}
}

// Get performs an HTTP GET and returns a structured [Response].
//
// The timeout is applied via context cancellation; a timeout of zero means
// the request runs until the transport gives up. Get always returns a
// Response; errors are captured in the Err field rather than returned
// separately, which keeps cycle code in the fetcher linear.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string, timeout time.Duration) Response {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()

	req := c.rc.R().SetContext(ctx)
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}

	resp, err := req.Get(url)
	if err != nil {
		return Response{
			Latency: time.Since(start),
			Err:     fmt.Errorf("request failed: %w", err),
		}
	}

	return Response{
		Body:       resp.Bytes(),
		StatusCode: resp.StatusCode(),
		Latency:    time.Since(start),
	}
}

// Close releases idle connections held by the client's pool. The client
// remains usable afterwards; new connections are established as needed.
func (c *Client) Close() {
	if c == nil || c.rc == nil {
		return
	}
	_ = c.rc.Close()
}
