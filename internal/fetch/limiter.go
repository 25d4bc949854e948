package fetch

import (
	"context"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// HostLimiter throttles outbound requests per target host.
//
// Free-tier finance APIs enforce aggressive rate limits (Alpha Vantage
// allows 5 requests per minute), and a board full of widgets pointed at the
// same provider will trip them immediately without throttling. HostLimiter
// maintains one token bucket per host, all sharing the same rate.
//
// Like [Cache], it is an explicit object passed by reference to the
// fetchers that share it, never a package-level singleton.
type HostLimiter struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewHostLimiter creates a [HostLimiter] allowing rps requests per second
// per host with the given burst. Returns nil when rps is not positive,
// which callers treat as "no throttling".
func NewHostLimiter(rps float64, burst int) *HostLimiter {
	if rps <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &HostLimiter{
		limit:    rate.Limit(rps),
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Wait blocks until the bucket for rawURL's host permits a request, or the
// context is cancelled. URLs that fail to parse are throttled under their
// raw string so a malformed widget cannot bypass the limiter.
func (l *HostLimiter) Wait(ctx context.Context, rawURL string) error {
	key := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		key = u.Host
	}

	l.mu.Lock()
	lim, ok := l.limiters[key]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[key] = lim
	}
	l.mu.Unlock()

	return lim.Wait(ctx)
}
