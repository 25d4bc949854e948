package fetch

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// testLogger returns a logger that discards all output for clean test output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// waitFor polls cond until it holds or the timeout elapses.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s", timeout)
}

func TestFetcher_SuccessCycle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Global Quote": {"05. price": "123.45", "09. change": "-1.23"}}`))
	}))
	defer server.Close()

	f := New(Config{
		Name:      "AAPL",
		URL:       server.URL,
		Path:      "Global Quote.05. price",
		AutoStart: true,
		Logger:    testLogger(),
	})
	defer f.Stop()

	waitFor(t, time.Second, func() bool {
		r := f.Result()
		return !r.Loading && r.Data != nil
	})

	r := f.Result()
	if r.Err != nil {
		t.Fatalf("unexpected error: %v", r.Err)
	}
	if r.Data != "123.45" {
		t.Errorf("Data = %#v, want %q", r.Data, "123.45")
	}
	if r.CheckedAt.IsZero() {
		t.Error("CheckedAt not set after a completed cycle")
	}
}

// TestFetcher_HTTPErrorKeepsStaleData verifies that a non-2xx response
// yields the canonical "HTTP <status>: <statusText>" error, leaves the
// previously fetched value in place, and resets the loading flag.
func TestFetcher_HTTPErrorKeepsStaleData(t *testing.T) {
	var fail atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"price": 42}`))
	}))
	defer server.Close()

	f := New(Config{
		URL:       server.URL,
		Path:      "price",
		AutoStart: true,
		Logger:    testLogger(),
	})
	defer f.Stop()

	waitFor(t, time.Second, func() bool {
		r := f.Result()
		return !r.Loading && r.Data != nil
	})

	fail.Store(true)
	f.Refetch()

	waitFor(t, time.Second, func() bool {
		return f.Result().Err != nil
	})

	r := f.Result()
	if got, want := r.Err.Error(), "HTTP 500: Internal Server Error"; got != want {
		t.Errorf("Err = %q, want %q", got, want)
	}
	if r.Data != float64(42) {
		t.Errorf("Data = %#v, want stale value 42", r.Data)
	}
	if r.Loading {
		t.Error("Loading still true after failed cycle")
	}
}

// TestFetcher_StopSuppressesLateUpdate verifies that a request still in
// flight when Stop is called cannot mutate the stopped fetcher's state.
func TestFetcher_StopSuppressesLateUpdate(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		_, _ = w.Write([]byte(`{"price": 42}`))
	}))
	defer server.Close()

	f := New(Config{
		URL:       server.URL,
		Path:      "price",
		AutoStart: true,
		Logger:    testLogger(),
	})

	<-entered
	f.Stop()
	close(release)

	// give the in-flight cycle time to complete and attempt its update
	time.Sleep(100 * time.Millisecond)

	r := f.Result()
	if r.Data != nil {
		t.Errorf("Data = %#v after Stop, want nil (no update after teardown)", r.Data)
	}
	if r.Err != nil {
		t.Errorf("Err = %v after Stop, want nil", r.Err)
	}
}

// TestFetcher_LastCompletedCycleWins verifies that consecutive successful
// cycles with different bodies leave the most recent value in place.
func TestFetcher_LastCompletedCycleWins(t *testing.T) {
	var counter atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"n": %d}`, counter.Add(1))
	}))
	defer server.Close()

	f := New(Config{
		URL:       server.URL,
		Path:      "n",
		AutoStart: true,
		Logger:    testLogger(),
	})
	defer f.Stop()

	waitFor(t, time.Second, func() bool {
		return f.Result().Data == float64(1)
	})

	f.Refetch()
	waitFor(t, time.Second, func() bool {
		return f.Result().Data == float64(2)
	})

	if r := f.Result(); r.Err != nil {
		t.Errorf("Err = %v after two successful cycles, want nil", r.Err)
	}
}

// TestFetcher_ReconfigureDisablesSchedule verifies that dropping the
// interval to zero tears down the recurring schedule.
func TestFetcher_ReconfigureDisablesSchedule(t *testing.T) {
	var count atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count.Add(1)
		_, _ = w.Write([]byte(`{"n": 1}`))
	}))
	defer server.Close()

	f := New(Config{
		URL:       server.URL,
		Path:      "n",
		Interval:  20 * time.Millisecond,
		AutoStart: true,
		Logger:    testLogger(),
	})
	defer f.Stop()

	waitFor(t, time.Second, func() bool { return count.Load() >= 3 })

	f.Reconfigure(server.URL, 0)

	// let any tick that fired before the teardown drain
	time.Sleep(100 * time.Millisecond)
	settled := count.Load()

	time.Sleep(200 * time.Millisecond)
	if got := count.Load(); got != settled {
		t.Errorf("requests continued after interval disabled: %d -> %d", settled, got)
	}
}

// TestFetcher_ReconfigureURLChange verifies that a URL change restarts the
// schedule against the new target and fetches it immediately.
func TestFetcher_ReconfigureURLChange(t *testing.T) {
	first := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"n": 1}`))
	}))
	defer first.Close()

	var secondHits atomic.Int64
	second := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		secondHits.Add(1)
		_, _ = w.Write([]byte(`{"n": 2}`))
	}))
	defer second.Close()

	f := New(Config{
		URL:       first.URL,
		Path:      "n",
		AutoStart: true,
		Logger:    testLogger(),
	})
	defer f.Stop()

	waitFor(t, time.Second, func() bool { return f.Result().Data == float64(1) })

	f.Reconfigure(second.URL, 0)

	waitFor(t, time.Second, func() bool { return f.Result().Data == float64(2) })
	if secondHits.Load() == 0 {
		t.Error("URL change did not trigger an immediate cycle")
	}
}

func TestFetcher_PathNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Meta Data": {}, "Note": "x"}`))
	}))
	defer server.Close()

	f := New(Config{
		URL:       server.URL,
		Path:      "Global Quote.05. price",
		AutoStart: true,
		Logger:    testLogger(),
	})
	defer f.Stop()

	waitFor(t, time.Second, func() bool { return f.Result().Err != nil })

	msg := f.Result().Err.Error()
	if !strings.Contains(msg, `"Global Quote.05. price"`) {
		t.Errorf("error %q does not name the path expression", msg)
	}
	// diagnostics should enumerate the response's top-level keys
	if !strings.Contains(msg, "Meta Data") || !strings.Contains(msg, "Note") {
		t.Errorf("error %q does not list top-level keys", msg)
	}
}

func TestFetcher_ParseError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	}))
	defer server.Close()

	f := New(Config{
		URL:       server.URL,
		AutoStart: true,
		Logger:    testLogger(),
	})
	defer f.Stop()

	waitFor(t, time.Second, func() bool { return f.Result().Err != nil })

	r := f.Result()
	if r.Data != nil {
		t.Errorf("Data = %#v after parse failure with no prior success, want nil", r.Data)
	}
	if r.Loading {
		t.Error("Loading still true after failed cycle")
	}
}

// TestFetcher_ProviderErrorCheck verifies that a rate-limit notice embedded
// in a 2xx body fails the cycle through the ordinary error channel.
func TestFetcher_ProviderErrorCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Note": "API call frequency exceeded"}`))
	}))
	defer server.Close()

	f := New(Config{
		URL:       server.URL,
		Path:      "Note",
		AutoStart: true,
		Logger:    testLogger(),
		ErrorCheck: func(body any) error {
			obj, ok := body.(map[string]any)
			if !ok {
				return nil
			}
			if note, ok := obj["Note"].(string); ok {
				return fmt.Errorf("provider error: %s", note)
			}
			return nil
		},
	})
	defer f.Stop()

	waitFor(t, time.Second, func() bool { return f.Result().Err != nil })

	if msg := f.Result().Err.Error(); !strings.Contains(msg, "API call frequency exceeded") {
		t.Errorf("Err = %q, want provider notice surfaced", msg)
	}
}

// TestFetcher_StartIdempotent verifies that repeated Start calls do not
// duplicate the immediate cycle.
func TestFetcher_StartIdempotent(t *testing.T) {
	var count atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count.Add(1)
		_, _ = w.Write([]byte(`{"n": 1}`))
	}))
	defer server.Close()

	f := New(Config{
		URL:    server.URL,
		Path:   "n",
		Logger: testLogger(),
	})
	defer f.Stop()

	f.Start()
	f.Start()
	f.Start()

	waitFor(t, time.Second, func() bool { return count.Load() >= 1 })
	time.Sleep(100 * time.Millisecond)

	if got := count.Load(); got != 1 {
		t.Errorf("requests = %d after repeated Start, want 1", got)
	}
}

// TestFetcher_EmptyURL verifies that a widget without a URL never fetches.
func TestFetcher_EmptyURL(t *testing.T) {
	f := New(Config{
		AutoStart: true,
		Interval:  10 * time.Millisecond,
		Logger:    testLogger(),
	})
	defer f.Stop()

	time.Sleep(50 * time.Millisecond)

	r := f.Result()
	if r.Loading || r.Data != nil || r.Err != nil {
		t.Errorf("Result = %+v for empty URL, want zero value", r)
	}
}

// TestFetcher_StopTwice verifies Stop is idempotent.
func TestFetcher_StopTwice(t *testing.T) {
	f := New(Config{URL: "http://example.invalid", Logger: testLogger()})
	f.Stop()
	f.Stop()
}

// TestFetcher_UpdateCallback verifies the callback observes the loading
// transition followed by the completed result.
func TestFetcher_UpdateCallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"n": 7}`))
	}))
	defer server.Close()

	updates := make(chan Result, 8)
	f := New(Config{
		URL:       server.URL,
		Path:      "n",
		AutoStart: true,
		Logger:    testLogger(),
		OnUpdate:  func(r Result) { updates <- r },
	})
	defer f.Stop()

	first := <-updates
	if !first.Loading {
		t.Errorf("first update Loading = false, want true")
	}

	second := <-updates
	if second.Loading {
		t.Error("second update still loading")
	}
	if second.Data != float64(7) {
		t.Errorf("second update Data = %#v, want 7", second.Data)
	}
}
