package finboard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// TestStart_BlocksUntilContextCancelled verifies that Start blocks until the
// provided context is cancelled.
func TestStart_BlocksUntilContextCancelled(t *testing.T) {
	// create a mock server to avoid real network calls
	ts := httptest.NewServer(quoteHandler())
	defer ts.Close()

	w, err := NewWidget("Test", ts.URL, WithPath("Global Quote.05. price"))
	if err != nil {
		t.Fatalf("NewWidget() error = %v", err)
	}

	// use a high port to avoid conflicts
	board, err := New(
		WithWidget(w),
		WithPort(19001),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	started := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		close(started)
		done <- board.Start(ctx)
	}()

	// wait for Start to begin
	<-started
	time.Sleep(50 * time.Millisecond)

	// verify Start is still blocking (channel should be empty)
	select {
	case err := <-done:
		t.Fatalf("Start() returned early with error: %v", err)
	default:
		// expected: still blocking
	}

	// cancel context
	cancel()

	// Start should return within reasonable time
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start() did not return after context cancellation")
	}
}

// TestStart_ReturnsImmediatelyIfContextAlreadyCancelled verifies that Start
// returns immediately if the context is already cancelled.
func TestStart_ReturnsImmediatelyIfContextAlreadyCancelled(t *testing.T) {
	ts := httptest.NewServer(quoteHandler())
	defer ts.Close()

	w, err := NewWidget("Test", ts.URL)
	if err != nil {
		t.Fatalf("NewWidget() error = %v", err)
	}

	board, err := New(
		WithWidget(w),
		WithPort(19002),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// create already-cancelled context
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() {
		done <- board.Start(ctx)
	}()

	// should return quickly since context is already cancelled
	select {
	case err := <-done:
		if err != nil {
			t.Logf("Start() returned error (acceptable): %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Start() did not return with already-cancelled context")
	}
}

// TestStart_ServesWidgetsAPI verifies the REST API reflects fetched widget
// data while the board is running.
func TestStart_ServesWidgetsAPI(t *testing.T) {
	ts := httptest.NewServer(quoteHandler())
	defer ts.Close()

	w, err := NewWidget("AAPL", ts.URL, WithPath("Global Quote.05. price"))
	if err != nil {
		t.Fatalf("NewWidget() error = %v", err)
	}

	board, err := New(
		WithWidget(w),
		WithPort(19003),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- board.Start(ctx)
	}()

	// give the initial fetch time to land
	time.Sleep(300 * time.Millisecond)

	resp, err := http.Get("http://localhost:19003/api/widgets")
	if err != nil {
		cancel()
		t.Fatalf("GET /api/widgets error = %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /api/widgets status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Start() did not return after context cancellation")
	}
}

// TestStart_MultipleSequentialRuns verifies that a new Board can be started
// after the previous one shuts down.
func TestStart_MultipleSequentialRuns(t *testing.T) {
	ts := httptest.NewServer(quoteHandler())
	defer ts.Close()

	for i := 0; i < 3; i++ {
		w, err := NewWidget("Test", ts.URL)
		if err != nil {
			t.Fatalf("iteration %d: NewWidget() error = %v", i, err)
		}

		board, err := New(
			WithWidget(w),
			WithPort(19004+i),
		)
		if err != nil {
			t.Fatalf("iteration %d: New() error = %v", i, err)
		}

		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan error, 1)
		go func() {
			done <- board.Start(ctx)
		}()

		time.Sleep(100 * time.Millisecond)
		cancel()

		select {
		case err := <-done:
			if err != nil {
				t.Errorf("iteration %d: Start() returned error: %v", i, err)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("iteration %d: Start() did not return", i)
		}
	}
}

// TestStart_ConcurrentAccess verifies Start is safe with concurrent access patterns.
func TestStart_ConcurrentAccess(t *testing.T) {
	ts := httptest.NewServer(quoteHandler())
	defer ts.Close()

	w, err := NewWidget("Test", ts.URL)
	if err != nil {
		t.Fatalf("NewWidget() error = %v", err)
	}

	board, err := New(
		WithWidget(w),
		WithPort(19010),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup

	// start the server
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = board.Start(ctx)
	}()

	time.Sleep(100 * time.Millisecond)

	// concurrent calls to read accessors shouldn't panic
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = board.Widgets()
			_ = board.Port()
			_ = board.DefaultRefreshInterval()
		}()
	}

	time.Sleep(50 * time.Millisecond)
	cancel()

	// wait for all goroutines with timeout
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		// success
	case <-time.After(5 * time.Second):
		t.Fatal("goroutines did not complete")
	}
}

// TestStart_WithTimeoutContext verifies Start respects deadline contexts.
func TestStart_WithTimeoutContext(t *testing.T) {
	ts := httptest.NewServer(quoteHandler())
	defer ts.Close()

	w, err := NewWidget("Test", ts.URL)
	if err != nil {
		t.Fatalf("NewWidget() error = %v", err)
	}

	board, err := New(
		WithWidget(w),
		WithPort(19011),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// context with 200ms timeout
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	err = board.Start(ctx)
	elapsed := time.Since(start)

	// should have run for approximately 200ms (with some tolerance)
	if elapsed < 150*time.Millisecond || elapsed > 500*time.Millisecond {
		t.Errorf("Start() ran for %v, expected ~200ms", elapsed)
	}

	if err != nil {
		t.Logf("Start() returned error (may be acceptable): %v", err)
	}
}
