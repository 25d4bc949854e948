package finboard

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestNew_Valid(t *testing.T) {
	w, _ := NewWidget("Test", "https://example.com")

	board, err := New(WithWidget(w))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if len(board.Widgets()) != 1 {
		t.Errorf("len(Widgets()) = %v, want %v", len(board.Widgets()), 1)
	}
}

func TestNew_NoWidgets(t *testing.T) {
	_, err := New()
	if err == nil {
		t.Error("New() expected error for no widgets, got nil")
	}
}

func TestNew_DuplicateWidgetNames(t *testing.T) {
	w1, _ := NewWidget("Quote", "https://api1.example.com")
	w2, _ := NewWidget("Quote", "https://api2.example.com") // same name, different URL

	_, err := New(
		WithWidget(w1),
		WithWidget(w2),
	)
	if err == nil {
		t.Error("New() expected error for duplicate widget names, got nil")
	}
	if err != nil && !strings.Contains(err.Error(), "duplicate widget name") {
		t.Errorf("New() error = %v, want error containing 'duplicate widget name'", err)
	}
}

func TestNew_DuplicateWidgetNames_WithWidgets(t *testing.T) {
	w1, _ := NewWidget("Quote", "https://api1.example.com")
	w2, _ := NewWidget("Price", "https://api2.example.com")
	w3, _ := NewWidget("Quote", "https://api3.example.com") // duplicate of first

	_, err := New(
		WithWidgets(w1, w2, w3),
	)
	if err == nil {
		t.Error("New() expected error for duplicate widget names via WithWidgets, got nil")
	}
}

func TestNew_Defaults(t *testing.T) {
	w, _ := NewWidget("Test", "https://example.com")

	board, err := New(WithWidget(w))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if board.Port() != 8080 {
		t.Errorf("Port() = %v, want %v", board.Port(), 8080)
	}
	if board.DefaultRefreshInterval() != 30*time.Second {
		t.Errorf("DefaultRefreshInterval() = %v, want %v", board.DefaultRefreshInterval(), 30*time.Second)
	}
}

func TestWithWidget(t *testing.T) {
	w1, _ := NewWidget("Test1", "https://example1.com")
	w2, _ := NewWidget("Test2", "https://example2.com")

	board, err := New(
		WithWidget(w1),
		WithWidget(w2),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if len(board.Widgets()) != 2 {
		t.Errorf("len(Widgets()) = %v, want %v", len(board.Widgets()), 2)
	}
}

func TestWithWidgets(t *testing.T) {
	w1, _ := NewWidget("Test1", "https://example1.com")
	w2, _ := NewWidget("Test2", "https://example2.com")
	w3, _ := NewWidget("Test3", "https://example3.com")

	board, err := New(
		WithWidgets(w1, w2, w3),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if len(board.Widgets()) != 3 {
		t.Errorf("len(Widgets()) = %v, want %v", len(board.Widgets()), 3)
	}
}

func TestWithDefaultRefreshInterval(t *testing.T) {
	w, _ := NewWidget("Test", "https://example.com")

	board, err := New(
		WithWidget(w),
		WithDefaultRefreshInterval(time.Minute),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if board.DefaultRefreshInterval() != time.Minute {
		t.Errorf("DefaultRefreshInterval() = %v, want %v", board.DefaultRefreshInterval(), time.Minute)
	}
}

func TestWithDefaultRefreshInterval_Invalid(t *testing.T) {
	w, _ := NewWidget("Test", "https://example.com")

	tests := []struct {
		name     string
		interval time.Duration
	}{
		{"zero", 0},
		{"negative", -1 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(
				WithWidget(w),
				WithDefaultRefreshInterval(tt.interval),
			)
			if err == nil {
				t.Errorf("New() expected error for interval %v, got nil", tt.interval)
			}
		})
	}
}

func TestWithPort(t *testing.T) {
	w, _ := NewWidget("Test", "https://example.com")

	board, err := New(
		WithWidget(w),
		WithPort(9090),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if board.Port() != 9090 {
		t.Errorf("Port() = %v, want %v", board.Port(), 9090)
	}
}

func TestWithPort_Invalid(t *testing.T) {
	w, _ := NewWidget("Test", "https://example.com")

	tests := []struct {
		name string
		port int
	}{
		{"zero", 0},
		{"negative", -1},
		{"too high", 65536},
		{"way too high", 100000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(
				WithWidget(w),
				WithPort(tt.port),
			)
			if err == nil {
				t.Errorf("New() expected error for port %v, got nil", tt.port)
			}
		})
	}
}

func TestWithPort_ValidEdgeCases(t *testing.T) {
	w, _ := NewWidget("Test", "https://example.com")

	tests := []struct {
		name string
		port int
	}{
		{"minimum", 1},
		{"maximum", 65535},
		{"common http", 80},
		{"common https", 443},
		{"common alt", 8080},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board, err := New(
				WithWidget(w),
				WithPort(tt.port),
			)
			if err != nil {
				t.Errorf("New() unexpected error for port %v: %v", tt.port, err)
			}
			if board.Port() != tt.port {
				t.Errorf("Port() = %v, want %v", board.Port(), tt.port)
			}
		})
	}
}

func TestWithCacheTTL(t *testing.T) {
	w, _ := NewWidget("Test", "https://example.com")

	board, err := New(
		WithWidget(w),
		WithCacheTTL(30*time.Second),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if board.cacheTTL != 30*time.Second {
		t.Errorf("cacheTTL = %v, want %v", board.cacheTTL, 30*time.Second)
	}
}

func TestWithCacheTTL_Negative(t *testing.T) {
	w, _ := NewWidget("Test", "https://example.com")

	_, err := New(
		WithWidget(w),
		WithCacheTTL(-1*time.Second),
	)
	if err == nil {
		t.Error("New() expected error for negative cache TTL, got nil")
	}
}

func TestWithHostRateLimit(t *testing.T) {
	w, _ := NewWidget("Test", "https://example.com")

	board, err := New(
		WithWidget(w),
		WithHostRateLimit(5.0/60.0, 1),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if board.hostRPS != 5.0/60.0 {
		t.Errorf("hostRPS = %v, want %v", board.hostRPS, 5.0/60.0)
	}
	if board.hostBurst != 1 {
		t.Errorf("hostBurst = %v, want %v", board.hostBurst, 1)
	}
}

func TestWithHostRateLimit_Negative(t *testing.T) {
	w, _ := NewWidget("Test", "https://example.com")

	_, err := New(
		WithWidget(w),
		WithHostRateLimit(-1, 1),
	)
	if err == nil {
		t.Error("New() expected error for negative rate, got nil")
	}
}

func TestWidgets_Immutability(t *testing.T) {
	w, _ := NewWidget("Test", "https://example.com")

	board, err := New(WithWidget(w))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// get widgets and modify the slice
	widgets := board.Widgets()
	originalLen := len(widgets)

	w2, _ := NewWidget("Test2", "https://example2.com")
	_ = append(widgets, w2) // intentionally unused, testing immutability

	// original should be unchanged
	if len(board.Widgets()) != originalLen {
		t.Error("Widgets() mutation affected original Board")
	}
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	w, _ := NewWidget("Test", "https://example.com")

	board, err := New(
		WithWidget(w),
		WithLogger(logger),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// verify Board was created successfully
	if board == nil {
		t.Fatal("New() returned nil Board")
	}
}

func TestWithLogger_Nil(t *testing.T) {
	w, _ := NewWidget("Test", "https://example.com")

	_, err := New(
		WithWidget(w),
		WithLogger(nil),
	)
	if err == nil {
		t.Error("New() expected error for nil logger, got nil")
	}
	if err != nil && !strings.Contains(err.Error(), "logger cannot be nil") {
		t.Errorf("New() error = %v, want error containing 'logger cannot be nil'", err)
	}
}

func TestWithLogger_DefaultsToSlogDefault(t *testing.T) {
	w, _ := NewWidget("Test", "https://example.com")

	// create without explicit logger
	board, err := New(WithWidget(w))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// should work without explicit logger (defaults to slog.Default())
	if board == nil {
		t.Fatal("New() returned nil Board")
	}
}

func TestWithTitle(t *testing.T) {
	w, _ := NewWidget("Test", "https://example.com")

	board, err := New(
		WithWidget(w),
		WithTitle("Portfolio Overview"),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if board.title != "Portfolio Overview" {
		t.Errorf("title = %q, want %q", board.title, "Portfolio Overview")
	}
}

func TestWithTitle_DefaultsToEmpty(t *testing.T) {
	w, _ := NewWidget("Test", "https://example.com")

	// create without explicit title
	board, err := New(WithWidget(w))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// title should be empty string when not configured
	// (defaults to "finboard" at render time)
	if board.title != "" {
		t.Errorf("title = %q, want empty string", board.title)
	}
}
