package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/finboard/finboard"
)

func main() {
	// start mock server (see mock_server.go)
	go StartMockQuoteServer(":9999")
	time.Sleep(100 * time.Millisecond)

	// grid API: 3 symbols from one declaration
	widgets, err := finboard.NewWidgetGrid("Quote",
		finboard.WithURLTemplate("http://localhost:9999/query?function=GLOBAL_QUOTE&symbol={{.symbol}}"),
		finboard.WithDimensions(map[string][]string{
			"symbol": {"AAPL", "MSFT", "GOOG"},
		}),
		finboard.WithGridPath("Global Quote.05. price"),
		finboard.WithGridErrorCheck(finboard.AlphaVantageErrorCheck),
	)
	if err != nil {
		slog.Error("failed to create widget grid", "error", err)
		os.Exit(1)
	}

	// a chart widget with its own refresh interval (overrides the global 5s)
	btc, _ := finboard.NewWidget("BTC", "http://localhost:9999/query?function=GLOBAL_QUOTE&symbol=BTC",
		finboard.WithPath("Global Quote.05. price"),
		finboard.WithKind(finboard.KindChart),
		finboard.WithRefreshInterval(2*time.Second),
	)
	widgets = append(widgets, btc)

	// a table widget showing the full quote object
	detail, _ := finboard.NewWidget("AAPL detail", "http://localhost:9999/query?function=GLOBAL_QUOTE&symbol=AAPL",
		finboard.WithPath("Global Quote"),
		finboard.WithKind(finboard.KindTable),
	)
	widgets = append(widgets, detail)

	// start the dashboard
	board, err := finboard.New(
		finboard.WithWidgets(widgets...),
		finboard.WithDefaultRefreshInterval(5*time.Second),
		finboard.WithPort(8080),
		finboard.WithCacheTTL(2*time.Second),
	)
	if err != nil {
		slog.Error("failed to create finboard", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  ╔═══════════════════════════════════════════════════════╗")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Finboard Demo                                       ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Open http://localhost:8080 in your browser          ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Widgets:                                            ║")
	fmt.Println("  ║   • 3 quote cards (via Grid)                          ║")
	fmt.Println("  ║   • 1 chart (BTC, 2s interval)                        ║")
	fmt.Println("  ║   • 1 table (full AAPL quote)                         ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Press Ctrl+C to stop                                ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ╚═══════════════════════════════════════════════════════╝")
	fmt.Println()

	// set up context with signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := board.Start(ctx); err != nil {
		slog.Error("finboard error", "error", err)
		os.Exit(1)
	}
}
