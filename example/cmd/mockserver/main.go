// Standalone mock server for testing the CLI.
//
// Usage:
//
//	go run ./example/cmd/mockserver
//
// Then in another terminal:
//
//	go run ./cmd/finboard serve -c example/config.yaml
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"time"
)

func main() {
	fmt.Println("Mock quote server starting on :9999")
	fmt.Println("Prices follow a random walk; every 25th request per symbol")
	fmt.Println("returns a rate-limit note to exercise error checks")
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	var (
		states = make(map[string]*quoteState)
		mu     sync.Mutex
	)

	http.HandleFunc("/query", func(w http.ResponseWriter, r *http.Request) {
		symbol := r.URL.Query().Get("symbol")
		if symbol == "" {
			symbol = "AAPL"
		}

		time.Sleep(time.Duration(30+rand.Intn(120)) * time.Millisecond)

		mu.Lock()
		state, exists := states[symbol]
		if !exists {
			state = &quoteState{price: 100.0, prevDay: 100.0}
			states[symbol] = state
		}

		state.requests++
		rateLimited := state.requests%25 == 0

		state.price *= 1 + (rand.Float64()-0.5)/100
		price := state.price
		prevDay := state.prevDay
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")

		if rateLimited {
			_ = json.NewEncoder(w).Encode(map[string]string{
				"Note": "Thank you for using our API! Our standard API rate limit is 25 requests per day.",
			})
			return
		}

		change := price - prevDay
		_ = json.NewEncoder(w).Encode(map[string]any{
			"Global Quote": map[string]string{
				"01. symbol":         symbol,
				"05. price":          fmt.Sprintf("%.4f", price),
				"08. previous close": fmt.Sprintf("%.4f", prevDay),
				"09. change":         fmt.Sprintf("%.4f", change),
				"10. change percent": fmt.Sprintf("%.4f%%", change/prevDay*100),
			},
		})
	})

	if err := http.ListenAndServe(":9999", nil); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

type quoteState struct {
	price    float64
	prevDay  float64
	requests int
}
