package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"sync"
	"time"
)

// quoteState tracks the random-walk price for a single symbol.
type quoteState struct {
	price    float64
	prevDay  float64
	requests int
}

// startingPrices seed the random walk per symbol so the demo looks plausible.
var startingPrices = map[string]float64{
	"AAPL": 190.0,
	"MSFT": 420.0,
	"GOOG": 165.0,
	"BTC":  64000.0,
}

// StartMockQuoteServer runs a mock market data endpoint in the Alpha Vantage
// Global Quote format. Prices follow a small random walk per symbol, and
// every 25th request for a symbol returns a rate-limit note instead of data,
// which exercises provider error detection.
// Call this in a goroutine before creating finboard widgets.
func StartMockQuoteServer(addr string) {
	var (
		states = make(map[string]*quoteState)
		mu     sync.Mutex
	)

	http.HandleFunc("/query", func(w http.ResponseWriter, r *http.Request) {
		symbol := r.URL.Query().Get("symbol")
		if symbol == "" {
			symbol = "AAPL"
		}

		// simulate small latency variance
		time.Sleep(time.Duration(30+rand.Intn(120)) * time.Millisecond)

		mu.Lock()
		state, exists := states[symbol]
		if !exists {
			start := startingPrices[symbol]
			if start == 0 {
				start = 100.0
			}
			state = &quoteState{price: start, prevDay: start}
			states[symbol] = state
		}

		state.requests++
		rateLimited := state.requests%25 == 0

		// random walk: drift up to ±0.5% per request
		state.price *= 1 + (rand.Float64()-0.5)/100
		price := state.price
		prevDay := state.prevDay
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")

		if rateLimited {
			// in-body provider error with a 200 status, as the real API does
			_ = json.NewEncoder(w).Encode(map[string]string{
				"Note": "Thank you for using our API! Our standard API rate limit is 25 requests per day.",
			})
			return
		}

		change := price - prevDay
		resp := map[string]any{
			"Global Quote": map[string]string{
				"01. symbol":         symbol,
				"05. price":          fmt.Sprintf("%.4f", price),
				"08. previous close": fmt.Sprintf("%.4f", prevDay),
				"09. change":         fmt.Sprintf("%.4f", change),
				"10. change percent": fmt.Sprintf("%.4f%%", change/prevDay*100),
			},
		}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			slog.Error("failed to write response", "error", err)
		}
	})

	if err := http.ListenAndServe(addr, nil); err != nil {
		slog.Error("mock server error", "error", err)
	}
}
