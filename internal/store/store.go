package store

import "time"

// WidgetResult is the storage representation of one widget's latest fetch
// outcome, shaped for JSON serialization (REST API and SSE).
type WidgetResult struct {
	// ID is the widget's unique identifier.
	ID string `json:"id"`

	// Name is the widget's display name.
	Name string `json:"name"`

	// Kind is the widget's rendering hint: "card", "table", or "chart".
	Kind string `json:"kind"`

	// URL is the endpoint the widget polls.
	URL string `json:"url"`

	// Path is the widget's key path expression.
	Path string `json:"path"`

	// Loading reports whether a fetch cycle is currently in flight.
	Loading bool `json:"loading"`

	// Data is the most recently resolved value; stale-but-present while
	// Error is set, nil if no cycle ever succeeded.
	Data any `json:"data"`

	// Error is the last cycle's failure message, nil on success.
	Error *string `json:"error"`

	// CheckedAt is the completion time of the most recent cycle.
	CheckedAt time.Time `json:"checked_at"`
}

// Store defines the interface for storing and subscribing to widget updates.
//
// Store implementations must be safe for concurrent access. The pub/sub
// mechanism pushes real-time updates to connected dashboard clients.
type Store interface {
	// Update stores a widget result and notifies all subscribers.
	// Results are keyed by ID; subsequent updates replace previous values.
	Update(result WidgetResult)

	// Get returns the stored result for a widget ID.
	Get(id string) (WidgetResult, bool)

	// GetAll returns a snapshot of all stored results, ordered by name.
	GetAll() []WidgetResult

	// Subscribe returns a buffered channel of updates. Slow consumers may
	// miss updates. Caller must Unsubscribe when done.
	Subscribe() <-chan WidgetResult

	// Unsubscribe removes a subscription and closes its channel.
	// Safe to call with a channel that was already unsubscribed.
	Unsubscribe(ch <-chan WidgetResult)
}
