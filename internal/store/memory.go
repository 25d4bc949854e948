package store

import (
	"sort"
	"sync"
)

// subscriberBuffer is the per-subscriber channel capacity. Updates beyond a
// full buffer are dropped for that subscriber rather than blocking the board.
const subscriberBuffer = 100

// MemoryStore is an in-memory implementation of [Store].
//
// Widget results are keyed by widget ID, with new results replacing previous
// values. Subscribers receive updates via buffered channels with
// non-blocking sends.
type MemoryStore struct {
	mu      sync.RWMutex
	results map[string]WidgetResult

	subMu       sync.RWMutex
	subscribers map[chan WidgetResult]struct{}
}

// NewMemoryStore creates a new in-memory [Store] implementation.
//
// The store is immediately ready for use. No cleanup is required when done.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		results:     make(map[string]WidgetResult),
		subscribers: make(map[chan WidgetResult]struct{}),
	}
}

// Update stores a [WidgetResult] and notifies all subscribers.
func (m *MemoryStore) Update(result WidgetResult) {
	m.mu.Lock()
	m.results[result.ID] = result
	m.mu.Unlock()

	m.notifySubscribers(result)
}

// Get returns the stored result for a widget ID.
func (m *MemoryStore) Get(id string) (WidgetResult, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.results[id]
	return r, ok
}

// GetAll returns a snapshot of all stored results, sorted by widget name
// (ID as tiebreaker) for stable dashboard ordering.
func (m *MemoryStore) GetAll() []WidgetResult {
	m.mu.RLock()
	results := make([]WidgetResult, 0, len(m.results))
	for _, r := range m.results {
		results = append(results, r)
	}
	m.mu.RUnlock()

	sort.Slice(results, func(i, j int) bool {
		if results[i].Name != results[j].Name {
			return results[i].Name < results[j].Name
		}
		return results[i].ID < results[j].ID
	})
	return results
}

// Subscribe creates a new subscription and returns a channel for receiving
// updates. Caller must call [MemoryStore.Unsubscribe] when done to prevent
// resource leaks.
func (m *MemoryStore) Subscribe() <-chan WidgetResult {
	ch := make(chan WidgetResult, subscriberBuffer)

	m.subMu.Lock()
	m.subscribers[ch] = struct{}{}
	m.subMu.Unlock()

	return ch
}

// Unsubscribe removes a subscription and closes its channel. Safe to call
// multiple times or with an unknown channel.
func (m *MemoryStore) Unsubscribe(ch <-chan WidgetResult) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	for subCh := range m.subscribers {
		if subCh == ch {
			delete(m.subscribers, subCh)
			close(subCh)
			break
		}
	}
}

// notifySubscribers sends the result to all active subscribers without
// blocking; a full subscriber buffer drops the message for that subscriber.
func (m *MemoryStore) notifySubscribers(result WidgetResult) {
	m.subMu.RLock()
	defer m.subMu.RUnlock()

	for ch := range m.subscribers {
		select {
		case ch <- result:
		default:
			// subscriber is slow, drop the message
		}
	}
}
