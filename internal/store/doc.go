// Package store keeps the latest fetch result per widget and publishes
// updates to subscribers.
//
// The main components are:
//
//   - [Store]: interface defining storage and subscription operations
//   - [MemoryStore]: in-memory implementation with pub/sub
//   - [WidgetResult]: JSON-shaped snapshot of one widget's latest cycle
//
// The store is designed for concurrent access. Subscribers receive updates
// via channels with non-blocking sends; a slow subscriber misses updates
// rather than blocking the board.
//
// Users of the finboard library should not need to interact with this
// package directly. Storage is managed internally by the Board.
package store
