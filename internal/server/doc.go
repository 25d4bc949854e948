// Package server provides the HTTP server for the finboard dashboard and API.
//
// This package is internal to finboard and handles all HTTP concerns:
//
//   - Dashboard serving: Serves the embedded HTML/CSS/JS dashboard at "/"
//   - REST API: JSON snapshot of all widgets at "/api/widgets"
//   - Server-Sent Events: Real-time widget updates at "/api/events"
//   - Manual refresh: POST "/api/widgets/{id}/refresh" triggers an
//     immediate fetch cycle for a single widget
//
// The server supports graceful shutdown via context cancellation, with a
// 5-second timeout for in-flight requests.
//
// Users of the finboard library should not need to interact with this
// package directly. The server is started automatically by [finboard.Board.Start].
package server
