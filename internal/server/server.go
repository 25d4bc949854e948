package server

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/finboard/finboard/internal/store"
)

const (
	// sseWriteTimeout is the maximum time allowed for a single SSE write
	// operation. This prevents goroutine leaks when clients are slow or
	// disconnected. Must be <= shutdown timeout to ensure clean shutdown.
	sseWriteTimeout = 5 * time.Second

	// defaultTitle is used when no custom title is configured.
	defaultTitle = "finboard"

	// titlePlaceholder is the marker in HTML that gets replaced with the
	// actual title.
	titlePlaceholder = "{{.Title}}"
)

// Refresher triggers an out-of-band fetch cycle for a widget ID, returning
// false when the ID is unknown. The board wires this to Fetcher.Refetch.
type Refresher func(id string) bool

// Server handles HTTP requests for the finboard dashboard and API.
//
// Server provides four endpoints:
//   - GET /: embedded dashboard page
//   - GET /api/widgets: all current widget results as JSON
//   - GET /api/events: Server-Sent Events stream of widget updates
//   - POST /api/widgets/{id}/refresh: manual refresh of one widget
//
// The server is designed for graceful shutdown via context cancellation.
type Server struct {
	store      store.Store
	refresh    Refresher
	port       int
	httpServer *http.Server
	assets     fs.FS
	title      string
	logger     *slog.Logger
}

// NewServer creates a new HTTP [Server].
//
// assets may be nil, in which case only the API routes are served. refresh
// may be nil, in which case the refresh endpoint answers 404 for every ID.
// The server is not started until [Server.Start] is called.
func NewServer(st store.Store, refresh Refresher, port int, assets fs.FS, title string, logger *slog.Logger) *Server {
	return &Server{
		store:   st,
		refresh: refresh,
		port:    port,
		assets:  assets,
		title:   title,
		logger:  logger,
	}
}

// Start begins serving HTTP requests in a background goroutine.
//
// Start is non-blocking and returns immediately after confirming the server
// is listening. The server runs until the context is cancelled, then shuts
// down gracefully with a 5-second timeout.
//
// Returns an error if the server fails to bind to the configured port.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/widgets", s.handleWidgets)
	mux.HandleFunc("GET /api/events", s.handleEvents)
	mux.HandleFunc("POST /api/widgets/{id}/refresh", s.handleRefresh)

	if s.assets != nil {
		mux.HandleFunc("GET /", s.handleDashboard)
	}

	// create listener first to verify port availability synchronously
	addr := fmt.Sprintf(":%d", s.port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind to port %d: %w", s.port, err)
	}

	s.httpServer = &http.Server{
		Handler: mux,
		// BaseContext derives all request contexts from the server context,
		// so cancellation also terminates long-running SSE handlers.
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("http server shutdown error", "error", err)
		}
	}()

	return nil
}

// handleDashboard serves the main dashboard page.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	content, err := fs.ReadFile(s.assets, "assets/index.html")
	if err != nil {
		http.Error(w, "Dashboard not found", http.StatusInternalServerError)
		return
	}

	// title substitution with HTML escaping to prevent XSS
	title := s.title
	if title == "" {
		title = defaultTitle
	}
	rendered := strings.ReplaceAll(string(content), titlePlaceholder, html.EscapeString(title))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err = w.Write([]byte(rendered)); err != nil {
		s.logger.Error("failed to write dashboard response", "error", err)
	}
}

// handleWidgets returns all current widget results as JSON.
func (s *Server) handleWidgets(w http.ResponseWriter, r *http.Request) {
	results := s.store.GetAll()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")

	if err := json.NewEncoder(w).Encode(results); err != nil {
		s.logger.Error("failed to encode widgets response", "error", err)
	}
}

// handleRefresh triggers an out-of-band fetch cycle for one widget.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if s.refresh == nil || !s.refresh(id) {
		http.Error(w, "Unknown widget", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// handleEvents streams widget updates via Server-Sent Events.
//
// Writes use deadlines to prevent goroutine leaks when clients are slow or
// disconnected: a blocked write would otherwise prevent the handler from
// detecting context cancellation or channel closure.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if _, ok := w.(http.Flusher); !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	rc := http.NewResponseController(w)

	// write deadlines may not be supported by every ResponseWriter impl
	deadlinesSupported := true

	writeAndFlush := func(data []byte) error {
		if deadlinesSupported {
			if err := rc.SetWriteDeadline(time.Now().Add(sseWriteTimeout)); err != nil {
				s.logger.Warn("sse write deadlines not supported", "error", err)
				deadlinesSupported = false
			}
		}

		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return err
		}

		// ResponseController.Flush respects the write deadline
		return rc.Flush()
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	ch := s.store.Subscribe()
	defer s.store.Unsubscribe(ch)

	// send the current snapshot first so clients render without waiting
	// for the next poll cycle
	for _, result := range s.store.GetAll() {
		data, err := json.Marshal(result)
		if err != nil {
			continue
		}
		if err := writeAndFlush(data); err != nil {
			return
		}
	}

	for {
		select {
		case result, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(result)
			if err != nil {
				continue
			}
			if err := writeAndFlush(data); err != nil {
				return
			}

		case <-r.Context().Done():
			// fires on both client disconnect and server shutdown
			return
		}
	}
}
