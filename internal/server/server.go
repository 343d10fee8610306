// Package server provides the HTTP server for the atomic mesh viewer.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/ayusman/atomesh/internal/app"
	"github.com/ayusman/atomesh/internal/server/api"
	"github.com/ayusman/atomesh/internal/store"
)

// ShutdownTimeout bounds how long Run waits for in-flight requests.
const ShutdownTimeout = 5 * time.Second

// Engine is the running app as seen by the HTTP layer.
type Engine interface {
	api.Controller
	Subscribe() (<-chan app.Frame, func())
	Preview() []byte
}

// Config selects which parts of the API are mounted. A nil Store drops the
// preset endpoints; a nil Engine drops control, frames and stream.
type Config struct {
	StaticDir string
	Store     *store.Store
	Engine    Engine
}

// Server routes the viewer API and static files.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Store != nil {
		s.mount(api.NewPresetHandler(s.config.Store), "/api/presets", "/api/presets/")
	}

	if e := s.config.Engine; e != nil {
		s.mount(api.NewControlHandler(e), "/api/status", "/api/layout", "/api/tracking", "/api/config")
		s.mux.Handle("/api/frames", NewFramesHandler(e))
		s.mux.Handle("/api/stream", NewStreamHandler(e))
	}

	if s.config.StaticDir != "" {
		s.mux.Handle("/", http.FileServer(http.Dir(s.config.StaticDir)))
	}
}

func (s *Server) mount(h http.Handler, patterns ...string) {
	for _, p := range patterns {
		s.mux.Handle(p, h)
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

type healthResponse struct {
	Status    string `json:"status"`
	Uptime    string `json:"uptime"`
	SessionID string `json:"session_id,omitempty"`
	Tracking  *bool  `json:"tracking,omitempty"`
}

// handleHealth handles GET /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := healthResponse{
		Status: "ok",
		Uptime: time.Since(s.start).Round(time.Second).String(),
	}
	if e := s.config.Engine; e != nil {
		tracking := e.IsEnabled()
		resp.SessionID = e.Snapshot().SessionID
		resp.Tracking = &tracking
	}
	writeJSON(w, http.StatusOK, resp)
}

// Run serves on addr until ctx is done, then shuts down gracefully.
// Request contexts derive from ctx so long-lived streams end with it.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}
