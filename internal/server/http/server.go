// Package http implements the HTTP API server for observe.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/pprof"
	"strings"
	"time"

	"github.com/brianly1003/observe/internal/publisher"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

// Store is the observed document served by the API.
type Store interface {
	Properties() []string
	Get(id string) (any, error)
	Set(id string, v any) error
	Snapshot() map[string]any
	PublisherFor(id string) (*publisher.Publisher, error)
	WillChange() *publisher.Publisher
	SubscriberCount() int
}

// ClientCounter reports connected WebSocket clients.
type ClientCounter interface {
	ClientCount() int
}

// Options configures optional server features.
type Options struct {
	// WebSocket is mounted at /ws when set.
	WebSocket http.Handler
	// Clients feeds the client count in /api/stats.
	Clients ClientCounter
	// Pprof registers /debug/pprof handlers.
	Pprof bool
}

// Server is the HTTP API server.
type Server struct {
	addr      string
	store     Store
	opts      Options
	router    *mux.Router
	server    *http.Server
	startTime time.Time
}

// NewServer creates a new HTTP server.
func NewServer(host string, port int, store Store, opts Options) *Server {
	s := &Server{
		addr:      fmt.Sprintf("%s:%d", host, port),
		store:     store,
		opts:      opts,
		startTime: time.Now(),
	}
	s.router = s.routes()

	s.server = &http.Server{
		Addr:        s.addr,
		Handler:     corsMiddleware(requestLoggingMiddleware(s.router)),
		ReadTimeout: 30 * time.Second,
		// No WriteTimeout: it would cut long-lived WebSocket connections.
		IdleTimeout: 120 * time.Second,
	}
	return s
}

func (s *Server) routes() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/health", s.handleHealth).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/properties", s.handleListProperties).Methods("GET")
	api.HandleFunc("/properties/{id}", s.handleGetProperty).Methods("GET")
	api.HandleFunc("/properties/{id}", s.handleSetProperty).Methods("PUT")
	api.HandleFunc("/stats", s.handleStats).Methods("GET")

	if s.opts.WebSocket != nil {
		router.Handle("/ws", s.opts.WebSocket)
	}

	if s.opts.Pprof {
		debug := router.PathPrefix("/debug/pprof").Subrouter()
		debug.HandleFunc("/cmdline", pprof.Cmdline)
		debug.HandleFunc("/profile", pprof.Profile)
		debug.HandleFunc("/symbol", pprof.Symbol)
		debug.HandleFunc("/trace", pprof.Trace)
		debug.PathPrefix("/").HandlerFunc(pprof.Index)
		log.Info().Msg("pprof endpoints registered at /debug/pprof/")
	}

	return router
}

// Handler returns the server's root handler.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.addr
}

// Start starts the HTTP server in the background.
func (s *Server) Start() error {
	log.Info().Str("addr", s.addr).Msg("HTTP server starting")

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("HTTP server error")
		}
	}()
	return nil
}

// Stop gracefully stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	log.Info().Msg("HTTP server stopping")
	return s.server.Shutdown(ctx)
}

// requestLoggingMiddleware logs all incoming requests.
func requestLoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)

		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote_addr", r.RemoteAddr).
			Dur("duration", time.Since(start)).
			Msg("request completed")
	})
}

// corsMiddleware adds CORS headers.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if strings.Contains(origin, "localhost") || strings.Contains(origin, "127.0.0.1") {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		w.Header().Set("Access-Control-Allow-Methods", "GET, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Max-Age", "3600")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
