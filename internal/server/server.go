// Package server is the development HTTP server behind `sergey dev`. It serves
// the build output and tells open pages to reload after every rebuild.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// LiveReloadPath is the websocket endpoint pages connect to for reloads.
const LiveReloadPath = "/__sergey/livereload"

// Config holds server configuration.
type Config struct {
	Port       int
	Dir        string // directory holding the built site
	LiveReload bool   // inject the reload script and serve LiveReloadPath
	AllowAll   bool   // allow all CORS origins
}

// Server serves a built site.
type Server struct {
	cfg        Config
	hub        *hub
	router     chi.Router
	httpServer *http.Server
}

// New creates a server for cfg.
func New(cfg Config) *Server {
	s := &Server{cfg: cfg, hub: newHub()}
	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	corsOpts := cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods: []string{"GET", "HEAD", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// The websocket outlives any request timeout.
	if s.cfg.LiveReload {
		r.Get(LiveReloadPath, s.hub.handleWebSocket)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))
		r.Handle("/*", newSiteHandler(s.cfg.Dir, s.cfg.LiveReload))
	})

	return r
}

// Router returns the chi router.
func (s *Server) Router() chi.Router { return s.router }

// Notify asks every connected page to reload.
func (s *Server) Notify() { s.hub.broadcast() }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("sergey running on http://localhost:%d", s.cfg.Port)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server and closes reload connections.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.close()
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
