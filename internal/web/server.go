// Package web provides the HTTP API for the CSV importer.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/gradabroad/internal/auth"
	"github.com/JonMunkholm/gradabroad/internal/config"
	"github.com/JonMunkholm/gradabroad/internal/core"
	appmw "github.com/JonMunkholm/gradabroad/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the HTTP server for the importer.
type Server struct {
	service  *core.Service
	pinger   Pinger
	verifier *auth.Verifier
	cfg      *config.Config
	router   *chi.Mux
	limiter  *appmw.RateLimiter
	server   *http.Server
}

// NewServer creates a Server. pinger may be nil when no database check is
// wanted.
func NewServer(service *core.Service, pinger Pinger, cfg *config.Config) *Server {
	s := &Server{
		service:  service,
		pinger:   pinger,
		verifier: auth.NewVerifier(cfg.Security.JWTSecret, cfg.Security.SessionCookie),
		cfg:      cfg,
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(appmw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(appmw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))

	if s.cfg.Security.EnableCSP {
		s.router.Use(securityHeaders)
	}

	if s.cfg.Rate.Enabled {
		s.limiter = appmw.NewRateLimiter(s.cfg.Rate.Requests, s.cfg.Rate.Window)
		s.router.Use(s.limiter.Handler)
	}

	s.router.Use(appmw.Authenticate(s.verifier))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/collections", s.handleListCollections)

		// The import page is a development tool.
		if !s.cfg.App.IsProduction() {
			r.Post("/import/{collection}/preview", s.handlePreview)
			r.Post("/import/{collection}", s.handleImport)
		}

		r.Get("/records/{collection}", s.handleListRecords)
		r.Patch("/records/{collection}/{id}", s.handleUpdateRecord)
		r.Delete("/records/{collection}/{id}", s.handleDeleteRecord)
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.limiter != nil {
		s.limiter.Stop()
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as JSON with status.
// Encoding errors are only logged since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
