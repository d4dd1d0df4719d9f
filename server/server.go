// Package server exposes the credit-risk classifier over HTTP.
//
// A single model instance is shared by all endpoints and guarded by the
// ModelService; the HTTP layer validates input, maps the error taxonomy to
// status codes, and leaves the learning semantics to the linear package.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/jeffreire/creditrisk-api/pkg/errors"
)

// Server wraps the HTTP server with its routes and middleware installed.
type Server struct {
	httpServer *http.Server
	service    *ModelService
}

// NewServer builds a server from cfg, sharing the given model service.
func NewServer(cfg Config, service *ModelService) *Server {
	mux := http.NewServeMux()
	NewHandlers(service, cfg).Register(mux)

	middlewares := []Middleware{RecoveryMiddleware, LoggingMiddleware}
	if d := cfg.RequestTimeout(); d > 0 {
		middlewares = append(middlewares, TimeoutMiddleware(d))
	}
	handler := Chain(middlewares...)(mux)

	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadHeaderTimeout: cfg.ReadHeaderTimeout(),
		},
		service: service,
	}
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start blocks serving requests until Stop is called or the listener fails.
func (s *Server) Start() error {
	slog.Info("server listening", slog.String("addr", s.httpServer.Addr), slog.String("version", Version))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "creditrisk: server failed")
	}
	return nil
}

// Stop drains in-flight requests and shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	slog.Info("server shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "creditrisk: shutdown failed")
	}
	return nil
}
