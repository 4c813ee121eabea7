// Package server exposes a review.Service over the review JSON API so the
// reviewer (or a browser client) can share one comment store.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/user/framereview/review"
)

// VideoLister is implemented by services that can enumerate videos.
type VideoLister interface {
	ListVideos(ctx context.Context) ([]review.Video, error)
}

// Config wires the server.
type Config struct {
	Addr    string
	Service review.Service
	Logger  zerolog.Logger
}

// Server is the HTTP server.
type Server struct {
	httpServer *http.Server
	logger     zerolog.Logger
}

// New builds a server for cfg.
func New(cfg Config) *Server {
	logger := cfg.Logger.With().Str("component", "server").Logger()
	return &Server{
		httpServer: &http.Server{
			Addr:        cfg.Addr,
			Handler:     NewRouter(cfg.Service, logger),
			ReadTimeout: 15 * time.Second,
			// Streams run long; no write timeout.
			WriteTimeout: 0,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Serve accepts connections on ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info().Str("addr", ln.Addr().String()).Msg("starting HTTP server")
	err := s.httpServer.Serve(ln)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Start listens on the configured address and serves until Shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
