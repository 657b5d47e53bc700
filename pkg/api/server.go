// Package api assembles the HTTP front of the service: routing, middleware,
// CORS and server lifecycle. Endpoint logic lives in the handlers
// subpackage.
package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/abiiranathan/lexicon-sub000/internal/logger"
	"github.com/abiiranathan/lexicon-sub000/pkg/api/handlers"
	"github.com/abiiranathan/lexicon-sub000/pkg/metrics"
)

// Config configures the HTTP server.
type Config struct {
	// Addr is the listen address, e.g. "0.0.0.0" or "". Combined with Port.
	Addr string

	// Port is the TCP port to listen on.
	Port int

	// ReadTimeout caps reading the request including the body. Default: 15s.
	ReadTimeout time.Duration

	// WriteTimeout caps writing the response. Rendering large pages can be
	// slow on first hit, so this stays generous. Default: 60s.
	WriteTimeout time.Duration

	// IdleTimeout caps keep-alive idle time. Default: 120s.
	IdleTimeout time.Duration
}

func (c *Config) applyDefaults() {
	if c.Port <= 0 {
		c.Port = 8080
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 15 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 60 * time.Second
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 120 * time.Second
	}
}

// Server serves the search API over HTTP with graceful shutdown.
type Server struct {
	server       *http.Server
	config       Config
	shutdownOnce sync.Once
}

// NewServer creates a stopped server. Call Start to begin serving.
func NewServer(config Config, h *handlers.Handler, m *metrics.HTTPMetrics) *Server {
	config.applyDefaults()

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Addr, config.Port),
		Handler:      NewRouter(h, m),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return &Server{server: server, config: config}
}

// Start serves requests until the context is cancelled or the listener
// fails. Cancellation triggers a graceful drain of in-flight requests.
func (s *Server) Start(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			select {
			case errChan <- err:
			default:
			}
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("server shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.Stop(shutdownCtx)
	case err := <-errChan:
		return fmt.Errorf("server failed: %w", err)
	}
}

// Stop initiates graceful shutdown. Safe to call more than once.
func (s *Server) Stop(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if err := s.server.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		} else {
			logger.Info("server stopped gracefully")
		}
	})
	return shutdownErr
}

// Port returns the configured TCP port.
func (s *Server) Port() int {
	return s.config.Port
}
