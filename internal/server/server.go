package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// ============================================
// Server Configuration
// ============================================

// ServerConfig - HTTP server lifecycle settings.
type ServerConfig struct {
	// Host to listen on (e.g. "0.0.0.0", "localhost")
	Host string
	// Port to listen on
	Port string
	// ReadTimeout - maximum time to read a request
	ReadTimeout time.Duration
	// WriteTimeout - maximum time to write a response
	WriteTimeout time.Duration
	// IdleTimeout - maximum keep-alive wait between requests
	IdleTimeout time.Duration
	// ShutdownTimeout - grace period for in-flight requests on shutdown
	ShutdownTimeout time.Duration
	// Logger for lifecycle events
	Logger *slog.Logger
}

// DefaultServerConfig - the default lifecycle settings.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Host:            "0.0.0.0",
		Port:            "8000",
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    15 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		Logger:          slog.Default(),
	}
}

// Address returns the listen address.
func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

// ============================================
// Server
// ============================================

// Server - HTTP server with graceful shutdown.
type Server struct {
	config     *ServerConfig
	httpServer *http.Server
	listener   net.Listener
}

// NewServer wraps the handler in a lifecycle-managed HTTP server.
func NewServer(config *ServerConfig, handler http.Handler) *Server {
	if config == nil {
		config = DefaultServerConfig()
	}

	return &Server{
		config: config,
		httpServer: &http.Server{
			Addr:         config.Address(),
			Handler:      handler,
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			IdleTimeout:  config.IdleTimeout,
		},
	}
}

// Listen binds the listening socket without serving.
//
// Binding is split from serving so the caller can report a bind failure
// (port in use, permission denied) before printing any success output.
// The error is returned immediately; it must surface rather than hang.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.config.Address())
	if err != nil {
		return err
	}

	s.listener = ln
	return nil
}

// Addr returns the bound listen address, or the configured address if
// Listen has not been called yet.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.config.Address()
}

// Start serves on the bound listener until Shutdown or failure, binding
// first if Listen was not called.
func (s *Server) Start() error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	s.config.Logger.Info("starting HTTP server",
		slog.String("address", s.Addr()),
	)

	if err := s.httpServer.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// Shutdown stops accepting connections and releases the listening socket,
// giving in-flight requests the configured grace period.
func (s *Server) Shutdown(ctx context.Context) error {
	s.config.Logger.Info("shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.config.Logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		return err
	}

	// Release the socket even if Serve was never reached.
	if s.listener != nil {
		_ = s.listener.Close()
	}

	s.config.Logger.Info("HTTP server stopped gracefully")
	return nil
}

// ============================================
// Run with Graceful Shutdown
// ============================================

// Run serves until SIGINT or SIGTERM, then shuts down gracefully.
//
// Returns nil on a clean signal-triggered stop; a bind or serve error is
// returned as-is so the caller can report it and exit non-zero.
func (s *Server) Run() error {
	errChan := make(chan error, 1)

	go func() {
		if err := s.Start(); err != nil {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errChan:
		return err
	case sig := <-quit:
		s.config.Logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	}

	return s.Shutdown(context.Background())
}

// RunWithContext serves until the context is cancelled or the server fails.
//
// Used by tests and embedders that manage the lifecycle themselves.
func (s *Server) RunWithContext(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		if err := s.Start(); err != nil {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		s.config.Logger.Info("context cancelled, initiating shutdown")
	}

	return s.Shutdown(context.Background())
}
