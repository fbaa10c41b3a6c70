package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/yndnr/sigstream/internal/infra/tlsroots"
)

// Config configures the HTTP listener.
type Config struct {
	Addr        string
	TLSCertFile string
	TLSKeyFile  string

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
}

// DefaultConfig returns the default listener configuration.
func DefaultConfig() Config {
	return Config{
		Addr:              "127.0.0.1:8000",
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}

// Server represents the HTTP server.
type Server struct {
	cfg        Config
	httpServer *http.Server
	logger     *slog.Logger
	certs      *tlsroots.Reloader

	mu       sync.Mutex
	listener net.Listener
	done     chan error
}

// New creates a new HTTP server.
func New(cfg Config, h http.Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:    cfg,
		logger: logger,
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           h,
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
			ReadTimeout:       cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
			ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
		},
	}
}

// Start binds the listener and serves in the background. It returns once
// the address is bound, so Addr is valid afterwards.
func (s *Server) Start() error {
	tlsEnabled := s.cfg.TLSCertFile != ""
	if tlsEnabled {
		certs, err := tlsroots.NewReloader(s.cfg.TLSCertFile, s.cfg.TLSKeyFile, tlsroots.WithLogger(s.logger))
		if err != nil {
			return err
		}
		if err := certs.Start(); err != nil {
			return err
		}
		s.certs = certs
		s.httpServer.TLSConfig = certs.ServerConfig()
	}

	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		if s.certs != nil {
			s.certs.Stop()
		}
		return fmt.Errorf("httpserver: listen %s: %w", s.cfg.Addr, err)
	}

	s.mu.Lock()
	s.listener = ln
	s.done = make(chan error, 1)
	s.mu.Unlock()

	s.logger.Info("http server listening", "addr", ln.Addr().String(), "tls", tlsEnabled)

	go func() {
		var err error
		if tlsEnabled {
			err = s.httpServer.ServeTLS(ln, "", "")
		} else {
			err = s.httpServer.Serve(ln)
		}
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		if err != nil {
			s.logger.Error("http server stopped", "error", err)
		}
		s.done <- err
	}()
	return nil
}

// Addr returns the bound address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if s.certs != nil {
		s.certs.Stop()
	}

	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done != nil {
		select {
		case serveErr := <-done:
			if err == nil {
				err = serveErr
			}
		case <-ctx.Done():
			if err == nil {
				err = ctx.Err()
			}
		}
	}

	s.logger.Info("http server stopped")
	return err
}
