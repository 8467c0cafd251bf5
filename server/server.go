package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/huykn/tagged-cache/cache"
)

// Options configures the HTTP server. These are deployment parameters; the
// cache itself knows nothing about them.
type Options struct {
	// Addr is the listen address.
	Addr string

	// ReadTimeout is the maximum duration for reading a request.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum duration before timing out a response write.
	WriteTimeout time.Duration

	// IdleTimeout is the keep-alive idle timeout.
	IdleTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration

	// MaxInFlight bounds concurrently served requests. Zero disables the limit.
	MaxInFlight int64

	// MaxBodyBytes bounds request body size. Zero disables the limit.
	MaxBodyBytes int64
}

// DefaultOptions returns the server defaults.
func DefaultOptions() Options {
	return Options{
		Addr:            "127.0.0.1:5000",
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 15 * time.Second,
		MaxInFlight:     1024,
		MaxBodyBytes:    1 << 20,
	}
}

// Server serves a tagged cache over HTTP.
type Server struct {
	srv     *http.Server
	logger  *slog.Logger
	options Options
}

// New creates a Server for c.
func New(c cache.Cache, logger *slog.Logger, opts Options) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	handler := NewHandler(c, logger, opts)
	return &Server{
		srv: &http.Server{
			Addr:         opts.Addr,
			Handler:      handler.Routes(),
			ReadTimeout:  opts.ReadTimeout,
			WriteTimeout: opts.WriteTimeout,
			IdleTimeout:  opts.IdleTimeout,
			ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
		},
		logger:  logger,
		options: opts,
	}
}

// ListenAndServe listens on the configured address and serves until ctx is
// done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.options.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", ln.Addr().String())
		errCh <- s.srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.options.ShutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
