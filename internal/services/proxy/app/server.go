// Package server hosts the dreams proxy HTTP process.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/louisbranch/somnia/internal/platform/timeouts"
	"github.com/louisbranch/somnia/internal/services/proxy/postgrest"
)

// Config defines the inputs for the dreams proxy.
type Config struct {
	HTTPAddr          string
	SupabaseURL       string
	SupabaseKey       string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
	UpstreamTimeout   time.Duration
}

// Server hosts the dreams proxy.
type Server struct {
	httpAddr        string
	shutdownTimeout time.Duration
	httpServer      *http.Server
}

// NewServer builds a configured proxy server. Missing store credentials are
// not an error: the proxy then answers reads with an empty list.
func NewServer(config Config) (*Server, error) {
	httpAddr := strings.TrimSpace(config.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	if config.ReadHeaderTimeout <= 0 {
		config.ReadHeaderTimeout = timeouts.ReadHeader
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = timeouts.Shutdown
	}

	store := postgrest.NewClient(postgrest.Config{URL: config.SupabaseURL, APIKey: config.SupabaseKey})
	if !store.Configured() {
		log.Printf("dreams: SUPABASE_URL or SUPABASE_ANON_KEY missing, storage disabled")
	}

	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           newHandler(store, handlerOptions{upstreamTimeout: config.UpstreamTimeout}),
		ReadHeaderTimeout: config.ReadHeaderTimeout,
	}
	return &Server{
		httpAddr:        httpAddr,
		shutdownTimeout: config.ShutdownTimeout,
		httpServer:      httpServer,
	}, nil
}

// Run creates and serves the proxy until ctx ends.
func Run(ctx context.Context, config Config) error {
	server, err := NewServer(config)
	if err != nil {
		return fmt.Errorf("init dreams server: %w", err)
	}
	defer server.Close()

	if err := server.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("serve dreams: %w", err)
	}
	return nil
}

// ListenAndServe runs the HTTP server until the context ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("dreams server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	serveErr := make(chan error, 1)
	log.Printf("dreams server listening on %s", s.httpAddr)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// Close releases server resources.
func (s *Server) Close() {
	if s == nil || s.httpServer == nil {
		return
	}
	if err := s.httpServer.Close(); err != nil {
		log.Printf("close dreams http server: %v", err)
	}
}
