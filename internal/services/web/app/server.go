// Package app hosts the somnia web process: it plays the dream timeline on
// the server and streams frames to browsers.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/louisbranch/somnia/internal/platform/timeouts"
	"github.com/louisbranch/somnia/internal/services/journal/gateway"
)

// Config defines the inputs for the web process.
type Config struct {
	HTTPAddr string
	// DreamSources are tried in order when loading the dream list.
	DreamSources []string
	// APIEndpoint is the dreams proxy resource; empty keeps the log local.
	APIEndpoint   string
	JournalDBPath string
	JournalFile   string
	Retention     gateway.Retention
	FrameInterval time.Duration

	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

// Server hosts the web HTTP/WebSocket process.
type Server struct {
	httpAddr        string
	shutdownTimeout time.Duration
	httpServer      *http.Server
	hub             *frameHub
}

// NewServer builds a server around the playback collaborators.
func NewServer(config Config, frames FrameSource, journal JournalReader) (*Server, error) {
	return newServer(config, handlerDependencies{frames: frames, journal: journal, hub: newFrameHub()})
}

func newServer(config Config, deps handlerDependencies) (*Server, error) {
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
	if deps.hub == nil {
		deps.hub = newFrameHub()
	}
	handler, err := newHandler(deps)
	if err != nil {
		return nil, err
	}
	return &Server{
		httpAddr:        httpAddr,
		shutdownTimeout: config.ShutdownTimeout,
		httpServer: &http.Server{
			Addr:              httpAddr,
			Handler:           handler,
			ReadHeaderTimeout: config.ReadHeaderTimeout,
		},
		hub: deps.hub,
	}, nil
}

// ListenAndServe runs the HTTP server until the context ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("web server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	serveErr := make(chan error, 1)
	log.Printf("web server listening on %s", s.httpAddr)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		// Hijacked websocket connections are not tracked by Shutdown.
		s.hub.close()
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
	if s == nil {
		return
	}
	s.hub.close()
	if s.httpServer != nil {
		if err := s.httpServer.Close(); err != nil {
			log.Printf("close web http server: %v", err)
		}
	}
}
