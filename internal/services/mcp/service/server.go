package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/somnia/internal/services/journal/remote"
	"github.com/louisbranch/somnia/internal/services/journal/source"
	"github.com/louisbranch/somnia/internal/services/mcp/domain"
)

const (
	serverName = "somnia"
	// serverVersion identifies the MCP server version.
	serverVersion = "0.1.0"

	// TransportStdio serves MCP over stdin/stdout.
	TransportStdio = "stdio"
)

// Config defines the inputs for the MCP process.
type Config struct {
	Transport string
	// DreamSources are tried in order when computing the current frame.
	DreamSources []string
	// APIEndpoint is the dreams proxy resource read by journal_entries.
	APIEndpoint string
}

// Server wraps the MCP server and its registered tools.
type Server struct {
	mcpServer *mcp.Server
}

// New builds a server whose tools read from the configured sources.
func New(cfg Config) (*Server, error) {
	var lister domain.JournalLister
	if endpoint := strings.TrimSpace(cfg.APIEndpoint); endpoint != "" {
		client, err := remote.NewClient(remote.Config{Endpoint: endpoint})
		if err != nil {
			return nil, fmt.Errorf("init journal client: %w", err)
		}
		lister = client
	} else {
		log.Printf("mcp: no API endpoint configured, journal_entries is unavailable")
	}
	return newServer(source.NewLoader(cfg.DreamSources...), lister)
}

func newServer(dreams domain.DreamSource, lister domain.JournalLister) (*Server, error) {
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	if err := registerDreamTools(mcpServerRegistrationAdapter{server: mcpServer}, dreams, lister); err != nil {
		return nil, fmt.Errorf("register MCP tools: %w", err)
	}
	return &Server{mcpServer: mcpServer}, nil
}

// Run is the service entrypoint for MCP and blocks until context cancellation.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Transport == "" {
		cfg.Transport = TransportStdio
	}
	if cfg.Transport != TransportStdio {
		return fmt.Errorf("transport %q is not supported", cfg.Transport)
	}
	server, err := New(cfg)
	if err != nil {
		return err
	}
	return server.serveWithTransport(ctx, &mcp.StdioTransport{})
}

// Serve starts the MCP server on stdio and blocks until it stops or the context ends.
func (s *Server) Serve(ctx context.Context) error {
	return s.serveWithTransport(ctx, &mcp.StdioTransport{})
}

func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}
