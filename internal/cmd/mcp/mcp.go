// Package mcp parses MCP command flags and starts the stdio tool server.
package mcp

import (
	"context"
	"flag"

	entrypoint "github.com/louisbranch/somnia/internal/platform/cmd"
	mcpservice "github.com/louisbranch/somnia/internal/services/mcp/service"
)

// Config holds MCP command configuration.
type Config struct {
	Transport      string `env:"SOMNIA_MCP_TRANSPORT"          envDefault:"stdio"`
	APIEndpoint    string `env:"SOMNIA_API_ENDPOINT"`
	DreamsSource   string `env:"SOMNIA_DREAMS_SOURCE"          envDefault:"dreams.json"`
	DreamsFallback string `env:"SOMNIA_DREAMS_SOURCE_FALLBACK" envDefault:"data/dreams.json"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "Transport type: stdio")
	fs.StringVar(&cfg.APIEndpoint, "api-endpoint", cfg.APIEndpoint, "dreams proxy endpoint read by journal_entries")
	fs.StringVar(&cfg.DreamsSource, "dreams", cfg.DreamsSource, "dream list path or URL")
	fs.StringVar(&cfg.DreamsFallback, "dreams-fallback", cfg.DreamsFallback, "dream list tried when the primary fails")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the MCP protocol adapter.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceMCP, func(ctx context.Context) error {
		return mcpservice.Run(ctx, mcpservice.Config{
			Transport:    cfg.Transport,
			APIEndpoint:  cfg.APIEndpoint,
			DreamSources: []string{cfg.DreamsSource, cfg.DreamsFallback},
		})
	})
}
