// Package dreams parses dreams proxy flags and starts the HTTP service.
package dreams

import (
	"context"
	"flag"
	"fmt"
	"time"

	entrypoint "github.com/louisbranch/somnia/internal/platform/cmd"
	server "github.com/louisbranch/somnia/internal/services/proxy/app"
)

// Config holds dreams proxy command configuration.
type Config struct {
	HTTPAddr        string        `env:"SOMNIA_DREAMS_HTTP_ADDR"        envDefault:":8086"`
	SupabaseURL     string        `env:"SUPABASE_URL"`
	SupabaseKey     string        `env:"SUPABASE_ANON_KEY"`
	UpstreamTimeout time.Duration `env:"SOMNIA_DREAMS_UPSTREAM_TIMEOUT" envDefault:"8s"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "dreams proxy HTTP listen address")
	fs.StringVar(&cfg.SupabaseURL, "supabase-url", cfg.SupabaseURL, "Supabase project URL")
	fs.DurationVar(&cfg.UpstreamTimeout, "upstream-timeout", cfg.UpstreamTimeout, "timeout for each PostgREST request")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run builds the dreams proxy and serves until ctx ends.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceDreams, func(ctx context.Context) error {
		if err := server.Run(ctx, server.Config{
			HTTPAddr:        cfg.HTTPAddr,
			SupabaseURL:     cfg.SupabaseURL,
			SupabaseKey:     cfg.SupabaseKey,
			UpstreamTimeout: cfg.UpstreamTimeout,
		}); err != nil {
			return fmt.Errorf("serve dreams: %w", err)
		}
		return nil
	})
}
