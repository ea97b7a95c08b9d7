// Package web parses web command flags and composes the browser surface.
package web

import (
	"context"
	"flag"
	"fmt"
	"time"

	entrypoint "github.com/louisbranch/somnia/internal/platform/cmd"
	"github.com/louisbranch/somnia/internal/services/journal/gateway"
	webapp "github.com/louisbranch/somnia/internal/services/web/app"
)

// Config holds web command configuration.
type Config struct {
	HTTPAddr        string        `env:"SOMNIA_WEB_HTTP_ADDR"          envDefault:":8080"`
	APIEndpoint     string        `env:"SOMNIA_API_ENDPOINT"`
	DreamsSource    string        `env:"SOMNIA_DREAMS_SOURCE"          envDefault:"dreams.json"`
	DreamsFallback  string        `env:"SOMNIA_DREAMS_SOURCE_FALLBACK" envDefault:"data/dreams.json"`
	JournalDBPath   string        `env:"SOMNIA_JOURNAL_DB_PATH"`
	JournalFile     string        `env:"SOMNIA_JOURNAL_FILE"           envDefault:"data/journal.json"`
	AutoCleanup     bool          `env:"SOMNIA_AUTO_CLEANUP"           envDefault:"true"`
	OptimalLogCount int           `env:"SOMNIA_OPTIMAL_LOG_COUNT"      envDefault:"50"`
	MaxLog          int           `env:"SOMNIA_MAX_LOG"                envDefault:"10000"`
	FrameInterval   time.Duration `env:"SOMNIA_FRAME_INTERVAL"         envDefault:"50ms"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "web HTTP listen address")
	fs.StringVar(&cfg.APIEndpoint, "api-endpoint", cfg.APIEndpoint, "dreams proxy endpoint; empty keeps the journal local")
	fs.StringVar(&cfg.DreamsSource, "dreams", cfg.DreamsSource, "dream list path or URL")
	fs.StringVar(&cfg.DreamsFallback, "dreams-fallback", cfg.DreamsFallback, "dream list tried when the primary fails")
	fs.StringVar(&cfg.JournalDBPath, "journal-db", cfg.JournalDBPath, "SQLite journal path; wins over -journal-file")
	fs.StringVar(&cfg.JournalFile, "journal-file", cfg.JournalFile, "JSON journal path")
	fs.BoolVar(&cfg.AutoCleanup, "auto-cleanup", cfg.AutoCleanup, "trim the journal to the optimal count")
	fs.IntVar(&cfg.OptimalLogCount, "optimal-log-count", cfg.OptimalLogCount, "entries kept with auto cleanup")
	fs.IntVar(&cfg.MaxLog, "max-log", cfg.MaxLog, "entries kept without auto cleanup")
	fs.DurationVar(&cfg.FrameInterval, "frame-interval", cfg.FrameInterval, "playback tick period")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Retention returns the journal trim policy.
func (c Config) Retention() gateway.Retention {
	return gateway.Retention{AutoCleanup: c.AutoCleanup, Optimal: c.OptimalLogCount, Max: c.MaxLog}
}

// Run builds the web app and serves until ctx ends.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceWeb, func(ctx context.Context) error {
		if err := webapp.Run(ctx, webapp.Config{
			HTTPAddr:      cfg.HTTPAddr,
			DreamSources:  []string{cfg.DreamsSource, cfg.DreamsFallback},
			APIEndpoint:   cfg.APIEndpoint,
			JournalDBPath: cfg.JournalDBPath,
			JournalFile:   cfg.JournalFile,
			Retention:     cfg.Retention(),
			FrameInterval: cfg.FrameInterval,
		}); err != nil {
			return fmt.Errorf("serve web: %w", err)
		}
		return nil
	})
}
