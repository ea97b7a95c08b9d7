// Package terminal parses terminal command flags and starts console playback.
package terminal

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	entrypoint "github.com/louisbranch/somnia/internal/platform/cmd"
	"github.com/louisbranch/somnia/internal/services/journal/gateway"
	terminalapp "github.com/louisbranch/somnia/internal/services/terminal/app"
)

// Config holds terminal command configuration.
type Config struct {
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

// Run plays the dream timeline on stdout until ctx ends.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceTerminal, func(ctx context.Context) error {
		if err := terminalapp.Run(ctx, terminalapp.Config{
			DreamSources:  []string{cfg.DreamsSource, cfg.DreamsFallback},
			APIEndpoint:   cfg.APIEndpoint,
			JournalDBPath: cfg.JournalDBPath,
			JournalFile:   cfg.JournalFile,
			Retention:     gateway.Retention{AutoCleanup: cfg.AutoCleanup, Optimal: cfg.OptimalLogCount, Max: cfg.MaxLog},
			FrameInterval: cfg.FrameInterval,
			Input:         os.Stdin,
		}); err != nil {
			return fmt.Errorf("run terminal: %w", err)
		}
		return nil
	})
}
