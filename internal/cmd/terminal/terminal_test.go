package terminal

import (
	"flag"
	"strings"
	"testing"
	"time"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("terminal", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.JournalFile != "data/journal.json" {
		t.Fatalf("expected default journal file, got %q", cfg.JournalFile)
	}
	if !cfg.AutoCleanup || cfg.OptimalLogCount != 50 || cfg.MaxLog != 10000 {
		t.Fatalf("expected default retention, got %+v", cfg)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	t.Setenv("SOMNIA_DREAMS_SOURCE", "https://example.test/dreams.json")
	t.Setenv("SOMNIA_OPTIMAL_LOG_COUNT", "12")

	fs := flag.NewFlagSet("terminal", flag.ContinueOnError)
	args := []string{"-dreams-fallback", "local.json", "-frame-interval", "100ms", "-auto-cleanup=false"}
	cfg, err := ParseConfig(fs, args)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DreamsSource != "https://example.test/dreams.json" {
		t.Fatalf("expected env dreams source, got %q", cfg.DreamsSource)
	}
	if cfg.DreamsFallback != "local.json" || cfg.FrameInterval != 100*time.Millisecond {
		t.Fatalf("expected flag overrides, got %+v", cfg)
	}
	if cfg.AutoCleanup || cfg.OptimalLogCount != 12 {
		t.Fatalf("expected retention overrides, got %+v", cfg)
	}
}

func TestRunPassesTelemetryContext(t *testing.T) {
	t.Setenv("SOMNIA_OTEL_ENDPOINT", "")

	// A nil context is replaced by the telemetry wrapper, so the failure
	// comes from the missing journal storage.
	err := Run(nil, Config{})
	if err == nil {
		t.Fatal("expected error without journal storage")
	}
	if !strings.Contains(err.Error(), "open journal") {
		t.Fatalf("expected journal error, got %v", err)
	}
}
