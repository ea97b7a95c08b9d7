package mcp

import (
	"context"
	"flag"
	"strings"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Transport != "stdio" {
		t.Fatalf("expected default transport stdio, got %q", cfg.Transport)
	}
	if cfg.DreamsSource != "dreams.json" {
		t.Fatalf("expected default dreams source, got %q", cfg.DreamsSource)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	t.Setenv("SOMNIA_API_ENDPOINT", "http://env/dreams")

	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-dreams", "flag.json"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.APIEndpoint != "http://env/dreams" {
		t.Fatalf("expected env api endpoint, got %q", cfg.APIEndpoint)
	}
	if cfg.DreamsSource != "flag.json" {
		t.Fatalf("expected flag dreams source, got %q", cfg.DreamsSource)
	}
}

func TestRunRejectsUnsupportedTransport(t *testing.T) {
	t.Setenv("SOMNIA_OTEL_ENDPOINT", "")
	err := Run(context.Background(), Config{Transport: "http"})
	if err == nil || !strings.Contains(err.Error(), "not supported") {
		t.Fatalf("expected unsupported transport error, got %v", err)
	}
}
