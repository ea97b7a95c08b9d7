// Package main starts the somnia MCP tool server.
//
// Stdout carries the MCP protocol, so logs go to stderr.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	mcpcmd "github.com/louisbranch/somnia/internal/cmd/mcp"
	entrypoint "github.com/louisbranch/somnia/internal/platform/cmd"
)

func main() {
	log.SetOutput(os.Stderr)
	log.SetPrefix("[MCP] ")
	entrypoint.LoadDotEnv()

	cfg, err := mcpcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := mcpcmd.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
