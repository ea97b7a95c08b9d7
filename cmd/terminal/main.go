// Package main plays the dream timeline in a terminal.
//
// Diagnostics go to stderr so stdout carries only the animation.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	terminalcmd "github.com/louisbranch/somnia/internal/cmd/terminal"
	entrypoint "github.com/louisbranch/somnia/internal/platform/cmd"
)

func main() {
	log.SetOutput(os.Stderr)
	log.SetPrefix("[TERMINAL] ")
	entrypoint.LoadDotEnv()

	cfg, err := terminalcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := terminalcmd.Run(ctx, cfg); err != nil {
		log.Fatalf("terminal stopped: %v", err)
	}
}
