// Package main starts the dreams proxy and handles termination.
//
// The process is a stateless adapter between the journal clients and the
// PostgREST dreams table.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	dreamscmd "github.com/louisbranch/somnia/internal/cmd/dreams"
	entrypoint "github.com/louisbranch/somnia/internal/platform/cmd"
)

func main() {
	log.SetPrefix("[DREAMS] ")
	entrypoint.LoadDotEnv()

	cfg, err := dreamscmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := dreamscmd.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
