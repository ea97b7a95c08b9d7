package app

import (
	"context"
	"fmt"
	"log"

	"github.com/louisbranch/somnia/internal/services/journal"
	"github.com/louisbranch/somnia/internal/services/journal/gateway"
	"github.com/louisbranch/somnia/internal/services/journal/player"
	"github.com/louisbranch/somnia/internal/services/journal/source"
)

// Run composes playback, journal storage and the HTTP surface, then serves
// until ctx ends.
func Run(ctx context.Context, config Config) error {
	opened, err := journal.Open(journal.StoreOptions{
		DBPath:      config.JournalDBPath,
		File:        config.JournalFile,
		APIEndpoint: config.APIEndpoint,
		Retention:   config.Retention,
		OnSync:      logSync,
	})
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer func() {
		if err := opened.Close(); err != nil {
			log.Printf("web: close journal: %v", err)
		}
	}()

	hub := newFrameHub()
	controller := player.New(player.Config{
		Persister: opened.Gateway,
		Sinks:     []player.Sink{hub},
		Interval:  config.FrameInterval,
	})
	server, err := newServer(config, handlerDependencies{
		frames:  controller,
		journal: opened.Gateway,
		hub:     hub,
	})
	if err != nil {
		return fmt.Errorf("init web server: %w", err)
	}
	defer server.Close()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	bootDone := make(chan error, 1)
	go func() {
		bootDone <- player.Boot(runCtx, player.BootConfig{
			Controller: controller,
			Journal:    opened.Gateway,
			Source:     source.NewLoader(config.DreamSources...),
		})
	}()

	serveErr := server.ListenAndServe(runCtx)
	cancel()
	if err := <-bootDone; err != nil {
		log.Printf("web: playback stopped: %v", err)
	}
	if serveErr != nil {
		return fmt.Errorf("serve web: %w", serveErr)
	}
	return nil
}

func logSync(res gateway.SyncResult) {
	switch {
	case res.Err != nil:
		log.Printf("web: journal sync %s failed: %v", res.Entry.ID, res.Err)
	case res.Saved:
		log.Printf("web: journal sync %s saved", res.Entry.ID)
	default:
		log.Printf("web: journal sync %s skipped: %s", res.Entry.ID, res.Message)
	}
}
