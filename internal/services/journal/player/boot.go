package player

import (
	"context"
	"log"

	"github.com/louisbranch/somnia/internal/services/journal/domain"
)

// Journal supplies the persisted log at startup.
type Journal interface {
	LoadFromRemote(ctx context.Context) ([]domain.Dream, error)
}

// Source supplies the dream list.
type Source interface {
	Load(ctx context.Context) []domain.Dream
}

// BootConfig wires Boot.
type BootConfig struct {
	Controller *Controller
	Journal    Journal
	Source     Source
	// OnJournal receives the persisted log once it is loaded.
	OnJournal func([]domain.Dream)
}

// Boot loads the persisted journal, starts playback with the controller's
// seed dreams and swaps in the dream source once it loads. It blocks until
// ctx ends.
func Boot(ctx context.Context, cfg BootConfig) error {
	if cfg.Journal != nil {
		entries, err := cfg.Journal.LoadFromRemote(ctx)
		if err != nil {
			log.Printf("player: load journal: %v", err)
		} else {
			log.Printf("player: journal has %d entries", len(entries))
			if cfg.OnJournal != nil {
				cfg.OnJournal(entries)
			}
		}
	}

	if cfg.Source != nil {
		go func() {
			dreams := cfg.Source.Load(ctx)
			if err := cfg.Controller.Reload(ctx, dreams); err != nil {
				log.Printf("player: %v", err)
			}
		}()
	}
	return cfg.Controller.Run(ctx)
}
