// Package player drives the dream animation: it ticks the timeline clock,
// publishes rendered frames and hands reached log segments to the journal.
package player

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/louisbranch/somnia/internal/services/journal/domain"
	"github.com/louisbranch/somnia/internal/services/journal/render"
)

// DefaultFrameInterval is the tick period when none is configured.
const DefaultFrameInterval = 50 * time.Millisecond

// Sink receives playback output.
type Sink interface {
	// ShowFrame is called whenever the visible frame changes.
	ShowFrame(render.Frame)
	// EntryLogged is called after a new journal entry is stored.
	EntryLogged(domain.Dream)
}

// Persister stores reached dreams. It reports whether the entry was new.
type Persister interface {
	Persist(ctx context.Context, entry domain.Dream) (bool, error)
}

// Config wires a Controller.
type Config struct {
	Persister Persister
	Sinks     []Sink
	// Interval between ticks. Defaults to DefaultFrameInterval.
	Interval time.Duration
	// Now reads the clock. Defaults to time.Now.
	Now func() time.Time
	// Dreams seeds the first session. Empty uses the fallback set.
	Dreams []domain.Dream
}

// Controller runs the playback loop. Session state is owned by the Run
// goroutine; other goroutines interact through Reload and Current.
type Controller struct {
	persister Persister
	sinks     []Sink
	interval  time.Duration
	now       func() time.Time
	initial   []domain.Dream

	reload  chan []domain.Dream
	current atomic.Pointer[render.Frame]
}

// New builds a controller.
func New(cfg Config) *Controller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultFrameInterval
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	c := &Controller{
		persister: cfg.Persister,
		sinks:     cfg.Sinks,
		interval:  cfg.Interval,
		now:       cfg.Now,
		initial:   cfg.Dreams,
		reload:    make(chan []domain.Dream),
	}
	blank := render.Blank
	c.current.Store(&blank)
	return c
}

// Current returns the most recently rendered frame.
func (c *Controller) Current() render.Frame {
	return *c.current.Load()
}

// Reload hands a new dream list to the loop. It blocks until the loop takes
// it or ctx ends.
func (c *Controller) Reload(ctx context.Context, dreams []domain.Dream) error {
	select {
	case c.reload <- dreams:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("reload dreams: %w", ctx.Err())
	}
}

// Run ticks until ctx ends.
func (c *Controller) Run(ctx context.Context) error {
	session := NewSession(c.initial)
	c.tick(ctx, session)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case dreams := <-c.reload:
			session = NewSession(dreams)
			log.Printf("player: loaded %d dreams, cycle %s", len(session.Timeline().Dreams()), session.Timeline().Total())
			c.tick(ctx, session)
		case <-ticker.C:
			c.tick(ctx, session)
		}
	}
}

func (c *Controller) tick(ctx context.Context, session *Session) {
	frame, due := session.Step(c.now())
	if prev := c.current.Load(); *prev != frame {
		c.current.Store(&frame)
		for _, sink := range c.sinks {
			sink.ShowFrame(frame)
		}
	}
	for _, entry := range due {
		c.log(ctx, entry)
	}
}

func (c *Controller) log(ctx context.Context, entry domain.Dream) {
	if c.persister == nil {
		return
	}
	stored, err := c.persister.Persist(ctx, entry)
	if err != nil {
		log.Printf("player: persist %s: %v", entry.ID, err)
		return
	}
	if !stored {
		return
	}
	if entry.TS == 0 {
		entry.TS = domain.ToMillis(c.now())
	}
	for _, sink := range c.sinks {
		sink.EntryLogged(entry)
	}
}
