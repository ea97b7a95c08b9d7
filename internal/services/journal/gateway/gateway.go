// Package gateway owns the journal write path: local dedup and mirror writes
// followed by a best-effort save to the remote store.
package gateway

import (
	"cmp"
	"context"
	"fmt"
	"log"
	"slices"
	"sync"
	"time"

	"github.com/louisbranch/somnia/internal/platform/timeouts"
	"github.com/louisbranch/somnia/internal/services/journal/domain"
	"github.com/louisbranch/somnia/internal/services/journal/remote"
	"github.com/louisbranch/somnia/internal/services/journal/storage"
)

const (
	// DefaultOptimalCount is the retained log size with auto-cleanup on.
	DefaultOptimalCount = 50
	// DefaultMaxCount is the hard cap with auto-cleanup off.
	DefaultMaxCount = 10000
)

// Retention controls how many entries the local mirror keeps.
type Retention struct {
	AutoCleanup bool
	Optimal     int
	Max         int
}

// DefaultRetention keeps the newest DefaultOptimalCount entries.
func DefaultRetention() Retention {
	return Retention{AutoCleanup: true, Optimal: DefaultOptimalCount, Max: DefaultMaxCount}
}

// Limit returns the active trim bound.
func (r Retention) Limit() int {
	if r.AutoCleanup {
		if r.Optimal > 0 {
			return r.Optimal
		}
		return DefaultOptimalCount
	}
	if r.Max > 0 {
		return r.Max
	}
	return DefaultMaxCount
}

// Remote is the hosted journal reached through the dreams proxy.
type Remote interface {
	List(ctx context.Context) ([]domain.Dream, error)
	Save(ctx context.Context, entry domain.Dream) (remote.SaveResult, error)
}

// SyncResult reports the outcome of one background remote save.
type SyncResult struct {
	Entry   domain.Dream
	Saved   bool
	Message string
	Err     error
}

// Config wires the gateway's collaborators.
type Config struct {
	Local     storage.LocalLog
	Remote    Remote
	// Retention is used as given; the zero value keeps up to DefaultMaxCount
	// entries.
	Retention Retention
	// Now stamps new entries. Defaults to time.Now.
	Now func() time.Time
	// FetchTimeout bounds LoadFromRemote. Defaults to timeouts.RemoteFetch.
	FetchTimeout time.Duration
	// SaveTimeout bounds each background save. Defaults to timeouts.RemoteSave.
	SaveTimeout time.Duration
	// OnSync, when set, receives every background save outcome.
	OnSync func(SyncResult)
}

// Gateway serializes local journal writes and fans out remote saves.
type Gateway struct {
	local        storage.LocalLog
	remote       Remote
	retention    Retention
	now          func() time.Time
	fetchTimeout time.Duration
	saveTimeout  time.Duration
	onSync       func(SyncResult)

	mu       sync.Mutex
	inflight sync.WaitGroup
}

// New builds a gateway. A nil Remote keeps the journal local only.
func New(cfg Config) (*Gateway, error) {
	if cfg.Local == nil {
		return nil, fmt.Errorf("local log is required")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = timeouts.RemoteFetch
	}
	if cfg.SaveTimeout <= 0 {
		cfg.SaveTimeout = timeouts.RemoteSave
	}
	return &Gateway{
		local:        cfg.Local,
		remote:       cfg.Remote,
		retention:    cfg.Retention,
		now:          cfg.Now,
		fetchTimeout: cfg.FetchTimeout,
		saveTimeout:  cfg.SaveTimeout,
		onSync:       cfg.OnSync,
	}, nil
}

// IsAlreadyPersisted reports whether the local log holds entry. Entries with
// an id match by id only; others match on exact text and ascii.
func (g *Gateway) IsAlreadyPersisted(ctx context.Context, entry domain.Dream) (bool, error) {
	items, err := g.local.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("load journal: %w", err)
	}
	return contains(items, entry), nil
}

// Persist stores entry unless it is already present and then saves it to the
// remote store in the background. It reports whether a new entry was written.
// Remote failures never undo or delay the local write.
func (g *Gateway) Persist(ctx context.Context, entry domain.Dream) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	items, err := g.local.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("load journal: %w", err)
	}
	if contains(items, entry) {
		return false, nil
	}
	entry.TS = domain.ToMillis(g.now())
	if err := g.local.Append(ctx, entry, g.retention.Limit()); err != nil {
		return false, fmt.Errorf("append journal: %w", err)
	}
	if g.remote != nil {
		g.saveRemote(context.WithoutCancel(ctx), entry)
	}
	return true, nil
}

func (g *Gateway) saveRemote(ctx context.Context, entry domain.Dream) {
	g.inflight.Add(1)
	go func() {
		defer g.inflight.Done()
		ctx, cancel := context.WithTimeout(ctx, g.saveTimeout)
		defer cancel()

		res, err := g.remote.Save(ctx, entry)
		if err != nil {
			log.Printf("journal: remote save %s: %v", entry.ID, err)
		}
		if g.onSync != nil {
			g.onSync(SyncResult{Entry: entry, Saved: res.Saved, Message: res.Message, Err: err})
		}
	}()
}

// LoadFromRemote refreshes the local mirror from the remote store. A
// non-empty remote list replaces the mirror in chronological order and is
// returned; an empty list, a failure or a timeout returns the local log.
func (g *Gateway) LoadFromRemote(ctx context.Context) ([]domain.Dream, error) {
	if g.remote == nil {
		return g.Entries(ctx)
	}
	fetchCtx, cancel := context.WithTimeout(ctx, g.fetchTimeout)
	dreams, err := g.remote.List(fetchCtx)
	cancel()
	if err != nil {
		log.Printf("journal: remote load failed, using local log: %v", err)
		return g.Entries(ctx)
	}
	if len(dreams) == 0 {
		return g.Entries(ctx)
	}

	ordered := slices.Clone(dreams)
	slices.SortStableFunc(ordered, func(a, b domain.Dream) int {
		return cmp.Compare(a.TS, b.TS)
	})
	limit := g.retention.Limit()

	g.mu.Lock()
	err = g.local.Replace(ctx, ordered, limit)
	g.mu.Unlock()
	if err != nil {
		log.Printf("journal: mirror remote log: %v", err)
	}
	return storage.Trim(ordered, limit), nil
}

// Entries returns the local mirror, oldest first.
func (g *Gateway) Entries(ctx context.Context) ([]domain.Dream, error) {
	items, err := g.local.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load journal: %w", err)
	}
	return items, nil
}

// Close waits for in-flight remote saves.
func (g *Gateway) Close() {
	g.inflight.Wait()
}

func contains(items []domain.Dream, entry domain.Dream) bool {
	for _, item := range items {
		if entry.SameEntry(item) {
			return true
		}
	}
	return false
}
