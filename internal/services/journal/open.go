package journal

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/louisbranch/somnia/internal/services/journal/gateway"
	"github.com/louisbranch/somnia/internal/services/journal/remote"
	"github.com/louisbranch/somnia/internal/services/journal/storage"
	"github.com/louisbranch/somnia/internal/services/journal/storage/jsonfile"
	"github.com/louisbranch/somnia/internal/services/journal/storage/sqlite"
)

// StoreOptions selects the local mirror and the remote endpoint.
type StoreOptions struct {
	// DBPath selects the SQLite mirror. It wins over File when both are set.
	DBPath string
	// File selects the single JSON file mirror.
	File string
	// APIEndpoint is the dreams proxy resource. Empty keeps the journal local.
	APIEndpoint string
	Retention   gateway.Retention
	OnSync      func(gateway.SyncResult)
}

// Opened is a ready gateway plus the resources behind it.
type Opened struct {
	Gateway *gateway.Gateway
	closers []func() error
}

// Close waits for background saves and releases local storage.
func (o *Opened) Close() error {
	if o == nil {
		return nil
	}
	if o.Gateway != nil {
		o.Gateway.Close()
	}
	var errs []error
	for i := len(o.closers) - 1; i >= 0; i-- {
		if err := o.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Open builds the journal gateway described by opts.
func Open(opts StoreOptions) (*Opened, error) {
	opened := &Opened{}

	var local storage.LocalLog
	switch {
	case strings.TrimSpace(opts.DBPath) != "":
		store, err := sqlite.Open(opts.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open journal db: %w", err)
		}
		opened.closers = append(opened.closers, store.Close)
		local = store
	case strings.TrimSpace(opts.File) != "":
		store, err := jsonfile.Open(opts.File)
		if err != nil {
			return nil, fmt.Errorf("open journal file: %w", err)
		}
		local = store
	default:
		return nil, errors.New("journal db path or journal file is required")
	}

	var rem gateway.Remote
	if endpoint := strings.TrimSpace(opts.APIEndpoint); endpoint != "" {
		client, err := remote.NewClient(remote.Config{Endpoint: endpoint})
		if err != nil {
			_ = opened.Close()
			return nil, fmt.Errorf("init remote journal: %w", err)
		}
		rem = client
	} else {
		log.Printf("journal: no API endpoint configured, keeping the log local")
	}

	gw, err := gateway.New(gateway.Config{
		Local:     local,
		Remote:    rem,
		Retention: opts.Retention,
		OnSync:    opts.OnSync,
	})
	if err != nil {
		_ = opened.Close()
		return nil, fmt.Errorf("init journal gateway: %w", err)
	}
	opened.Gateway = gw
	return opened, nil
}
