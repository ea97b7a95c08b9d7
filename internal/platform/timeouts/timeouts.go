// Package timeouts defines shared timeout constants used across services.
// Centralizing these values prevents drift between service boundaries and
// makes the durations discoverable.
package timeouts

import "time"

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long an HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

// SourceFetch caps one attempt at fetching the dream source document.
// A timed-out attempt counts as a miss and the next location is tried.
const SourceFetch = 2500 * time.Millisecond

// RemoteFetch caps the startup read of the remote journal.
const RemoteFetch = 5 * time.Second

// RemoteSave caps one background save of a journal entry.
const RemoteSave = 10 * time.Second

// Upstream caps a single request from the dreams proxy to the hosted store.
const Upstream = 8 * time.Second
