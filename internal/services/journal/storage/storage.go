// Package storage defines the local mirror of the dream journal.
package storage

import (
	"context"
	"errors"

	"github.com/louisbranch/somnia/internal/services/journal/domain"
)

// ErrInvalidLimit indicates a trim bound below one entry.
var ErrInvalidLimit = errors.New("trim limit must be greater than zero")

// LocalLog persists the journal on this machine as an ordered, bounded list.
//
// Entries are kept in append order, oldest first. Every write trims the log
// to its newest limit entries so storage never grows without bound.
// Unreadable content loads as an empty log rather than failing.
type LocalLog interface {
	// Load returns every stored entry, oldest first.
	Load(ctx context.Context) ([]domain.Dream, error)
	// Append adds one entry and trims to limit.
	Append(ctx context.Context, entry domain.Dream, limit int) error
	// Replace overwrites the log with entries (oldest first) and trims to limit.
	Replace(ctx context.Context, entries []domain.Dream, limit int) error
}

// Trim returns the newest limit entries of items, preserving order.
func Trim(items []domain.Dream, limit int) []domain.Dream {
	if limit <= 0 || len(items) <= limit {
		return items
	}
	return items[len(items)-limit:]
}
