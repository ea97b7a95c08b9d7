package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/somnia/internal/platform/timeouts"
	journal "github.com/louisbranch/somnia/internal/services/journal/domain"
)

const (
	defaultJournalLimit = 20
	maxJournalLimit     = 100
)

// JournalLister reads the remote journal, newest first.
type JournalLister interface {
	List(ctx context.Context) ([]journal.Dream, error)
}

// JournalEntriesInput represents the MCP tool input for listing the journal.
type JournalEntriesInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum entries to return (default 20, max 100)"`
}

// JournalEntry is one logged dream.
type JournalEntry struct {
	ID         string `json:"id" jsonschema:"dream identifier"`
	Text       string `json:"text" jsonschema:"dream text"`
	ASCII      string `json:"ascii,omitempty" jsonschema:"ascii art"`
	CapturedAt string `json:"captured_at,omitempty" jsonschema:"RFC3339 timestamp when the dream was logged"`
}

// JournalEntriesResult represents the MCP tool output for listing the journal.
type JournalEntriesResult struct {
	Entries []JournalEntry `json:"entries" jsonschema:"logged dreams, newest first"`
	Total   int            `json:"total" jsonschema:"entries available before the limit"`
}

// JournalEntriesTool defines the MCP tool schema for listing the journal.
func JournalEntriesTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "journal_entries",
		Description: "Lists dreams recorded in the shared journal, newest first.",
	}
}

// JournalEntriesHandler lists journal entries through the dreams proxy.
func JournalEntriesHandler(lister JournalLister) mcp.ToolHandlerFor[JournalEntriesInput, JournalEntriesResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input JournalEntriesInput) (*mcp.CallToolResult, JournalEntriesResult, error) {
		if lister == nil {
			return nil, JournalEntriesResult{}, fmt.Errorf("journal is not configured")
		}
		limit := input.Limit
		switch {
		case limit < 0:
			return nil, JournalEntriesResult{}, invalidArgument("limit", fmt.Errorf("must not be negative"))
		case limit == 0:
			limit = defaultJournalLimit
		case limit > maxJournalLimit:
			limit = maxJournalLimit
		}

		runCtx, cancel := context.WithTimeout(ctx, timeouts.RemoteFetch)
		defer cancel()
		dreams, err := lister.List(runCtx)
		if err != nil {
			return nil, JournalEntriesResult{}, fmt.Errorf("journal list failed: %w", err)
		}

		result := JournalEntriesResult{Entries: []JournalEntry{}, Total: len(dreams)}
		for i, dream := range dreams {
			if i == limit {
				break
			}
			entry := JournalEntry{ID: dream.ID, Text: dream.Text, ASCII: dream.ASCII}
			if at := dream.CapturedAt(); !at.IsZero() {
				entry.CapturedAt = at.Format(time.RFC3339)
			}
			result.Entries = append(result.Entries, entry)
		}
		return nil, result, nil
	}
}

func invalidArgument(name string, err error) error {
	return fmt.Errorf("invalid %s: %w", name, err)
}
