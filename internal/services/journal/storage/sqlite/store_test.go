package sqlite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/louisbranch/somnia/internal/services/journal/domain"
	"github.com/louisbranch/somnia/internal/services/journal/storage"
)

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestLoadEmptyStore(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	entries, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if entries == nil || len(entries) != 0 {
		t.Fatalf("entries = %#v, want empty non-nil slice", entries)
	}
}

func TestAppendLoadRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	input := domain.Dream{ID: "json-0", Text: "Hello. World!", ASCII: "(-_-)", TS: 1760572800123}
	if err := store.Append(context.Background(), input, 50); err != nil {
		t.Fatalf("append: %v", err)
	}

	entries, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	if entries[0] != input {
		t.Fatalf("entry = %+v, want %+v", entries[0], input)
	}
}

func TestAppendTrimsToNewest(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	for i := 0; i < 60; i++ {
		if err := store.Append(context.Background(), domain.Dream{ID: fmt.Sprintf("d-%d", i), Text: "t"}, 1000); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
	if err := store.Append(context.Background(), domain.Dream{ID: "d-60", Text: "t"}, 50); err != nil {
		t.Fatalf("append trimmed: %v", err)
	}

	entries, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(entries) != 50 {
		t.Fatalf("entries = %d, want 50", len(entries))
	}
	for i, entry := range entries {
		if want := fmt.Sprintf("d-%d", i+11); entry.ID != want {
			t.Fatalf("entry %d = %q, want %q", i, entry.ID, want)
		}
	}
}

func TestReplaceOverwritesAndTrims(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	if err := store.Append(context.Background(), domain.Dream{ID: "old", Text: "old"}, 50); err != nil {
		t.Fatalf("append: %v", err)
	}
	remote := []domain.Dream{{ID: "a", Text: "a", TS: 1}, {ID: "b", Text: "b", TS: 2}, {ID: "c", Text: "c", TS: 3}}
	if err := store.Replace(context.Background(), remote, 2); err != nil {
		t.Fatalf("replace: %v", err)
	}

	entries, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(entries) != 2 || entries[0].ID != "b" || entries[1].ID != "c" {
		t.Fatalf("entries = %+v, want [b c]", entries)
	}
}

func TestAppendRejectsInvalidLimit(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	err := store.Append(context.Background(), domain.Dream{Text: "x"}, 0)
	if !errors.Is(err, storage.ErrInvalidLimit) {
		t.Fatalf("append error = %v, want %v", err, storage.ErrInvalidLimit)
	}
}

func TestLoadHonorsCanceledContext(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.Load(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("load error = %v, want context.Canceled", err)
	}
}

func TestReopenKeepsEntries(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "journal.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := store.Append(context.Background(), domain.Dream{ID: "keep", Text: "kept"}, 50); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	entries, err := reopened.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "keep" {
		t.Fatalf("entries = %+v", entries)
	}
}

func openTempStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journal.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}
