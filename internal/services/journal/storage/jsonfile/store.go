// Package jsonfile keeps the journal mirror as one JSON array in a file, the
// same shape a browser keeps under a single local-storage key.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/louisbranch/somnia/internal/services/journal/domain"
	"github.com/louisbranch/somnia/internal/services/journal/storage"
)

// Store persists the journal mirror as a JSON file.
type Store struct {
	path string
	mu   sync.Mutex
}

// Open returns a store for path. The file is created on first write.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	return &Store{path: filepath.Clean(path)}, nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load returns every stored entry, oldest first. A missing or corrupt file
// loads as an empty log.
func (s *Store) Load(ctx context.Context) ([]domain.Dream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

// Append adds one entry and trims the file to limit.
func (s *Store) Append(ctx context.Context, entry domain.Dream, limit int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if limit <= 0 {
		return storage.ErrInvalidLimit
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.read()
	if err != nil {
		return err
	}
	return s.write(storage.Trim(append(items, entry), limit))
}

// Replace overwrites the file with entries trimmed to limit.
func (s *Store) Replace(ctx context.Context, entries []domain.Dream, limit int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if limit <= 0 {
		return storage.ErrInvalidLimit
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]domain.Dream, len(entries))
	copy(items, entries)
	return s.write(storage.Trim(items, limit))
}

func (s *Store) read() ([]domain.Dream, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []domain.Dream{}, nil
		}
		return nil, fmt.Errorf("read journal file: %w", err)
	}
	var items []domain.Dream
	if err := json.Unmarshal(data, &items); err != nil {
		log.Printf("journal: ignoring unreadable %s: %v", s.path, err)
		return []domain.Dream{}, nil
	}
	if items == nil {
		items = []domain.Dream{}
	}
	return items, nil
}

func (s *Store) write(items []domain.Dream) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal journal: %w", err)
	}
	if err := writeFileAtomic(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write journal file: %w", err)
	}
	return nil
}

func writeFileAtomic(path string, data []byte, mode fs.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".tmp_journal_*.json")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if err := tmp.Chmod(mode); err != nil {
		_ = tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

var _ storage.LocalLog = (*Store)(nil)
