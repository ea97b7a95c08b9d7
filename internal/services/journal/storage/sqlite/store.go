// Package sqlite provides a SQLite-backed journal mirror.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sqlitemigrate "github.com/louisbranch/somnia/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/somnia/internal/services/journal/domain"
	"github.com/louisbranch/somnia/internal/services/journal/storage"
	"github.com/louisbranch/somnia/internal/services/journal/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store persists the journal mirror in SQLite.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a SQLite journal store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(context.Background(), sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Load returns every stored entry, oldest first.
func (s *Store) Load(ctx context.Context) ([]domain.Dream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT dream_id, text, ascii, ts
		   FROM journal_entries
		  ORDER BY seq ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("load journal entries: %w", err)
	}
	defer rows.Close()

	entries := []domain.Dream{}
	for rows.Next() {
		var entry domain.Dream
		if err := rows.Scan(&entry.ID, &entry.Text, &entry.ASCII, &entry.TS); err != nil {
			return nil, fmt.Errorf("load journal entries: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load journal entries: %w", err)
	}
	return entries, nil
}

// Append adds one entry and trims the log to limit in the same transaction.
func (s *Store) Append(ctx context.Context, entry domain.Dream, limit int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		return storage.ErrInvalidLimit
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := insertEntry(ctx, tx, entry); err != nil {
			return fmt.Errorf("append journal entry: %w", err)
		}
		return trim(ctx, tx, limit)
	})
}

// Replace overwrites the log with entries and trims it to limit.
func (s *Store) Replace(ctx context.Context, entries []domain.Dream, limit int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		return storage.ErrInvalidLimit
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM journal_entries`); err != nil {
			return fmt.Errorf("clear journal entries: %w", err)
		}
		for _, entry := range storage.Trim(entries, limit) {
			if err := insertEntry(ctx, tx, entry); err != nil {
				return fmt.Errorf("replace journal entries: %w", err)
			}
		}
		return nil
	})
}

func (s *Store) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func insertEntry(ctx context.Context, tx *sql.Tx, entry domain.Dream) error {
	_, err := tx.ExecContext(
		ctx,
		`INSERT INTO journal_entries (dream_id, text, ascii, ts) VALUES (?, ?, ?, ?)`,
		entry.ID,
		entry.Text,
		entry.ASCII,
		entry.TS,
	)
	return err
}

func trim(ctx context.Context, tx *sql.Tx, limit int) error {
	_, err := tx.ExecContext(
		ctx,
		`DELETE FROM journal_entries
		  WHERE seq NOT IN (
		        SELECT seq FROM journal_entries ORDER BY seq DESC LIMIT ?
		  )`,
		limit,
	)
	if err != nil {
		return fmt.Errorf("trim journal entries: %w", err)
	}
	return nil
}

var _ storage.LocalLog = (*Store)(nil)
