// Package templatecache is the durable path→content store for reference
// templates mirrored from the remote corpus. Writes are unconditional
// upserts keyed by path; nothing is ever deleted or expired.
package templatecache

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const (
	driverName  = "sqlite"
	maxAttempts = 5
)

// Record is one cached template. A resync fully overwrites the row.
type Record struct {
	Path        string
	Content     string
	LastUpdated time.Time
}

type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

func Open(path string, busyTimeout time.Duration) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("cache path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("cache path %q is a directory, expected file", cleanPath)
	}
	if busyTimeout <= 0 {
		busyTimeout = 2 * time.Second
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache directory %q: %w", dir, err)
		}
	}

	// busy_timeout + WAL reduce lock conflicts between overlapping sync runs.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)",
		cleanPath, busyTimeout.Milliseconds())
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite cache %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite cache %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Put upserts one template. Last write wins.
func (s *Store) Put(path, content string, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("template path must not be empty")
	}
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	query := `
INSERT INTO templates (path, content, last_updated_utc) VALUES (?, ?, ?)
ON CONFLICT(path) DO UPDATE SET
  content=excluded.content,
  last_updated_utc=excluded.last_updated_utc
`
	return s.withRetry("put template", func() error {
		_, err := s.db.Exec(query, path, content, updatedAt.UTC().Format(time.RFC3339Nano))
		return err
	})
}

// Get returns the record for a path, or ok=false when absent.
func (s *Store) Get(path string) (Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		record Record
		tsRaw  string
	)
	err := s.withRetry("get template", func() error {
		return s.db.QueryRow(
			`SELECT path, content, last_updated_utc FROM templates WHERE path = ?`, path,
		).Scan(&record.Path, &record.Content, &tsRaw)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, false, nil
		}
		return Record{}, false, err
	}

	ts, err := time.Parse(time.RFC3339Nano, tsRaw)
	if err != nil {
		return Record{}, false, fmt.Errorf("parse template timestamp %q: %w", tsRaw, err)
	}
	record.LastUpdated = ts.UTC()

	return record, true, nil
}

// ListPaths returns the cached key set only. It deliberately projects the
// path column so listing cost does not grow with template content size.
func (s *Store) ListPaths() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows *sql.Rows
	err := s.withRetry("list template paths", func() error {
		var qErr error
		rows, qErr = s.db.Query(`SELECT path FROM templates ORDER BY path ASC`)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	paths := make([]string, 0)
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan template path: %w", err)
		}
		paths = append(paths, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate template paths: %w", err)
	}

	return paths, nil
}

// Count returns the number of cached templates.
func (s *Store) Count() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	err := s.withRetry("count templates", func() error {
		return s.db.QueryRow(`SELECT COUNT(*) FROM templates`).Scan(&n)
	})
	return n, err
}

func (s *Store) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		time.Sleep(time.Duration(attempt*25) * time.Millisecond)
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}
