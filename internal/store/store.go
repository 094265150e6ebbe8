// Package store implements the persistence adapter (spec §4.10): a
// SQLite-backed CRUD, full-text search, and metadata layer behind a
// single-writer mutex discipline, grounded on the teacher's
// internal/memory/sqlite.go.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "modernc.org/sqlite"

	"github.com/josephgoksu/corpusgraph/internal/graph"
)

// EmbeddingDim is the canonical embedding dimension (spec §3).
const EmbeddingDim = 384

// snapshotCacheSize bounds how many region-scoped snapshots Store keeps
// warm; region views are rebuilt often by the MCP surface and CLI, so a
// small LRU avoids rebuilding the same view repeatedly within one session.
const snapshotCacheSize = 32

// Store is the sole persistence adapter. One process-wide RWMutex enforces
// single-writer discipline (spec §4.10): writers take Lock, readers take
// RLock, and a poisoned lock (recovered panic mid-write) is never allowed
// to propagate to the caller.
type Store struct {
	db   *sql.DB
	path string
	mu   sync.RWMutex

	snapshots  *lru.Cache[string, *graph.Snapshot]
	generation atomic.Uint64
}

// Open creates or opens the SQLite database at dbPath, under dir, and
// ensures the schema exists.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	dbPath := filepath.Join(dir, "corpus.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	cache, err := lru.New[string, *graph.Snapshot](snapshotCacheSize)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create snapshot cache: %w", err)
	}

	s := &Store{db: db, path: dbPath, snapshots: cache}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// withWriteLock recovers a poisoned lock (a panic mid-write under the
// mutex) by still releasing it, per spec §4.10 ("poisoned locks are
// recovered by taking the inner value; read/write paths must never panic
// the process").
func (s *Store) withWriteLock(fn func() error) (err error) {
	s.mu.Lock()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("recovered from panic in write path: %v", r)
		}
		s.mu.Unlock()
	}()
	err = fn()
	return err
}

func (s *Store) withReadLock(fn func() error) (err error) {
	s.mu.RLock()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("recovered from panic in read path: %v", r)
		}
		s.mu.RUnlock()
	}()
	err = fn()
	return err
}

// invalidateSnapshots drops every cached region snapshot; called after any
// structural write (node/edge CRUD, bulk edge emission).
func (s *Store) invalidateSnapshots() {
	s.snapshots.Purge()
	s.generation.Add(1)
}

// Generation returns a counter incremented once per structural write. A
// caller can compare successive reads to detect that
// a new snapshot generation is available without re-reading the database.
func (s *Store) Generation() uint64 {
	return s.generation.Load()
}

// Path returns the on-disk path of the underlying SQLite database file.
func (s *Store) Path() string {
	return s.path
}
