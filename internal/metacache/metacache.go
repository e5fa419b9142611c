// Package metacache caches the raw content of a metadata file in a small
// SQLite database, keyed by the source file's path, size and
// modification time. A cache hit skips reading the file itself; the
// cached content is still parsed again into a Registry on every hit.
//
// A single-connection, WAL-mode modernc.org/sqlite database with a schema
// created on open. It is NOT used for computed ball-possession
// statistics; only the input registry is cached here.
package metacache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/debs2013/possession/internal/metadata"
	"github.com/debs2013/possession/internal/telemetry"
)

// Cache stores one row per metadata file path, holding a raw copy of the
// file's content alongside the size/mtime pair that invalidates it.
type Cache struct {
	db *sql.DB
}

// Open creates (if needed) and opens the cache database at path.
func Open(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("metacache: create dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("metacache: open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	const schema = `CREATE TABLE IF NOT EXISTS metadata_cache (
		path       TEXT PRIMARY KEY,
		size       INTEGER NOT NULL,
		mtime_unix INTEGER NOT NULL,
		content    BLOB NOT NULL,
		cached_at  TEXT NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("metacache: init schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Lookup returns the cached Registry for path if a fresh entry exists
// (matching size and modification time), or ok == false on a miss.
func (c *Cache) Lookup(path string, size int64, mtime time.Time) (reg *metadata.Registry, ok bool, err error) {
	var content []byte
	row := c.db.QueryRow(
		`SELECT content FROM metadata_cache WHERE path = ? AND size = ? AND mtime_unix = ?`,
		path, size, mtime.Unix(),
	)
	switch err := row.Scan(&content); err {
	case nil:
		reg, err := metadata.ParseBytes(content)
		if err != nil {
			return nil, false, fmt.Errorf("metacache: re-parse cached entry: %w", err)
		}
		return reg, true, nil
	case sql.ErrNoRows:
		return nil, false, nil
	default:
		return nil, false, fmt.Errorf("metacache: lookup: %w", err)
	}
}

// Store records path's raw content for future Lookup calls, replacing any
// stale entry for the same path.
func (c *Cache) Store(path string, size int64, mtime time.Time, content []byte) error {
	_, err := c.db.Exec(
		`INSERT INTO metadata_cache (path, size, mtime_unix, content, cached_at)
		 VALUES (?,?,?,?,?)
		 ON CONFLICT(path) DO UPDATE SET
			size = excluded.size,
			mtime_unix = excluded.mtime_unix,
			content = excluded.content,
			cached_at = excluded.cached_at`,
		path, size, mtime.Unix(), content, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("metacache: store: %w", err)
	}
	return nil
}

// LoadOrParse is the convenience entrypoint the pipeline calls: serve from
// cache on a hit, otherwise parse path from disk and populate the cache.
func (c *Cache) LoadOrParse(path string) (*metadata.Registry, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &metadata.NotFoundError{Path: path, Err: err}
	}

	if reg, ok, err := c.Lookup(path, info.Size(), info.ModTime()); err != nil {
		telemetry.Warnf("metacache: lookup failed, falling back to disk: %v", err)
	} else if ok {
		telemetry.Debugf("metacache: served %q from cache", path)
		return reg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &metadata.NotFoundError{Path: path, Err: err}
	}
	reg, err := metadata.ParseBytes(content)
	if err != nil {
		return nil, err
	}
	if err := c.Store(path, info.Size(), info.ModTime(), content); err != nil {
		telemetry.Warnf("metacache: store failed: %v", err)
	}
	return reg, nil
}

// Close releases the underlying database handle.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}
