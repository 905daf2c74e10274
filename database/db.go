// Package database is the read side of the dashboard: it resolves
// (line, station) to the physical per-station test-log SQLite file, runs
// the windowed queries, and aggregates raw tst_record rows into the
// tallies and grids the pages render.
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"shiftstat/config"
	"shiftstat/jobs"
)

// ErrStoreNotFound marks a configured store whose database file does not
// exist on disk. The stores are owned and written by the test stations;
// this process never creates them.
var ErrStoreNotFound = errors.New("store database file not found")

// maxConnsPerStore bounds each store's pool. The stations write to these
// files over the network share, so we keep our read footprint small.
const maxConnsPerStore = 4

// DB manages bounded connection pools to the physical stores, opened
// lazily by file path.
type DB struct {
	mu    sync.RWMutex
	conns map[string]*sql.DB
	cfg   *config.Config
	pool  *jobs.WorkerPool
}

// New wraps the configured stores. Connections open on first use.
func New(cfg *config.Config, pool *jobs.WorkerPool) *DB {
	return &DB{
		conns: make(map[string]*sql.DB),
		cfg:   cfg,
		pool:  pool,
	}
}

// storeByPath returns the pool for one database file, opening it on first
// use. A missing file is ErrStoreNotFound, checked on every call so a
// store that disappears after startup is still reported correctly.
func (db *DB) storeByPath(path string) (*sql.DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrStoreNotFound, path)
	}

	// Fast path: check with read lock.
	db.mu.RLock()
	if conn, ok := db.conns[path]; ok {
		db.mu.RUnlock()
		return conn, nil
	}
	db.mu.RUnlock()

	db.mu.Lock()
	defer db.mu.Unlock()

	// Double check in case another goroutine connected while we waited.
	if conn, ok := db.conns[path]; ok {
		return conn, nil
	}

	conn, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open store %s: %w", path, err)
	}
	conn.SetMaxOpenConns(maxConnsPerStore)
	conn.SetMaxIdleConns(maxConnsPerStore)

	db.conns[path] = conn
	return conn, nil
}

// store resolves and opens the database backing a (line, station) pair.
func (db *DB) store(line, station string) (*sql.DB, error) {
	path, ok := db.cfg.StorePath(line, station)
	if !ok {
		return nil, fmt.Errorf("no store configured for line %s station %s", line, station)
	}
	return db.storeByPath(path)
}

// StoreExists reports whether the file backing a (line, station) pair is
// present, without opening it.
func (db *DB) StoreExists(line, station string) bool {
	path, ok := db.cfg.StorePath(line, station)
	if !ok {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// Close releases every open pool.
func (db *DB) Close() {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, conn := range db.conns {
		conn.Close()
	}
	db.conns = make(map[string]*sql.DB)
}
