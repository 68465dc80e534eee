// Package cache stores a source-hash-keyed cache of compiled stage output in
// a modernc.org/sqlite database, mirroring the teacher's
// server/dao/sqlite/sqlite.go: one small store struct wrapping a *sql.DB,
// tables created on open, and blobs round-tripped through
// github.com/dekarrin/rezi exactly as that file encodes game state
// (SPEC_FULL.md §3.2).
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dekarrin/rezi"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by Get when no cached entry exists for a key.
var ErrNotFound = errors.New("cache: no entry for key")

// stageBundle is the rezi-encoded payload stored per cache key. It exists
// only so rezi has a single concrete type to walk, the same role
// convertToDB_GameStatePtr's *game.State argument plays in the teacher.
type stageBundle struct {
	Stages map[string]string
}

// HistoryEntry is one row logged by LogCompile, served back by the
// /v1/history endpoint (SPEC_FULL.md §3.3).
type HistoryEntry struct {
	ID         string
	CreatedAt  time.Time
	SourceHash string
	API        string
	StageCount int
}

// Store is a sqlite-backed cache of compiled GLSL stage output, plus a log
// of past compiles. One Store wraps exactly one *sql.DB, same as the
// teacher's store wrapping db/gameDataDB.
type Store struct {
	path string
	db   *sql.DB
}

// Open creates (if needed) the parent directory of path and opens or
// initializes the sqlite database there.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0770); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	s := &Store{path: path, db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS compiled_cache (
			cache_key TEXT PRIMARY KEY,
			stages    BLOB NOT NULL,
			created   INTEGER NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("init compiled_cache table: %w", err)
	}

	_, err = s.db.Exec(`
		CREATE TABLE IF NOT EXISTS compile_history (
			id          TEXT PRIMARY KEY,
			created     INTEGER NOT NULL,
			source_hash TEXT NOT NULL,
			api         TEXT NOT NULL,
			stage_count INTEGER NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("init compile_history table: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Key derives the cache key for a given source + target API, per
// SPEC_FULL.md §3.2: sha256(source-bytes) + target-API-name.
func Key(source []byte, api string) string {
	sum := sha256.Sum256(source)
	return hex.EncodeToString(sum[:]) + ":" + api
}

// Get looks up a previously-cached compile result. It returns ErrNotFound if
// key has never been stored.
func (s *Store) Get(key string) (map[string]string, error) {
	var blob []byte
	row := s.db.QueryRow(`SELECT stages FROM compiled_cache WHERE cache_key = ?`, key)
	if err := row.Scan(&blob); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query cache: %w", err)
	}

	var bundle stageBundle
	n, err := rezi.DecBinary(blob, &bundle)
	if err != nil {
		return nil, fmt.Errorf("REZI decode: %w", err)
	}
	if n != len(blob) {
		return nil, fmt.Errorf("REZI decoded byte count mismatch; only consumed %d/%d bytes", n, len(blob))
	}
	return bundle.Stages, nil
}

// Put stores a compile result under key, overwriting any previous entry.
func (s *Store) Put(key string, stages map[string]string) error {
	bundle := stageBundle{Stages: stages}
	blob := rezi.EncBinary(&bundle)

	_, err := s.db.Exec(
		`INSERT INTO compiled_cache (cache_key, stages, created) VALUES (?, ?, ?)
		 ON CONFLICT(cache_key) DO UPDATE SET stages = excluded.stages, created = excluded.created`,
		key, blob, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("store cache entry: %w", err)
	}
	return nil
}

// LogCompile records one successful compile for the /v1/history endpoint.
func (s *Store) LogCompile(sourceHash, api string, stageCount int) (string, error) {
	id := uuid.New().String()
	_, err := s.db.Exec(
		`INSERT INTO compile_history (id, created, source_hash, api, stage_count) VALUES (?, ?, ?, ?, ?)`,
		id, time.Now().Unix(), sourceHash, api, stageCount,
	)
	if err != nil {
		return "", fmt.Errorf("log compile history: %w", err)
	}
	return id, nil
}

// History returns the most recent compile log entries, newest first, capped
// at limit rows.
func (s *Store) History(limit int) ([]HistoryEntry, error) {
	rows, err := s.db.Query(
		`SELECT id, created, source_hash, api, stage_count FROM compile_history ORDER BY created DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query compile history: %w", err)
	}
	defer rows.Close()

	var out []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var created int64
		if err := rows.Scan(&e.ID, &created, &e.SourceHash, &e.API, &e.StageCount); err != nil {
			return nil, fmt.Errorf("scan compile history row: %w", err)
		}
		e.CreatedAt = time.Unix(created, 0)
		out = append(out, e)
	}
	return out, rows.Err()
}
