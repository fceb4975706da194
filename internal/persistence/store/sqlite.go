// Package store keeps the persisted game in sqlite: one row per snapshot id
// holding the encoded snapshot and its version stamp.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/konrad-jamrozik/game-ts-sub002/internal/persistence/snapshot"
)

var ErrNotFound = errors.New("snapshot not found")

type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			id TEXT PRIMARY KEY,
			version INTEGER NOT NULL,
			turn INTEGER NOT NULL,
			digest TEXT NOT NULL,
			root_state BLOB NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1');`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

// Put replaces the row for snap's id.
func (s *SQLiteStore) Put(ctx context.Context, snap snapshot.Snapshot) error {
	b, err := snapshot.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	h := snap.Header
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO snapshots(id,version,turn,digest,root_state,updated_at) VALUES(?,?,?,?,?,?)`,
		h.ID, h.Version, h.Turn, h.Digest, b, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("put snapshot %s: %w", h.ID, err)
	}
	return nil
}

// Get loads the snapshot stored under id. A row stamped with another
// version is deleted and reported as snapshot.ErrVersionMismatch, so the
// caller starts fresh.
func (s *SQLiteStore) Get(ctx context.Context, id string, version int) (snapshot.Snapshot, error) {
	var (
		have int
		raw  []byte
	)
	err := s.db.QueryRowContext(ctx, `SELECT version, root_state FROM snapshots WHERE id = ?`, id).Scan(&have, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return snapshot.Snapshot{}, ErrNotFound
	}
	if err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("get snapshot %s: %w", id, err)
	}
	if have != version {
		if err := s.Delete(ctx, id); err != nil {
			return snapshot.Snapshot{}, err
		}
		return snapshot.Snapshot{}, fmt.Errorf("%w: row %s has %d, want %d", snapshot.ErrVersionMismatch, id, have, version)
	}
	snap, err := snapshot.Unmarshal(raw, version)
	if err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("decode snapshot %s: %w", id, err)
	}
	return snap, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete snapshot %s: %w", id, err)
	}
	return nil
}
