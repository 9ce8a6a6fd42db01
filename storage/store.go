// Package storage persists track metadata and fingerprint-index snapshots
// to a local SQLite database. The index's own wire format stays opaque
// (engine.Index.Snapshot/Restore); storage only owns the table holding
// that blob plus the human-facing track rows.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"soundtrace/engine"
)

// TrackRow is a track's persisted metadata, engine.TrackMeta plus the
// timestamp it was saved.
type TrackRow struct {
	engine.TrackMeta
	CreatedAt time.Time
}

// Store wraps a SQLite database holding the tracks table and a single-row
// index_snapshot table.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) a SQLite database at path and
// ensures its schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to sqlite database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createTables() error {
	const createTracks = `
	CREATE TABLE IF NOT EXISTS tracks (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		fingerprint_count INTEGER NOT NULL,
		duration_seconds REAL NOT NULL,
		created_at TIMESTAMP NOT NULL
	);`

	const createSnapshot = `
	CREATE TABLE IF NOT EXISTS index_snapshot (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		data BLOB NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);`

	if _, err := s.db.Exec(createTracks); err != nil {
		return fmt.Errorf("failed to create tracks table: %w", err)
	}
	if _, err := s.db.Exec(createSnapshot); err != nil {
		return fmt.Errorf("failed to create index_snapshot table: %w", err)
	}
	return nil
}

// SaveTrack upserts a track's metadata row, keyed on TrackID.
func (s *Store) SaveTrack(ctx context.Context, meta engine.TrackMeta) error {
	const query = `
	INSERT INTO tracks (id, name, fingerprint_count, duration_seconds, created_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		name = excluded.name,
		fingerprint_count = excluded.fingerprint_count,
		duration_seconds = excluded.duration_seconds`

	_, err := s.db.ExecContext(ctx, query, meta.ID, meta.Name, meta.FingerprintCount, meta.DurationSeconds, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save track %q: %w", meta.Name, err)
	}
	return nil
}

// ListTracks returns every persisted track row, ordered by id.
func (s *Store) ListTracks(ctx context.Context) ([]TrackRow, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, fingerprint_count, duration_seconds, created_at FROM tracks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracks: %w", err)
	}
	defer rows.Close()

	var out []TrackRow
	for rows.Next() {
		var row TrackRow
		if err := rows.Scan(&row.ID, &row.Name, &row.FingerprintCount, &row.DurationSeconds, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan track row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// DeleteTrack removes a single track row. It does not touch the
// fingerprint index snapshot; callers are expected to re-ingest and
// re-snapshot after removing a track (per the engine's single-writer
// model, a live index has no per-track delete).
func (s *Store) DeleteTrack(ctx context.Context, id engine.TrackID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM tracks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete track %d: %w", id, err)
	}
	return nil
}

// SaveSnapshot persists an engine.Index.Snapshot() blob as the single
// current index_snapshot row.
func (s *Store) SaveSnapshot(ctx context.Context, data []byte) error {
	const query = `
	INSERT INTO index_snapshot (id, data, updated_at) VALUES (1, ?, ?)
	ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`

	_, err := s.db.ExecContext(ctx, query, data, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save index snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot returns the last persisted snapshot blob, or (nil, false)
// if none has ever been saved.
func (s *Store) LoadSnapshot(ctx context.Context) ([]byte, bool, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM index_snapshot WHERE id = 1`).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load index snapshot: %w", err)
	}
	return data, true, nil
}

// EraseAll drops every row from both tables, used by the CLI's "erase"
// subcommand (both "erase db" and "erase all").
func (s *Store) EraseAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM tracks`); err != nil {
		return fmt.Errorf("failed to erase tracks: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM index_snapshot`); err != nil {
		return fmt.Errorf("failed to erase index snapshot: %w", err)
	}
	return nil
}
