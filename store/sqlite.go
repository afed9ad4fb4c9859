package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/ayoubcharbel/telegram-bot/model"
)

// SQLiteStore persists records in a single `users` table. Counter
// increments are applied server-side (`message_count = message_count +
// delta`) inside an INSERT ... ON CONFLICT statement, so multiple bot
// processes sharing one database never lose updates to a read-modify-write
// split. total_activity is always computed in SELECT, never stored.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
	id            INTEGER PRIMARY KEY,
	username      TEXT NOT NULL DEFAULT '',
	first_name    TEXT NOT NULL DEFAULT '',
	last_name     TEXT NOT NULL DEFAULT '',
	message_count INTEGER NOT NULL DEFAULT 0,
	sticker_count INTEGER NOT NULL DEFAULT 0,
	first_seen    TEXT NOT NULL,
	last_activity TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_users_activity
	ON users (message_count + sticker_count DESC);
`

// NewSQLiteStore opens (creating if needed) the database at path and
// initializes the schema. Use ":memory:" for tests.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A pooled connection to :memory: would open a fresh empty database;
	// pin the pool to one connection so tests see a single store.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	log.Info().Str("path", path).Msg("SQLite store ready")
	return &SQLiteStore{db: db}, nil
}

const timeLayout = time.RFC3339Nano

func scanRecord(row interface{ Scan(...any) error }) (*model.ActivityRecord, error) {
	var r model.ActivityRecord
	var firstSeen, lastSeen string

	err := row.Scan(&r.UserID, &r.Username, &r.FirstName, &r.LastName,
		&r.MessageCount, &r.StickerCount, &firstSeen, &lastSeen)
	if err != nil {
		return nil, err
	}

	if r.FirstSeen, err = time.Parse(timeLayout, firstSeen); err != nil {
		return nil, fmt.Errorf("invalid first_seen for user %d: %w", r.UserID, err)
	}
	if r.LastSeen, err = time.Parse(timeLayout, lastSeen); err != nil {
		return nil, fmt.Errorf("invalid last_activity for user %d: %w", r.UserID, err)
	}
	r.Recompute()
	return &r, nil
}

const selectColumns = `id, username, first_name, last_name, message_count, sticker_count, first_seen, last_activity`

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, userID int64) (*model.ActivityRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM users WHERE id = ?`, userID)

	r, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user %d: %w", userID, err)
	}
	return r, nil
}

// Upsert implements Store. The whole merge happens in one statement:
// inserts carry the deltas as initial counts, conflicts add them to the
// existing counters and merge display fields last-non-empty-wins.
// first_seen is written once and never updated.
func (s *SQLiteStore) Upsert(ctx context.Context, userID int64, patch model.UserPatch) (*model.ActivityRecord, error) {
	seen := patch.Seen
	if seen.IsZero() {
		seen = time.Now()
	}
	ts := seen.UTC().Format(timeLayout)

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO users (id, username, first_name, last_name, message_count, sticker_count, first_seen, last_activity)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			username      = COALESCE(NULLIF(excluded.username, ''), username),
			first_name    = COALESCE(NULLIF(excluded.first_name, ''), first_name),
			last_name     = COALESCE(NULLIF(excluded.last_name, ''), last_name),
			message_count = message_count + excluded.message_count,
			sticker_count = sticker_count + excluded.sticker_count,
			last_activity = excluded.last_activity
		RETURNING `+selectColumns,
		userID, patch.Username, patch.FirstName, patch.LastName,
		patch.MessageDelta, patch.StickerDelta, ts, ts)

	r, err := scanRecord(row)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user %d: %w", userID, err)
	}
	return r, nil
}

// All implements Store.
func (s *SQLiteStore) All(ctx context.Context) ([]*model.ActivityRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM users`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var out []*model.ActivityRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return out, nil
}

// ReplaceAll implements Store. Runs in a transaction so a failed restore
// leaves the previous table contents untouched.
func (s *SQLiteStore) ReplaceAll(ctx context.Context, records []*model.ActivityRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin restore transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM users`); err != nil {
		return fmt.Errorf("failed to clear users: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO users (id, username, first_name, last_name, message_count, sticker_count, first_seen, last_activity)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare restore insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		_, err := stmt.ExecContext(ctx, r.UserID, r.Username, r.FirstName, r.LastName,
			r.MessageCount, r.StickerCount,
			r.FirstSeen.UTC().Format(timeLayout), r.LastSeen.UTC().Format(timeLayout))
		if err != nil {
			return fmt.Errorf("failed to restore user %d: %w", r.UserID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit restore: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
