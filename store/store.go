// Package store provides the Record Store: one ActivityRecord per user,
// backed by a JSON file, a SQLite table, or Redis. All backends share the
// same contract: Upsert is an atomic insert-or-update keyed by user ID,
// so concurrent get-or-create races for the same new user always resolve
// to exactly one record.
package store

import (
	"context"
	"errors"

	"github.com/ayoubcharbel/telegram-bot/model"
)

// ErrNotFound is returned by Get when no record exists for the user.
var ErrNotFound = errors.New("store: record not found")

// Store is the Record Store contract shared by all backends.
type Store interface {
	// Get returns the record for userID, or ErrNotFound.
	Get(ctx context.Context, userID int64) (*model.ActivityRecord, error)

	// Upsert creates the record if absent (FirstSeen set once) and merges
	// the patch into it otherwise. At most one record per userID ever
	// exists; duplicate-insert races resolve to an update.
	Upsert(ctx context.Context, userID int64, patch model.UserPatch) (*model.ActivityRecord, error)

	// All returns every record. Order is unspecified.
	All(ctx context.Context) ([]*model.ActivityRecord, error)

	// ReplaceAll atomically swaps the entire record set. Used only by
	// restore-from-backup.
	ReplaceAll(ctx context.Context, records []*model.ActivityRecord) error

	// Close flushes pending state and releases resources.
	Close() error
}
