// Package ledger is the write-side API over the Record Store: classify,
// get-or-create, increment, touch last-seen.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ayoubcharbel/telegram-bot/model"
	"github.com/ayoubcharbel/telegram-bot/store"
)

// DisplayInfo carries the optional name fields observed on an event.
type DisplayInfo struct {
	Username  string
	FirstName string
	LastName  string
}

// Ledger applies classified events to the Record Store.
type Ledger struct {
	store store.Store
	now   func() time.Time
}

// New creates a Ledger over the given store.
func New(s store.Store) *Ledger {
	return &Ledger{store: s, now: time.Now}
}

// RecordEvent resolves the user's record (creating it on first sight),
// applies at most one counter increment for the event type and
// unconditionally touches the last-seen timestamp. Counting policy:
// stickers increment StickerCount; text, photo, video, document and
// voice increment MessageCount; "other" events (commands, joins,
// unrecognized payloads) are not counted but still update last-seen.
func (l *Ledger) RecordEvent(ctx context.Context, userID int64, eventType model.EventType, display DisplayInfo) (*model.ActivityRecord, error) {
	patch := model.UserPatch{
		Username:  display.Username,
		FirstName: display.FirstName,
		LastName:  display.LastName,
		Seen:      l.now(),
	}

	switch eventType {
	case model.EventSticker:
		patch.StickerDelta = 1
	case model.EventText, model.EventPhoto, model.EventVideo, model.EventDocument, model.EventVoice:
		patch.MessageDelta = 1
	}

	r, err := l.store.Upsert(ctx, userID, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to record %s event for user %d: %w", eventType, userID, err)
	}

	log.Debug().
		Int64("user_id", userID).
		Str("event_type", string(eventType)).
		Int64("total_activity", r.TotalActivity).
		Msg("Event recorded")

	return r, nil
}

// GetUser returns the user's record, creating an empty one (all counters
// zero) on first sight. It never reports absence.
func (l *Ledger) GetUser(ctx context.Context, userID int64) (*model.ActivityRecord, error) {
	r, err := l.store.Get(ctx, userID)
	if err == store.ErrNotFound {
		return l.store.Upsert(ctx, userID, model.UserPatch{Seen: l.now()})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}
	return r, nil
}
