// Package analytics aggregates process-lifetime interaction counters:
// totals, per-command, per-event-type, and calendar/hour buckets.
package analytics

import (
	"sync"
	"time"

	"github.com/ayoubcharbel/telegram-bot/model"
)

// Tracker accumulates aggregate counters. All counters are monotonically
// increasing and scoped to the process lifetime.
type Tracker struct {
	mu          sync.Mutex
	total       int64
	users       map[int64]struct{}
	byEventType map[string]int64
	byCommand   map[string]int64
	byDay       map[string]int64
	byHour      map[int]int64
	now         func() time.Time
}

// New creates an empty Tracker.
func New() *Tracker {
	return &Tracker{
		users:       make(map[int64]struct{}),
		byEventType: make(map[string]int64),
		byCommand:   make(map[string]int64),
		byDay:       make(map[string]int64),
		byHour:      make(map[int]int64),
		now:         time.Now,
	}
}

var knownTypes = map[model.EventType]struct{}{
	model.EventSticker:  {},
	model.EventPhoto:    {},
	model.EventVideo:    {},
	model.EventDocument: {},
	model.EventVoice:    {},
	model.EventText:     {},
	model.EventOther:    {},
}

// Track records one interaction. Unrecognized event types fall into the
// "other" bucket rather than erroring. Daily and hourly buckets use the
// wall clock at call time, not event time. command is the invoked
// command name, empty for plain events.
func (t *Tracker) Track(userID int64, eventType model.EventType, command string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()

	t.total++
	t.users[userID] = struct{}{}

	if _, ok := knownTypes[eventType]; !ok {
		eventType = model.EventOther
	}
	t.byEventType[string(eventType)]++

	if command != "" {
		t.byCommand[command]++
	}

	t.byDay[now.Format("2006-01-02")]++
	t.byHour[now.Hour()]++
}

// Snapshot returns a deep copy of the current counters.
func (t *Tracker) Snapshot() model.AnalyticsSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap := model.AnalyticsSnapshot{
		TotalInteractions: t.total,
		UniqueUsers:       len(t.users),
		ByEventType:       make(map[string]int64, len(t.byEventType)),
		ByCommand:         make(map[string]int64, len(t.byCommand)),
		ByDay:             make(map[string]int64, len(t.byDay)),
		ByHour:            make(map[int]int64, len(t.byHour)),
	}
	for k, v := range t.byEventType {
		snap.ByEventType[k] = v
	}
	for k, v := range t.byCommand {
		snap.ByCommand[k] = v
	}
	for k, v := range t.byDay {
		snap.ByDay[k] = v
	}
	for k, v := range t.byHour {
		snap.ByHour[k] = v
	}
	return snap
}
