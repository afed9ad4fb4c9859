package model

import (
	"testing"
	"time"
)

func TestPatchApply(t *testing.T) {
	seen := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	r := &ActivityRecord{UserID: 1, Username: "alice", MessageCount: 3}
	r.Recompute()

	UserPatch{MessageDelta: 1, Seen: seen}.Apply(r)

	if r.MessageCount != 4 {
		t.Errorf("MessageCount = %d, want 4", r.MessageCount)
	}
	if r.TotalActivity != 4 {
		t.Errorf("TotalActivity = %d, want 4", r.TotalActivity)
	}
	if !r.LastSeen.Equal(seen) {
		t.Errorf("LastSeen = %v, want %v", r.LastSeen, seen)
	}
	if r.Username != "alice" {
		t.Errorf("empty patch username overwrote existing value: %q", r.Username)
	}
}

func TestPatchLastNonEmptyWins(t *testing.T) {
	r := &ActivityRecord{UserID: 1, Username: "old", FirstName: "Old"}

	UserPatch{Username: "new"}.Apply(r)

	if r.Username != "new" {
		t.Errorf("Username = %q, want new", r.Username)
	}
	if r.FirstName != "Old" {
		t.Errorf("FirstName = %q, want Old (unsupplied fields keep prior value)", r.FirstName)
	}
}

func TestNewRecordFirstSeen(t *testing.T) {
	seen := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	r := NewRecord(7, UserPatch{StickerDelta: 1, Seen: seen})

	if !r.FirstSeen.Equal(seen) {
		t.Errorf("FirstSeen = %v, want %v", r.FirstSeen, seen)
	}
	if !r.LastSeen.Equal(seen) {
		t.Errorf("LastSeen = %v, want %v", r.LastSeen, seen)
	}
	if r.StickerCount != 1 || r.TotalActivity != 1 {
		t.Errorf("counts = (%d, total %d), want (1, 1)", r.StickerCount, r.TotalActivity)
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name   string
		record ActivityRecord
		want   string
	}{
		{"Username preferred", ActivityRecord{Username: "alice", FirstName: "Alice"}, "@alice"},
		{"FirstName fallback", ActivityRecord{FirstName: "Alice"}, "Alice"},
		{"Anonymous", ActivityRecord{}, "anonymous"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.record.DisplayName(); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}
