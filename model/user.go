package model

import "time"

// ActivityRecord holds per-user message/sticker counters and metadata.
// TotalActivity is derived from MessageCount + StickerCount and is
// recomputed on every mutation; it is never settable on its own.
type ActivityRecord struct {
	UserID        int64     `json:"userID"`
	Username      string    `json:"username,omitempty"` // without leading @
	FirstName     string    `json:"firstName,omitempty"`
	LastName      string    `json:"lastName,omitempty"`
	MessageCount  int64     `json:"messageCount"`
	StickerCount  int64     `json:"stickerCount"`
	TotalActivity int64     `json:"totalActivity"`
	FirstSeen     time.Time `json:"firstSeen"`
	LastSeen      time.Time `json:"lastSeen"`
}

// Recompute refreshes the derived TotalActivity field.
func (r *ActivityRecord) Recompute() {
	r.TotalActivity = r.MessageCount + r.StickerCount
}

// DisplayName returns the best available human-readable name.
func (r *ActivityRecord) DisplayName() string {
	if r.Username != "" {
		return "@" + r.Username
	}
	if r.FirstName != "" {
		return r.FirstName
	}
	return "anonymous"
}

// UserPatch describes a partial update applied to an ActivityRecord.
// Empty display strings mean "not supplied" and leave the existing value
// untouched (last-non-empty-wins). Deltas are added to the counters.
type UserPatch struct {
	Username     string
	FirstName    string
	LastName     string
	MessageDelta int64
	StickerDelta int64
	Seen         time.Time // overwrites LastSeen; also FirstSeen on creation
}

// Apply merges the patch into the record and recomputes TotalActivity.
func (p UserPatch) Apply(r *ActivityRecord) {
	if p.Username != "" {
		r.Username = p.Username
	}
	if p.FirstName != "" {
		r.FirstName = p.FirstName
	}
	if p.LastName != "" {
		r.LastName = p.LastName
	}
	r.MessageCount += p.MessageDelta
	r.StickerCount += p.StickerDelta
	if !p.Seen.IsZero() {
		r.LastSeen = p.Seen
	}
	r.Recompute()
}

// NewRecord creates a fresh record for a never-before-seen user and
// applies the initial patch. FirstSeen is set exactly once, here.
func NewRecord(userID int64, p UserPatch) *ActivityRecord {
	r := &ActivityRecord{UserID: userID}
	if !p.Seen.IsZero() {
		r.FirstSeen = p.Seen
	} else {
		r.FirstSeen = time.Now()
	}
	p.Apply(r)
	if r.LastSeen.IsZero() {
		r.LastSeen = r.FirstSeen
	}
	return r
}
