package model

// AnalyticsSnapshot is a point-in-time copy of the aggregate interaction
// counters, safe to marshal and hand to the admin surface.
type AnalyticsSnapshot struct {
	TotalInteractions int64            `json:"totalInteractions"`
	UniqueUsers       int              `json:"uniqueUsers"`
	ByEventType       map[string]int64 `json:"byEventType"`
	ByCommand         map[string]int64 `json:"byCommand"`
	ByDay             map[string]int64 `json:"byDay"`  // YYYY-MM-DD
	ByHour            map[int]int64    `json:"byHour"` // 0-23
}

// LeaderboardEntry is one row of the ranked activity view. Rank is dense
// and 1-based by output position: equal scores get distinct sequential
// ranks, never a shared one.
type LeaderboardEntry struct {
	Rank          int    `json:"rank"`
	UserID        int64  `json:"userID"`
	Username      string `json:"username,omitempty"`
	FirstName     string `json:"firstName,omitempty"`
	MessageCount  int64  `json:"messageCount"`
	StickerCount  int64  `json:"stickerCount"`
	TotalActivity int64  `json:"totalActivity"`
}
