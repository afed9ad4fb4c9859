// Package leaderboard ranks activity records by total activity.
//
// Ranking contract: only users with TotalActivity > 0 appear. Order is
// TotalActivity descending; ties break on earlier FirstSeen, then on
// ascending UserID, so the output is fully deterministic. Ranks are
// dense and 1-based by output position — equal scores get distinct
// sequential ranks.
package leaderboard

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/ayoubcharbel/telegram-bot/cache"
	"github.com/ayoubcharbel/telegram-bot/model"
	"github.com/ayoubcharbel/telegram-bot/store"
)

// Ranker produces ranked views over the Record Store.
type Ranker struct {
	store store.Store
	cache *cache.Cache
}

// New creates a Ranker. cache may be nil to disable caching.
func New(s store.Store, c *cache.Cache) *Ranker {
	return &Ranker{store: s, cache: c}
}

// TopN returns at most k ranked entries. An empty result is a valid
// outcome, not an error.
func (r *Ranker) TopN(ctx context.Context, k int) ([]model.LeaderboardEntry, error) {
	if k <= 0 {
		return []model.LeaderboardEntry{}, nil
	}

	cacheKey := "top:" + strconv.Itoa(k)
	if cached, ok := r.cache.Get(cacheKey); ok {
		if entries, ok := cached.([]model.LeaderboardEntry); ok {
			return entries, nil
		}
	}

	records, err := r.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load records for ranking: %w", err)
	}

	active := records[:0]
	for _, rec := range records {
		if rec.TotalActivity > 0 {
			active = append(active, rec)
		}
	}

	sort.Slice(active, func(i, j int) bool {
		if active[i].TotalActivity != active[j].TotalActivity {
			return active[i].TotalActivity > active[j].TotalActivity
		}
		if !active[i].FirstSeen.Equal(active[j].FirstSeen) {
			return active[i].FirstSeen.Before(active[j].FirstSeen)
		}
		return active[i].UserID < active[j].UserID
	})

	if k > len(active) {
		k = len(active)
	}

	entries := make([]model.LeaderboardEntry, 0, k)
	for i, rec := range active[:k] {
		entries = append(entries, model.LeaderboardEntry{
			Rank:          i + 1,
			UserID:        rec.UserID,
			Username:      rec.Username,
			FirstName:     rec.FirstName,
			MessageCount:  rec.MessageCount,
			StickerCount:  rec.StickerCount,
			TotalActivity: rec.TotalActivity,
		})
	}

	r.cache.Set(cacheKey, entries, entriesCost(entries))
	return entries, nil
}

// entriesCost approximates the memory footprint of a cached view in
// bytes; the cache's MaxCost is byte-denominated.
func entriesCost(entries []model.LeaderboardEntry) int64 {
	cost := int64(64) // slice header and key overhead
	for _, e := range entries {
		cost += 64 + int64(len(e.Username)) + int64(len(e.FirstName))
	}
	return cost
}

// Invalidate drops all cached views. Call it whenever the store's
// contents are replaced outside the normal increment path, e.g. after
// a backup restore, so no stale ranking survives until TTL expiry.
func (r *Ranker) Invalidate() {
	r.cache.Clear()
}

// Position returns the 1-based rank of userID among all active users,
// or 0 when the user has no counted activity yet.
func (r *Ranker) Position(ctx context.Context, userID int64) (int, error) {
	// Rank over the full active set, not a truncated view.
	entries, err := r.TopN(ctx, int(^uint(0)>>1))
	if err != nil {
		return 0, err
	}
	for _, e := range entries {
		if e.UserID == userID {
			return e.Rank, nil
		}
	}
	return 0, nil
}
