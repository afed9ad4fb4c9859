package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"

	"github.com/ayoubcharbel/telegram-bot/model"
)

const (
	userKeyPrefix = "user:"
	userIndexKey  = "users" // set of all known user IDs
)

// RedisStore keeps one hash per user plus an index set of known IDs.
// Counters use HIncrBy and first_seen uses HSetNX, so any number of bot
// processes can share one Redis instance without losing increments or
// double-creating records.
type RedisStore struct {
	rdb *redis.Client
}

// RedisOptions mirrors the connection settings from config.
type RedisOptions struct {
	Address      string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(opts RedisOptions) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         opts.Address,
		Password:     opts.Password,
		DB:           opts.DB,
		PoolSize:     opts.PoolSize,
		MinIdleConns: opts.MinIdleConns,
	})

	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Info().Str("address", opts.Address).Msg("Connected to Redis")
	return &RedisStore{rdb: rdb}, nil
}

// NewRedisStoreFromClient wraps an existing client. Used by tests.
func NewRedisStoreFromClient(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func userKey(userID int64) string {
	return userKeyPrefix + strconv.FormatInt(userID, 10)
}

func recordFromHash(userID int64, fields map[string]string) (*model.ActivityRecord, error) {
	r := &model.ActivityRecord{UserID: userID}
	r.Username = fields["username"]
	r.FirstName = fields["first_name"]
	r.LastName = fields["last_name"]

	var err error
	if v := fields["message_count"]; v != "" {
		if r.MessageCount, err = strconv.ParseInt(v, 10, 64); err != nil {
			return nil, fmt.Errorf("invalid message_count for user %d: %w", userID, err)
		}
	}
	if v := fields["sticker_count"]; v != "" {
		if r.StickerCount, err = strconv.ParseInt(v, 10, 64); err != nil {
			return nil, fmt.Errorf("invalid sticker_count for user %d: %w", userID, err)
		}
	}
	if v := fields["first_seen"]; v != "" {
		if r.FirstSeen, err = time.Parse(time.RFC3339Nano, v); err != nil {
			return nil, fmt.Errorf("invalid first_seen for user %d: %w", userID, err)
		}
	}
	if v := fields["last_seen"]; v != "" {
		if r.LastSeen, err = time.Parse(time.RFC3339Nano, v); err != nil {
			return nil, fmt.Errorf("invalid last_seen for user %d: %w", userID, err)
		}
	}
	r.Recompute()
	return r, nil
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, userID int64) (*model.ActivityRecord, error) {
	fields, err := s.rdb.HGetAll(ctx, userKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read user %d: %w", userID, err)
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}
	return recordFromHash(userID, fields)
}

// Upsert implements Store. All writes go through one pipeline: HSetNX
// claims first_seen exactly once, HIncrBy applies deltas atomically.
func (s *RedisStore) Upsert(ctx context.Context, userID int64, patch model.UserPatch) (*model.ActivityRecord, error) {
	seen := patch.Seen
	if seen.IsZero() {
		seen = time.Now()
	}
	ts := seen.UTC().Format(time.RFC3339Nano)
	key := userKey(userID)

	pipe := s.rdb.TxPipeline()
	pipe.SAdd(ctx, userIndexKey, userID)
	pipe.HSetNX(ctx, key, "first_seen", ts)
	pipe.HSet(ctx, key, "last_seen", ts)
	if patch.Username != "" {
		pipe.HSet(ctx, key, "username", patch.Username)
	}
	if patch.FirstName != "" {
		pipe.HSet(ctx, key, "first_name", patch.FirstName)
	}
	if patch.LastName != "" {
		pipe.HSet(ctx, key, "last_name", patch.LastName)
	}
	if patch.MessageDelta != 0 {
		pipe.HIncrBy(ctx, key, "message_count", patch.MessageDelta)
	}
	if patch.StickerDelta != 0 {
		pipe.HIncrBy(ctx, key, "sticker_count", patch.StickerDelta)
	}
	getAll := pipe.HGetAll(ctx, key)

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to upsert user %d: %w", userID, err)
	}
	return recordFromHash(userID, getAll.Val())
}

// All implements Store.
func (s *RedisStore) All(ctx context.Context) ([]*model.ActivityRecord, error) {
	ids, err := s.rdb.SMembers(ctx, userIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read user index: %w", err)
	}

	out := make([]*model.ActivityRecord, 0, len(ids))
	for _, idStr := range ids {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			log.Warn().Str("id", idStr).Msg("Skipping malformed user index entry")
			continue
		}
		r, err := s.Get(ctx, id)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// ReplaceAll implements Store. Deletes every indexed user and rewrites
// the full set in one pipeline.
func (s *RedisStore) ReplaceAll(ctx context.Context, records []*model.ActivityRecord) error {
	ids, err := s.rdb.SMembers(ctx, userIndexKey).Result()
	if err != nil {
		return fmt.Errorf("failed to read user index: %w", err)
	}

	pipe := s.rdb.TxPipeline()
	for _, idStr := range ids {
		pipe.Del(ctx, userKeyPrefix+idStr)
	}
	pipe.Del(ctx, userIndexKey)

	for _, r := range records {
		key := userKey(r.UserID)
		pipe.SAdd(ctx, userIndexKey, r.UserID)
		pipe.HSet(ctx, key,
			"username", r.Username,
			"first_name", r.FirstName,
			"last_name", r.LastName,
			"message_count", r.MessageCount,
			"sticker_count", r.StickerCount,
			"first_seen", r.FirstSeen.UTC().Format(time.RFC3339Nano),
			"last_seen", r.LastSeen.UTC().Format(time.RFC3339Nano),
		)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to replace records: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
