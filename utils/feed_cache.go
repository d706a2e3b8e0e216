package utils

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// FeedSnapshotStore caches rendered portal feeds in redis so hot portals do
// not re-run assembly on every request. Snapshots expire on their own; writes
// that change what a portal can see should still invalidate eagerly.
type FeedSnapshotStore struct {
	inner     *redis.Client
	keyParser RedisKeyParser
	ttl       time.Duration
}

// DefaultFeedSnapshotTTL bounds how stale a cached feed can get.
const DefaultFeedSnapshotTTL = 60 * time.Second

const feedKeyPrefix = "feed"

var ctx = context.Background()

// GetFeedSnapshotStore connects to the redis instance configured by env and
// verifies it with a ping.
func GetFeedSnapshotStore() (*FeedSnapshotStore, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT")),
		Password: os.Getenv("REDIS_PASSWD"),
		DB:       0, // use default DB
	})
	_, err := redisClient.Ping(ctx).Result()
	if err != nil {
		return nil, err
	}
	return NewFeedSnapshotStore(redisClient, DefaultFeedSnapshotTTL), nil
}

// NewFeedSnapshotStore wraps an existing client, which lets tests use
// miniredis.
func NewFeedSnapshotStore(client *redis.Client, ttl time.Duration) *FeedSnapshotStore {
	return &FeedSnapshotStore{
		inner:     client,
		keyParser: RedisKeyParser{delimiter: "__"},
		ttl:       ttl,
	}
}

type RedisKeyParser struct {
	delimiter string
}

func (r RedisKeyParser) ValidateId(id string) bool {
	return id != "" && !strings.Contains(id, r.delimiter)
}

func (r RedisKeyParser) EncodeFeedKey(portalId string) (string, error) {
	if !r.ValidateId(portalId) {
		return "", fmt.Errorf("invalid portalId: %s", portalId)
	}
	return fmt.Sprintf("%s%s%s", feedKeyPrefix, r.delimiter, portalId), nil
}

// GetFeedSnapshot returns the cached payload and whether it was present. A
// cache miss is not an error.
func (s *FeedSnapshotStore) GetFeedSnapshot(portalId string) ([]byte, bool, error) {
	key, err := s.keyParser.EncodeFeedKey(portalId)
	if err != nil {
		return nil, false, err
	}
	payload, err := s.inner.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return payload, true, nil
}

// SetFeedSnapshot stores the rendered feed under the store's TTL.
func (s *FeedSnapshotStore) SetFeedSnapshot(portalId string, payload []byte) error {
	key, err := s.keyParser.EncodeFeedKey(portalId)
	if err != nil {
		return err
	}
	return s.inner.Set(ctx, key, payload, s.ttl).Err()
}

// InvalidateFeedSnapshot drops the cached feed, if any. Deleting a missing
// key is a no-op.
func (s *FeedSnapshotStore) InvalidateFeedSnapshot(portalId string) error {
	key, err := s.keyParser.EncodeFeedKey(portalId)
	if err != nil {
		return err
	}
	return s.inner.Del(ctx, key).Err()
}
