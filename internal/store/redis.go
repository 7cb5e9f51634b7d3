package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kode4food/intake/pkg/api"
)

type (
	// RedisStore persists drafts as JSON values in Redis, indexed by a set
	// of known draft IDs for listing
	RedisStore struct {
		client *redis.Client
		prefix string
	}

	// RedisConfig holds Redis draft store settings
	RedisConfig struct {
		Addr     string
		Password string
		Prefix   string
		DB       int
	}
)

const DefaultRedisPrefix = "intake"

var _ DraftStore = (*RedisStore)(nil)

// NewRedisStore creates a Redis-backed draft store
func NewRedisStore(cfg *RedisConfig) *RedisStore {
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		prefix: prefix,
	}
}

// Save stores a draft, minting an ID and creation time when absent
func (s *RedisStore) Save(
	ctx context.Context, rec *api.DraftRecord,
) (api.DraftID, error) {
	now := time.Now()
	if rec.ID == "" {
		rec.ID = api.NewDraftID()
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	data, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("marshal draft: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.draftKey(rec.ID), data, 0)
	pipe.SAdd(ctx, s.indexKey(), string(rec.ID))
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("save draft: %w", err)
	}
	return rec.ID, nil
}

// Load retrieves a draft by ID
func (s *RedisStore) Load(
	ctx context.Context, id api.DraftID,
) (*api.DraftRecord, error) {
	data, err := s.client.Get(ctx, s.draftKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrDraftNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}

	var rec api.DraftRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal draft: %w", err)
	}
	return &rec, nil
}

// Delete removes a draft. Deleting a missing draft is not an error
func (s *RedisStore) Delete(ctx context.Context, id api.DraftID) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.draftKey(id))
	pipe.SRem(ctx, s.indexKey(), string(id))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}

// List returns all stored drafts. Index entries whose draft has expired or
// been removed out of band are skipped
func (s *RedisStore) List(ctx context.Context) ([]*api.DraftRecord, error) {
	ids, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}

	res := make([]*api.DraftRecord, 0, len(ids))
	for _, id := range ids {
		rec, err := s.Load(ctx, api.DraftID(id))
		if errors.Is(err, ErrDraftNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, nil
}

// Ping verifies connectivity to the Redis server
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the underlying Redis client
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) draftKey(id api.DraftID) string {
	return fmt.Sprintf("%s:draft:%s", s.prefix, id)
}

func (s *RedisStore) indexKey() string {
	return fmt.Sprintf("%s:drafts", s.prefix)
}
