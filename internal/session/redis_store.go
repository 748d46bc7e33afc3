package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jonathan/sng-admin/internal/apperr"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "sng:session:"

// RedisStore shares sessions between instances through Redis. Keys expire
// together with the session.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a store on an existing connection.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, sid string) (Record, bool, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+sid).Bytes()
	if errors.Is(err, redis.Nil) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, apperr.Wrap(apperr.KVUnavailable, "session get", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, false, fmt.Errorf("failed to decode session %s: %w", sid, err)
	}
	return rec, true, nil
}

// Put implements Store.
func (s *RedisStore) Put(ctx context.Context, sid string, rec Record, ttl time.Duration) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+sid, data, ttl).Err(); err != nil {
		return apperr.Wrap(apperr.KVUnavailable, "session set", err)
	}
	return nil
}

// Delete implements Store.
func (s *RedisStore) Delete(ctx context.Context, sid string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+sid).Err(); err != nil {
		return apperr.Wrap(apperr.KVUnavailable, "session delete", err)
	}
	return nil
}
