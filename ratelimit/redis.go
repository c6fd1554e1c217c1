package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// takeScript prunes, checks and records in one round trip so that
// concurrent instances share one window.
var takeScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
local allowed = 0
if count < limit then
  redis.call('ZADD', key, now, ARGV[4])
  count = count + 1
  allowed = 1
end
redis.call('PEXPIRE', key, window)

local reset = now + window
local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
if oldest[2] then
  reset = tonumber(oldest[2]) + window
end
return {allowed, count, reset}
`)

// RedisStore keeps each key's hits in a sorted set scored by unix millis.
type RedisStore struct {
	rdb    redis.Scripter
	prefix string
}

func NewRedisStore(rdb redis.Scripter, prefix string) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (s *RedisStore) Take(ctx context.Context, key string, now time.Time, window time.Duration, limit int) (Result, error) {
	nowMs := now.UnixMilli()
	member := fmt.Sprintf("%d-%s", nowMs, uuid.NewString())

	vals, err := takeScript.Run(ctx, s.rdb, []string{s.prefix + key},
		nowMs, window.Milliseconds(), limit, member).Int64Slice()
	if err != nil {
		return Result{}, fmt.Errorf("ratelimit: redis take %s: %w", key, err)
	}
	if len(vals) != 3 {
		return Result{}, fmt.Errorf("ratelimit: unexpected reply %v", vals)
	}

	return Result{
		Allowed: vals[0] == 1,
		Count:   int(vals[1]),
		ResetAt: time.UnixMilli(vals[2]),
	}, nil
}
