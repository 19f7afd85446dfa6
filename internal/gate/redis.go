package gate

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCounterStore keeps throttle records in a redis hash per key so
// lockouts survive restarts and are shared between server instances.
type RedisCounterStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisCounterStore(client *redis.Client, prefix string, ttl time.Duration) *RedisCounterStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisCounterStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisCounterStore) key(key string) string {
	return fmt.Sprintf("throttle:%s:%s", s.prefix, key)
}

func (s *RedisCounterStore) Load(ctx context.Context, key string) (Record, error) {
	vals, err := s.client.HGetAll(ctx, s.key(key)).Result()
	if err != nil {
		return Record{}, fmt.Errorf("failed to load throttle record: %w", err)
	}

	var rec Record
	if v, ok := vals["failures"]; ok {
		rec.Failures, _ = strconv.Atoi(v)
	}
	if v, ok := vals["locked_until"]; ok {
		if ms, err := strconv.ParseInt(v, 10, 64); err == nil && ms > 0 {
			rec.LockedUntil = time.UnixMilli(ms)
		}
	}
	return rec, nil
}

// incrScript counts a failure and starts the lockout in one step.
// KEYS[1] record, ARGV now_ms, max, lockout_ms, ttl_ms.
var incrScript = redis.NewScript(`
local k = KEYS[1]
local now = tonumber(ARGV[1])
local locked = tonumber(redis.call('HGET', k, 'locked_until') or '0')
if locked > 0 then
  if now < locked then
    return {tonumber(redis.call('HGET', k, 'failures') or '0'), locked, 0}
  end
  redis.call('DEL', k)
end
local failures = redis.call('HINCRBY', k, 'failures', 1)
locked = 0
if failures >= tonumber(ARGV[2]) then
  locked = now + tonumber(ARGV[3])
  redis.call('HSET', k, 'locked_until', locked)
end
redis.call('PEXPIRE', k, ARGV[4])
return {failures, locked, 1}
`)

// releaseScript deletes the record unless it is locked at ARGV[1].
var releaseScript = redis.NewScript(`
local k = KEYS[1]
local failures = tonumber(redis.call('HGET', k, 'failures') or '0')
local locked = tonumber(redis.call('HGET', k, 'locked_until') or '0')
if locked > 0 and tonumber(ARGV[1]) < locked then
  return {failures, locked}
end
redis.call('DEL', k)
return {failures, locked}
`)

func (s *RedisCounterStore) Incr(ctx context.Context, key string, max int, lockout time.Duration, now time.Time) (Record, bool, error) {
	vals, err := incrScript.Run(ctx, s.client, []string{s.key(key)},
		now.UnixMilli(), max, lockout.Milliseconds(), s.ttl.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return Record{}, false, fmt.Errorf("failed to count throttle failure: %w", err)
	}
	if len(vals) != 3 {
		return Record{}, false, fmt.Errorf("unexpected throttle reply: %v", vals)
	}
	return toRecord(vals[0], vals[1]), vals[2] == 1, nil
}

func (s *RedisCounterStore) Release(ctx context.Context, key string, now time.Time) (Record, error) {
	vals, err := releaseScript.Run(ctx, s.client, []string{s.key(key)}, now.UnixMilli()).Int64Slice()
	if err != nil {
		return Record{}, fmt.Errorf("failed to release throttle record: %w", err)
	}
	if len(vals) != 2 {
		return Record{}, fmt.Errorf("unexpected throttle reply: %v", vals)
	}
	return toRecord(vals[0], vals[1]), nil
}

func toRecord(failures, lockedUntil int64) Record {
	rec := Record{Failures: int(failures)}
	if lockedUntil > 0 {
		rec.LockedUntil = time.UnixMilli(lockedUntil)
	}
	return rec
}
