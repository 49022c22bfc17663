package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// admitScript applies the same fixed-window rule as MemoryStore atomically.
// KEYS[1] window key; ARGV[1] limit; ARGV[2] window in ms.
// Returns {allowed, retry_after_ms}.
var admitScript = redis.NewScript(`
local count = tonumber(redis.call('GET', KEYS[1]) or '0')
local ttl = redis.call('PTTL', KEYS[1])
if count == 0 or ttl <= 0 then
	redis.call('SET', KEYS[1], 1, 'PX', ARGV[2])
	return {1, 0}
end
if count >= tonumber(ARGV[1]) then
	return {0, ttl}
end
redis.call('INCR', KEYS[1])
return {1, 0}
`)

// RedisStore shares windows between instances. Expiry is handled by Redis, so
// it needs no sweeping.
type RedisStore struct {
	opts   options
	client redis.Scripter
}

func NewRedisStore(client redis.Scripter, opts ...Option) *RedisStore {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &RedisStore{opts: o, client: client}
}

// NewRedisClient parses a redis:// URL and verifies the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	opt.DialTimeout = 5 * time.Second

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

func (r *RedisStore) Admit(ctx context.Context, key string) (Decision, error) {
	res, err := admitScript.Run(ctx, r.client,
		[]string{r.opts.prefix + key},
		r.opts.limit, r.opts.window.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("%w: %v", ErrStore, err)
	}
	if len(res) != 2 {
		return Decision{}, fmt.Errorf("%w: unexpected script result %v", ErrStore, res)
	}

	if res[0] == 1 {
		return Decision{Allowed: true}, nil
	}
	return Decision{Allowed: false, RetryAfter: time.Duration(res[1]) * time.Millisecond}, nil
}
