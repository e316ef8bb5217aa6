package counter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// incrementScript increments and arms the window in one step. A counter left
// without a TTL (e.g. by a crash between commands in older deployments) is
// re-armed so it can never pin a caller forever.
var incrementScript = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 or redis.call('TTL', KEYS[1]) == -1 then
  redis.call('EXPIRE', KEYS[1], ARGV[1])
end
return count
`)

// RedisCounterStore implements fixed-window counters with INCR + EXPIRE.
type RedisCounterStore struct {
	client redis.Scripter
}

// NewRedis constructs a Redis-backed counter store.
func NewRedis(client redis.Scripter) *RedisCounterStore {
	return &RedisCounterStore{client: client}
}

// Increment bumps the counter at key and arms the window on first touch.
func (s *RedisCounterStore) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	seconds := int64(window / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	count, err := incrementScript.Run(ctx, s.client, []string{key}, seconds).Int64()
	if err != nil {
		return 0, fmt.Errorf("increment %s: %w", key, err)
	}
	return count, nil
}
