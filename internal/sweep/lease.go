package sweep

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Lease guards a sweep across processes sharing one store. Acquire reports
// ok=false when another holder owns it; release is only valid when ok.
type Lease interface {
	Acquire(ctx context.Context) (release func(), ok bool, err error)
}

// LocalLease is always granted. The scheduler's busy flag already keeps a
// single process to one sweep at a time.
type LocalLease struct{}

func (LocalLease) Acquire(context.Context) (func(), bool, error) {
	return func() {}, true, nil
}

const DefaultLeaseKey = "slaguard:sweep:lease"

// releaseScript deletes the lease only if it still carries our token.
// KEYS[1] = lease key
// ARGV[1] = holder token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLease is a SET NX PX lease. The TTL bounds how long a crashed holder
// blocks other processes, so it should exceed the longest expected sweep.
type RedisLease struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func NewRedisLease(client *redis.Client, key string, ttl time.Duration) *RedisLease {
	if key == "" {
		key = DefaultLeaseKey
	}
	if ttl <= 0 {
		ttl = DefaultInterval
	}
	return &RedisLease{client: client, key: key, ttl: ttl}
}

func (l *RedisLease) Acquire(ctx context.Context) (func(), bool, error) {
	token := uuid.New().String()
	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquiring sweep lease: %w", err)
	}
	if !ok {
		return nil, false, nil
	}
	release := func() {
		// Release must succeed even if the sweep context was cancelled.
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		_ = releaseScript.Run(rctx, l.client, []string{l.key}, token).Err()
	}
	return release, true, nil
}
