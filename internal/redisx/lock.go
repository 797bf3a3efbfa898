package redisx

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrLockTimeout = errors.New("redisx: lock wait timed out")

// release only deletes the key while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker is a single-instance Redis lock (SET NX PX + token-checked DEL).
type Locker struct {
	Redis redis.Cmdable
	TTL   time.Duration
	Wait  time.Duration
	Retry time.Duration
}

func NewLocker(rdb redis.Cmdable) *Locker {
	return &Locker{Redis: rdb, TTL: TTLLock, Wait: 5 * time.Second, Retry: 25 * time.Millisecond}
}

// Acquire blocks until key is held, Wait elapses or ctx is done.
func (l *Locker) Acquire(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	deadline := time.Now().Add(l.Wait)
	for {
		ok, err := l.Redis.SetNX(ctx, key, token, l.TTL).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return nil, ErrLockTimeout
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.Retry):
		}
	}

	return func() {
		// ctx may already be done here
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(rctx, l.Redis, []string{key}, token).Err(); err != nil {
			log.Printf("redisx: release %s: %v", key, err)
		}
	}, nil
}
