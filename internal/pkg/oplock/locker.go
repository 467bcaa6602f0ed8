package oplock

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrNotAcquired = errors.New("operator lock not acquired")

// Locker serializes work per operator. Acquire blocks until the lock is held or ctx ends.
type Locker interface {
	Acquire(ctx context.Context, operatorID int64) (release func(), err error)
}

// LocalLocker holds one mutex per operator inside this process.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[int64]chan struct{}
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[int64]chan struct{})}
}

func (l *LocalLocker) Acquire(ctx context.Context, operatorID int64) (func(), error) {
	l.mu.Lock()
	ch, ok := l.locks[operatorID]
	if !ok {
		ch = make(chan struct{}, 1)
		l.locks[operatorID] = ch
	}
	l.mu.Unlock()

	select {
	case ch <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-ch }) }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// releaseScript deletes the key only if it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker serializes operators across bot replicas with SET NX PX.
type RedisLocker struct {
	rdb   *redis.Client
	ttl   time.Duration
	retry time.Duration
	local *LocalLocker
}

// NewRedisLocker builds a lock whose lease outlives the longest expected event (a full commit run).
func NewRedisLocker(rdb *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &RedisLocker{rdb: rdb, ttl: ttl, retry: 100 * time.Millisecond, local: NewLocalLocker()}
}

func (l *RedisLocker) Acquire(ctx context.Context, operatorID int64) (func(), error) {
	// local first, so one replica does not poll redis against itself
	releaseLocal, err := l.local.Acquire(ctx, operatorID)
	if err != nil {
		return nil, err
	}

	key := "oplock:" + strconv.FormatInt(operatorID, 10)
	token := uuid.NewString()

	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()
	for {
		ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			releaseLocal()
			return nil, fmt.Errorf("%w: %v", ErrNotAcquired, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			releaseLocal()
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			releaseScript.Run(context.Background(), l.rdb, []string{key}, token)
			releaseLocal()
		})
	}, nil
}
