package memory

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// SessionRepository keeps conversation sessions in process memory, keyed by operator.
// A ttl of zero keeps sessions for the process lifetime.
type SessionRepository[T any] struct {
	cache *cache.Cache
}

func NewSessionRepository[T any](ttl time.Duration) *SessionRepository[T] {
	expiration := ttl
	cleanup := 10 * time.Minute
	if ttl <= 0 {
		expiration = cache.NoExpiration
		cleanup = 0
	}
	return &SessionRepository[T]{
		cache: cache.New(expiration, cleanup),
	}
}

func (r *SessionRepository[T]) Save(key string, session *T) {
	r.cache.Set(key, session, cache.DefaultExpiration)
}

func (r *SessionRepository[T]) Get(key string) (*T, bool) {
	if x, found := r.cache.Get(key); found {
		return x.(*T), true
	}
	return nil, false
}

func (r *SessionRepository[T]) Delete(key string) {
	r.cache.Delete(key)
}

func (r *SessionRepository[T]) Count() int {
	return r.cache.ItemCount()
}
