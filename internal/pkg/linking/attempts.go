package linking

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ManuelReschke/LinkFox/internal/pkg/cache"
)

// AttemptTTL bounds how long an abandoned OAuth1 linking attempt keeps its
// request-token secret around before it ages out.
const AttemptTTL = 15 * time.Minute

const attemptKeyPrefix = "linking:attempt:"

// AttemptStore holds the OAuth1 request-token secret across the redirect
// round trip. Take consumes the entry: a secret can be read exactly once.
type AttemptStore interface {
	Put(key, secret string, ttl time.Duration) error
	// Take returns the stored secret and removes it. ErrAttemptNotFound when
	// the key is unknown, already consumed or expired.
	Take(key string) (string, error)
}

// NewAttemptKey returns a fresh opaque key for one linking attempt. The glue
// layer parks it in the user's web session until the callback arrives.
func NewAttemptKey() string {
	return uuid.NewString()
}

type redisAttemptStore struct{}

// NewRedisAttemptStore creates an attempt store on the shared cache client.
func NewRedisAttemptStore() AttemptStore {
	return &redisAttemptStore{}
}

func (s *redisAttemptStore) Put(key, secret string, ttl time.Duration) error {
	return cache.Set(attemptKeyPrefix+key, secret, ttl)
}

func (s *redisAttemptStore) Take(key string) (string, error) {
	val, err := cache.GetDel(attemptKeyPrefix + key)
	if errors.Is(err, redis.Nil) {
		return "", ErrAttemptNotFound
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

type memoryAttemptStore struct {
	mu      sync.Mutex
	entries map[string]memoryAttempt
}

type memoryAttempt struct {
	secret    string
	expiresAt time.Time
}

// NewMemoryAttemptStore creates a process-local attempt store. Used by tests
// and single-instance deployments without Redis.
func NewMemoryAttemptStore() AttemptStore {
	return &memoryAttemptStore{entries: make(map[string]memoryAttempt)}
}

func (s *memoryAttemptStore) Put(key, secret string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryAttempt{secret: secret, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *memoryAttemptStore) Take(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	if !ok {
		return "", ErrAttemptNotFound
	}
	delete(s.entries, key)
	if time.Now().After(entry.expiresAt) {
		return "", ErrAttemptNotFound
	}
	return entry.secret, nil
}
