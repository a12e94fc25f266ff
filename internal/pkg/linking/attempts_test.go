package linking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryAttemptStoreTakeOnce(t *testing.T) {
	store := NewMemoryAttemptStore()
	key := NewAttemptKey()

	require.NoError(t, store.Put(key, "the-secret", AttemptTTL))

	secret, err := store.Take(key)
	require.NoError(t, err)
	assert.Equal(t, "the-secret", secret)

	_, err = store.Take(key)
	assert.ErrorIs(t, err, ErrAttemptNotFound, "a secret can be taken exactly once")
}

func TestMemoryAttemptStoreUnknownKey(t *testing.T) {
	store := NewMemoryAttemptStore()
	_, err := store.Take("never-stored")
	assert.ErrorIs(t, err, ErrAttemptNotFound)
}

func TestMemoryAttemptStoreExpiry(t *testing.T) {
	store := NewMemoryAttemptStore()
	require.NoError(t, store.Put("k", "s", -time.Second))

	_, err := store.Take("k")
	assert.ErrorIs(t, err, ErrAttemptNotFound)
}

func TestNewAttemptKeyUnique(t *testing.T) {
	assert.NotEqual(t, NewAttemptKey(), NewAttemptKey())
}
