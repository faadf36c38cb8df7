package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorage_SetGetDelete(t *testing.T) {
	s := NewMemoryStorage(time.Minute)
	defer s.Close() //nolint:errcheck

	require.NoError(t, s.Set("key", []byte("value"), 0))
	val, err := s.Get("key")
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), val)

	require.NoError(t, s.Delete("key"))
	val, err = s.Get("key")
	require.NoError(t, err)
	assert.Nil(t, val)
}

func TestMemoryStorage_Expiry(t *testing.T) {
	s := NewMemoryStorage(10 * time.Millisecond)
	defer s.Close() //nolint:errcheck

	require.NoError(t, s.Set("short", []byte("v"), 20*time.Millisecond))
	val, _ := s.Get("short")
	assert.NotNil(t, val)

	assert.Eventually(t, func() bool {
		v, _ := s.Get("short")
		return v == nil
	}, time.Second, 10*time.Millisecond)
}

func TestMemoryStorage_ResetAndEmptyValues(t *testing.T) {
	s := NewMemoryStorage(time.Minute)
	defer s.Close() //nolint:errcheck

	require.NoError(t, s.Set("", []byte("ignored"), 0))
	require.NoError(t, s.Set("empty", nil, 0))
	val, _ := s.Get("empty")
	assert.Nil(t, val)

	require.NoError(t, s.Set("a", []byte("1"), 0))
	require.NoError(t, s.Reset())
	val, _ = s.Get("a")
	assert.Nil(t, val)

	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())
}
