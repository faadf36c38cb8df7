package cache

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
)

// MemoryStorage implements fiber.Storage in process memory.
type MemoryStorage struct {
	entries map[string]entry
	mu      sync.RWMutex
	done    chan struct{}
	once    sync.Once
}

type entry struct {
	val       []byte
	expiresAt time.Time
}

// NewMemoryStorage creates a storage that evicts expired keys every interval.
func NewMemoryStorage(interval time.Duration) *MemoryStorage {
	s := &MemoryStorage{
		entries: make(map[string]entry),
		done:    make(chan struct{}),
	}
	go s.cleanup(interval)
	return s
}

// Get returns the stored value or nil when the key is missing or expired.
func (s *MemoryStorage) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok || e.expired(time.Now()) {
		return nil, nil
	}
	return e.val, nil
}

// Set stores val under key. A zero exp keeps the key until deleted.
func (s *MemoryStorage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	e := entry{val: append([]byte(nil), val...)}
	if exp > 0 {
		e.expiresAt = time.Now().Add(exp)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = e
	return nil
}

// Delete removes key.
func (s *MemoryStorage) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Reset removes all keys.
func (s *MemoryStorage) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]entry)
	return nil
}

// Close stops the eviction loop.
func (s *MemoryStorage) Close() error {
	s.once.Do(func() { close(s.done) })
	return nil
}

func (s *MemoryStorage) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.mu.Lock()
			now := time.Now()
			for key, e := range s.entries {
				if e.expired(now) {
					delete(s.entries, key)
				}
			}
			s.mu.Unlock()
		}
	}
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

var _ fiber.Storage = (*MemoryStorage)(nil)
