package cache

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process cache backend with TTL support. Expired entries
// are dropped lazily on read and swept periodically by a janitor goroutine;
// Close stops the janitor.
type Memory struct {
	data   sync.Map
	config Config
	cancel context.CancelFunc
}

// entry is one stored value with its expiry, zero meaning no expiry.
type entry struct {
	value   []byte
	expires time.Time
}

// NewMemory creates an in-process cache with the default configuration.
func NewMemory() *Memory {
	return NewMemoryWithConfig(DefaultConfig())
}

// NewMemoryWithConfig creates an in-process cache with custom configuration.
func NewMemoryWithConfig(config Config) *Memory {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Memory{
		config: config,
		cancel: cancel,
	}
	go m.sweep(ctx)
	return m
}

// Get retrieves a value from the cache.
func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fullKey := m.config.Prefix + key
	value, ok := m.data.Load(fullKey)
	if !ok {
		return nil, &MissError{Key: key}
	}

	e := value.(entry)
	if !e.expires.IsZero() && time.Now().After(e.expires) {
		m.data.Delete(fullKey)
		return nil, &MissError{Key: key}
	}
	return e.value, nil
}

// Set stores a value in the cache with a TTL.
func (m *Memory) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if ttl == 0 {
		ttl = m.config.TTL
	}
	e := entry{value: value}
	if ttl > 0 {
		e.expires = time.Now().Add(ttl)
	}
	m.data.Store(m.config.Prefix+key, e)
	return nil
}

// Delete removes a value from the cache.
func (m *Memory) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.data.Delete(m.config.Prefix + key)
	return nil
}

// Clear removes all values from the cache.
func (m *Memory) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.data.Range(func(key, value any) bool {
		m.data.Delete(key)
		return true
	})
	return nil
}

// Close stops the janitor goroutine.
func (m *Memory) Close() error {
	if m.cancel != nil {
		m.cancel()
	}
	return nil
}

// sweep periodically removes expired entries.
func (m *Memory) sweep(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := time.Now()
			m.data.Range(func(key, value any) bool {
				e := value.(entry)
				if !e.expires.IsZero() && now.After(e.expires) {
					m.data.Delete(key)
				}
				return true
			})
		}
	}
}

var _ Cache = (*Memory)(nil)
