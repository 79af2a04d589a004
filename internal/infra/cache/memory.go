package cache

import (
	"context"
	"sync"
	"time"

	"exchange-payout-bot/internal/domain"
)

type memoryItem struct {
	value   []byte
	expires time.Time
}

// MemoryCache хранит domain.Cache в памяти процесса для запуска без Redis.
type MemoryCache struct {
	mu    sync.Mutex
	items map[string]memoryItem
	now   func() time.Time
}

var _ domain.Cache = (*MemoryCache)(nil)

// NewMemory создаёт пустой кэш.
func NewMemory() *MemoryCache {
	return &MemoryCache{items: make(map[string]memoryItem), now: time.Now}
}

// Once выполняет функцию, если ключ ещё не задан.
func (c *MemoryCache) Once(ctx context.Context, key string, ttl time.Duration, fn func() error) error {
	c.mu.Lock()
	if _, ok := c.getLocked(key); ok {
		c.mu.Unlock()
		return nil
	}
	c.setLocked(key, []byte("1"), ttl)
	c.mu.Unlock()

	if err := fn(); err != nil {
		_ = c.Delete(ctx, key)
		return err
	}
	return nil
}

// Set задаёт значение. Нулевой ttl означает хранение без срока.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setLocked(key, value, ttl)
	return nil
}

// Get возвращает значение или domain.ErrCacheMiss.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.getLocked(key)
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	return v, nil
}

// Delete удаляет ключ.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}

func (c *MemoryCache) getLocked(key string) ([]byte, bool) {
	item, ok := c.items[key]
	if !ok {
		return nil, false
	}
	if !item.expires.IsZero() && !c.now().Before(item.expires) {
		delete(c.items, key)
		return nil, false
	}
	return item.value, true
}

func (c *MemoryCache) setLocked(key string, value []byte, ttl time.Duration) {
	item := memoryItem{value: append([]byte(nil), value...)}
	if ttl > 0 {
		item.expires = c.now().Add(ttl)
	}
	c.items[key] = item
}
