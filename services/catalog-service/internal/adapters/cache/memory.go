package cache

import (
	"context"
	"path"
	"time"

	"github.com/farhyn/catalog-platform/pkg/interfaces"
	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache кэш в памяти процесса, используется когда Redis выключен
type MemoryCache struct {
	store *gocache.Cache
}

// NewMemoryCache defaultExpiration применяется к записям с expiration == 0
func NewMemoryCache(defaultExpiration, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{store: gocache.New(defaultExpiration, cleanupInterval)}
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.store.Get(key)
	if !ok {
		return nil, interfaces.ErrCacheMiss
	}
	return v.([]byte), nil
}

func (m *MemoryCache) Set(_ context.Context, key string, value []byte, expiration time.Duration) error {
	m.store.Set(key, append([]byte(nil), value...), expiration)
	return nil
}

func (m *MemoryCache) Delete(_ context.Context, key string) error {
	m.store.Delete(key)
	return nil
}

// DeleteByPattern шаблон в синтаксисе path.Match, совместимом с glob Redis для "*" и "?"
func (m *MemoryCache) DeleteByPattern(_ context.Context, pattern string) error {
	for key := range m.store.Items() {
		if ok, err := path.Match(pattern, key); err != nil {
			return err
		} else if ok {
			m.store.Delete(key)
		}
	}
	return nil
}

func (m *MemoryCache) Close() error {
	m.store.Flush()
	return nil
}
