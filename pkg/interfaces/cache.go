package interfaces

import (
	"context"
	"time"
)

// CachePort интерфейс кэша карточек товаров
type CachePort interface {
	// Get возвращает значение по ключу; при промахе возвращает ErrCacheMiss
	Get(ctx context.Context, key string) ([]byte, error)

	// Set сохраняет значение; expiration == 0 означает хранение без срока
	Set(ctx context.Context, key string, value []byte, expiration time.Duration) error

	Delete(ctx context.Context, key string) error

	// DeleteByPattern удаляет все ключи по шаблону, например "product:*"
	DeleteByPattern(ctx context.Context, pattern string) error

	Close() error
}
