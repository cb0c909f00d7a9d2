package interfaces

import (
	"context"
	"io"
)

// ObjectStoragePort хранилище файлов: изображения товаров, выгрузки CSV/XLSX, аватары.
// Ключи объектов относительные, например "product_csv_files/cutebunny_<uuid>.csv".
type ObjectStoragePort interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error

	// Get возвращает содержимое объекта или ErrObjectNotFound
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete удаляет объект; отсутствие объекта ошибкой не считается
	Delete(ctx context.Context, key string) error

	// URL публичный адрес объекта
	URL(key string) string
}
