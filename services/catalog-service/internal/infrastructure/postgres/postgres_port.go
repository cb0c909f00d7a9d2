package postgres

import (
	"context"

	"github.com/farhyn/catalog-platform/services/catalog-service/internal/domain/models"
)

// ProductRepository хранилище карточек товаров.
// Методы Get возвращают nil, nil, если запись не найдена.
type ProductRepository interface {
	// CreateProduct вставляет карточку и заполняет ID и временные метки
	CreateProduct(ctx context.Context, product *models.Product) error

	// AttachExport прикрепляет ключи файлов выгрузки к существующей карточке
	AttachExport(ctx context.Context, productID int64, refs models.ExportRefs) error

	GetProduct(ctx context.Context, productID int64) (*models.Product, error)

	// ListProducts возвращает страницу карточек (новые первыми) и общее количество
	ListProducts(ctx context.Context, filter models.ProductFilter) ([]*models.Product, int, error)

	// DeactivateProduct мягко удаляет карточку; false, если активной карточки нет
	DeactivateProduct(ctx context.Context, productID int64) (bool, error)
}
