package storage

import (
	"context"
	"errors"
	"fmt"

	pkgmodels "github.com/farhyn/catalog-platform/pkg/models"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/domain/models"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/infrastructure/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const productColumns = `id, product_name, sku::text, label, product_image, csv_file, excel_file, is_active, created_at, updated_at`

// ProductStorage репозиторий карточек товаров в PostgreSQL
type ProductStorage struct {
	storage
}

var _ postgres.ProductRepository = (*ProductStorage)(nil)

// NewProductStorage создает репозиторий поверх пула
func NewProductStorage(pool *pgxpool.Pool) *ProductStorage {
	return &ProductStorage{storage{pool: pool}}
}

// CreateProduct сохраняет новую карточку без ссылок на выгрузку
func (r *ProductStorage) CreateProduct(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO catalog.products (product_name, sku, label, product_image, is_active)
		VALUES ($1, $2, $3, $4, TRUE)
		RETURNING id, is_active, created_at, updated_at
	`

	err := r.getExecutor(ctx).QueryRow(ctx, query,
		product.Name, product.SKU, string(product.Label), product.ImageKey,
	).Scan(&product.ID, &product.IsActive, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save product: %w", err)
	}
	return nil
}

// AttachExport записывает ключи CSV и XLSX; пустой ExcelKey сохраняется как NULL
func (r *ProductStorage) AttachExport(ctx context.Context, productID int64, refs models.ExportRefs) error {
	query := `
		UPDATE catalog.products
		SET csv_file = $2, excel_file = NULLIF($3, ''), updated_at = now()
		WHERE id = $1
	`

	tag, err := r.getExecutor(ctx).Exec(ctx, query, productID, refs.CSVKey, refs.ExcelKey)
	if err != nil {
		return fmt.Errorf("failed to attach export: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to attach export: product %d does not exist", productID)
	}
	return nil
}

// GetProduct возвращает карточку по ID, в том числе неактивную
func (r *ProductStorage) GetProduct(ctx context.Context, productID int64) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM catalog.products WHERE id = $1`

	product, err := scanProduct(r.getExecutor(ctx).QueryRow(ctx, query, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

// ListProducts возвращает страницу карточек, отсортированную по дате создания
func (r *ProductStorage) ListProducts(ctx context.Context, filter models.ProductFilter) ([]*models.Product, int, error) {
	where, args := filter.Where()
	exec := r.getExecutor(ctx)

	var total int
	if err := exec.QueryRow(ctx, `SELECT COUNT(*) FROM catalog.products`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}
	if total == 0 {
		return []*models.Product{}, 0, nil
	}

	query := `SELECT ` + productColumns + ` FROM catalog.products` + where + ` ORDER BY created_at DESC, id DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := make([]*models.Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan product row: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate products: %w", err)
	}

	return products, total, nil
}

// DeactivateProduct снимает флаг is_active у активной карточки
func (r *ProductStorage) DeactivateProduct(ctx context.Context, productID int64) (bool, error) {
	query := `
		UPDATE catalog.products
		SET is_active = FALSE, updated_at = now()
		WHERE id = $1 AND is_active = TRUE
	`

	tag, err := r.getExecutor(ctx).Exec(ctx, query, productID)
	if err != nil {
		return false, fmt.Errorf("failed to delete product: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanProduct(row pgx.Row) (*models.Product, error) {
	var p models.Product
	var label string
	err := row.Scan(&p.ID, &p.Name, &p.SKU, &label, &p.ImageKey, &p.CSVKey, &p.ExcelKey,
		&p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Label = pkgmodels.Marketplace(label)
	return &p, nil
}
