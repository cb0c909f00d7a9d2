package models

import (
	"time"

	pkgmodels "github.com/farhyn/catalog-platform/pkg/models"
)

// Product карточка товара, созданная из загруженного изображения.
// Ключи объектов хранятся в БД, URL вычисляются сервисом при чтении.
type Product struct {
	ID       int64                 `json:"id"`
	Name     string                `json:"product_name"`
	SKU      string                `json:"sku"`
	Label    pkgmodels.Marketplace `json:"label"`
	IsActive bool                  `json:"is_active"`

	ImageKey string `json:"-"`
	ImageURL string `json:"product_image"`

	// CSVKey отсутствует, пока выгрузка не прикреплена
	CSVKey   *string `json:"-"`
	CSVURL   *string `json:"csv_file"`
	ExcelKey *string `json:"-"`
	ExcelURL *string `json:"excel_file"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ExportRefs ссылки на файлы выгрузки, прикрепляемые второй записью
type ExportRefs struct {
	CSVKey   string
	ExcelKey string
}

// ---------------------------- KAFKA MODELS ----------------------------

// ListingEvent событие жизненного цикла карточки для Kafka
type ListingEvent struct {
	ID         string                `json:"id"`
	Type       string                `json:"type"`
	ProductID  int64                 `json:"product_id"`
	SKU        string                `json:"sku"`
	Label      pkgmodels.Marketplace `json:"label"`
	CSVKey     string                `json:"csv_key,omitempty"`
	ExcelKey   string                `json:"excel_key,omitempty"`
	ChangedBy  string                `json:"changed_by,omitempty"`
	OccurredAt int64                 `json:"occurred_at"`
}
