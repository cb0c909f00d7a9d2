package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/farhyn/catalog-platform/pkg/interfaces"
	pkgmodels "github.com/farhyn/catalog-platform/pkg/models"
	pkgutils "github.com/farhyn/catalog-platform/pkg/utils"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/adapters/messaging"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/adapters/objectstore"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/domain/export"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/domain/models"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/infrastructure/postgres"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/utils"
	"github.com/google/uuid"
)

const (
	productCacheKeyPrefix = "product:"

	// maxProductNameLength ограничение product_name, колонка VARCHAR(255)
	maxProductNameLength = 250

	csvContentType  = "text/csv; charset=utf-8"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ProductCacheKey ключ карточки в кэше
func ProductCacheKey(productID int64) string {
	return productCacheKeyPrefix + strconv.FormatInt(productID, 10)
}

// ProductServiceConfig настройки сервиса карточек
type ProductServiceConfig struct {
	Images      UploadPolicy
	CacheTTL    time.Duration
	EventsTopic string
}

// ProductService создает карточки из загруженных изображений и генерирует выгрузки
type ProductService struct {
	repository postgres.ProductRepository
	store      interfaces.ObjectStoragePort
	cache      interfaces.CachePort
	messaging  interfaces.MessagingPort
	flatFile   *export.FlatFileExporter
	variants   *export.VariantTableExporter
	catalog    export.Catalog
	logger     interfaces.LoggerPort
	cfg        ProductServiceConfig
}

// NewProductService создает сервис; messaging может быть nil, тогда события не публикуются
func NewProductService(
	repository postgres.ProductRepository,
	store interfaces.ObjectStoragePort,
	cache interfaces.CachePort,
	messagingPort interfaces.MessagingPort,
	flatFile *export.FlatFileExporter,
	catalog export.Catalog,
	logger interfaces.LoggerPort,
	cfg ProductServiceConfig,
) *ProductService {
	if cfg.EventsTopic == "" {
		cfg.EventsTopic = messaging.CatalogEventsTopic
	}
	if len(cfg.Images.AllowedExtensions) == 0 {
		cfg.Images.AllowedExtensions = DefaultImageExtensions
	}
	return &ProductService{
		repository: repository,
		store:      store,
		cache:      cache,
		messaging:  messagingPort,
		flatFile:   flatFile,
		variants:   export.NewVariantTableExporter(catalog),
		catalog:    catalog,
		logger:     logger,
		cfg:        cfg,
	}
}

// exportBuilder генерирует файлы выгрузки для только что созданной карточки
type exportBuilder func(ctx context.Context, filename string, product *models.Product) (models.ExportRefs, error)

// CreateShopifyProduct создает карточку Shopify и прикрепляет плоский файл
func (s *ProductService) CreateShopifyProduct(ctx context.Context, upload *Upload, changedBy string) (*models.Product, error) {
	if err := s.cfg.Images.Validate("product_image", upload); err != nil {
		return nil, err
	}
	// шаблон проверяется до любой записи
	if err := s.flatFile.Available(); err != nil {
		exportsGenerated.WithLabelValues(pkgmodels.MarketplaceShopify.String(), "template_unavailable").Inc()
		return nil, err
	}

	return s.createListing(ctx, pkgmodels.MarketplaceShopify, s.catalog.TitleSuffix, upload, changedBy, s.buildFlatFile)
}

// CreateAmazonProduct создает карточку Amazon и прикрепляет таблицу вариантов в CSV и XLSX
func (s *ProductService) CreateAmazonProduct(ctx context.Context, upload *Upload, changedBy string) (*models.Product, error) {
	if err := s.cfg.Images.Validate("product_image", upload); err != nil {
		return nil, err
	}

	return s.createListing(ctx, pkgmodels.MarketplaceAmazon, s.catalog.ItemNameSuffix, upload, changedBy, s.buildVariantTable)
}

func (s *ProductService) createListing(
	ctx context.Context,
	label pkgmodels.Marketplace,
	nameSuffix string,
	upload *Upload,
	changedBy string,
	build exportBuilder,
) (*models.Product, error) {
	start := time.Now()
	status := "error"
	defer func() {
		exportsGenerated.WithLabelValues(label.String(), status).Inc()
		exportDuration.WithLabelValues(label.String()).Observe(time.Since(start).Seconds())
	}()

	name := export.Slug(upload.Filename) + nameSuffix
	if utf8.RuneCountInString(name) > maxProductNameLength {
		return nil, utils.NewValidationError("product_name", fmt.Sprintf(
			"Ensure this field has no more than %d characters.", maxProductNameLength))
	}

	imageKey := objectstore.UploadKey(objectstore.ProductImagesPrefix, upload.Filename)
	if err := s.store.Put(ctx, imageKey, upload.Body, upload.Size, contentTypeOr(upload, "application/octet-stream")); err != nil {
		return nil, fmt.Errorf("failed to upload product image: %w", err)
	}

	product := &models.Product{
		Name:     name,
		SKU:      uuid.New().String(),
		Label:    label,
		IsActive: true,
		ImageKey: imageKey,
	}
	if err := s.repository.CreateProduct(ctx, product); err != nil {
		s.discardObject(ctx, imageKey)
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	s.resolveURLs(product)
	s.publish(ctx, messaging.ListingCreatedEvent, product, changedBy)

	// карточка уже сохранена; при ошибке ниже она остается без выгрузки
	refs, err := build(ctx, upload.Filename, product)
	if err != nil {
		return nil, err
	}

	if err := s.repository.AttachExport(ctx, product.ID, refs); err != nil {
		return nil, fmt.Errorf("failed to attach export: %w", err)
	}
	product.CSVKey = optional(refs.CSVKey)
	product.ExcelKey = optional(refs.ExcelKey)
	s.resolveURLs(product)
	s.invalidate(ctx, product.ID)

	s.publish(ctx, messaging.ListingExportGeneratedEvent, product, changedBy)
	status = "success"

	s.logger.InfoWithContext(ctx, "Выгрузка сгенерирована",
		interfaces.LogField{Key: "product_id", Value: product.ID},
		interfaces.LogField{Key: "label", Value: label.String()},
		interfaces.LogField{Key: "csv_key", Value: refs.CSVKey},
	)
	return product, nil
}

func (s *ProductService) buildFlatFile(ctx context.Context, filename string, product *models.Product) (models.ExportRefs, error) {
	table, err := s.flatFile.Generate(filename, product.ImageURL)
	if err != nil {
		return models.ExportRefs{}, err
	}
	data, err := export.EncodeCSV(table, export.CRLF)
	if err != nil {
		return models.ExportRefs{}, err
	}

	csvKey := objectstore.ArtifactKey(objectstore.ProductCSVPrefix, export.Stem(filename), "csv")
	if err := objectstore.Replace(ctx, s.store, s.logger, product.CSVKey, csvKey, data, csvContentType); err != nil {
		return models.ExportRefs{}, fmt.Errorf("failed to store csv export: %w", err)
	}
	return models.ExportRefs{CSVKey: csvKey}, nil
}

func (s *ProductService) buildVariantTable(ctx context.Context, filename string, product *models.Product) (models.ExportRefs, error) {
	table := s.variants.Generate(filename, product.ImageURL)
	stem := export.Stem(filename)

	csvData, err := export.EncodeCSV(table, export.LF)
	if err != nil {
		return models.ExportRefs{}, err
	}
	xlsxData, err := export.EncodeXLSX(table)
	if err != nil {
		return models.ExportRefs{}, err
	}

	refs := models.ExportRefs{
		CSVKey:   objectstore.ArtifactKey(objectstore.ProductCSVPrefix, stem, "csv"),
		ExcelKey: objectstore.ArtifactKey(objectstore.ProductExcelPrefix, stem, "xlsx"),
	}
	if err := objectstore.Replace(ctx, s.store, s.logger, product.CSVKey, refs.CSVKey, csvData, csvContentType); err != nil {
		return models.ExportRefs{}, fmt.Errorf("failed to store csv export: %w", err)
	}
	if err := objectstore.Replace(ctx, s.store, s.logger, product.ExcelKey, refs.ExcelKey, xlsxData, xlsxContentType); err != nil {
		return models.ExportRefs{}, fmt.Errorf("failed to store excel export: %w", err)
	}
	return refs, nil
}

// ListProducts активные карточки площадки label (пустая означает все), новые первыми
func (s *ProductService) ListProducts(ctx context.Context, label pkgmodels.Marketplace, page *pkgutils.Pagination) ([]*models.Product, error) {
	products, total, err := s.repository.ListProducts(ctx, models.ProductFilter{
		Label:  label,
		Limit:  page.GetLimit(),
		Offset: page.GetOffset(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	page.SetTotal(int64(total))

	for _, p := range products {
		s.resolveURLs(p)
	}
	return products, nil
}

// GetProduct активная карточка по ID; чтение через кэш
func (s *ProductService) GetProduct(ctx context.Context, productID int64) (*models.Product, error) {
	key := ProductCacheKey(productID)

	if data, err := s.cache.Get(ctx, key); err == nil {
		var cached cachedProduct
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached.toModel(), nil
		}
		s.logger.WarnWithContext(ctx, "Поврежденная запись кэша", interfaces.LogField{Key: "key", Value: key})
	} else if !errors.Is(err, interfaces.ErrCacheMiss) {
		s.logger.WarnWithContext(ctx, "Ошибка чтения кэша",
			interfaces.LogField{Key: "key", Value: key},
			interfaces.LogField{Key: "error", Value: err.Error()},
		)
	}

	product, err := s.repository.GetProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil || !product.IsActive {
		return nil, utils.ErrProductNotFound
	}
	s.resolveURLs(product)

	if data, err := json.Marshal(newCachedProduct(product)); err == nil {
		if err := s.cache.Set(ctx, key, data, s.cfg.CacheTTL); err != nil {
			s.logger.WarnWithContext(ctx, "Ошибка записи в кэш",
				interfaces.LogField{Key: "key", Value: key},
				interfaces.LogField{Key: "error", Value: err.Error()},
			)
		}
	}
	return product, nil
}

// DeleteProduct мягко удаляет карточку любой площадки.
// Повторное удаление уже неактивной карточки успешно и событий не порождает.
func (s *ProductService) DeleteProduct(ctx context.Context, productID int64, changedBy string) error {
	product, err := s.repository.GetProduct(ctx, productID)
	if err != nil {
		return fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return utils.ErrProductNotFound
	}

	deactivated, err := s.repository.DeactivateProduct(ctx, productID)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if !deactivated {
		return nil
	}
	product.IsActive = false

	s.invalidate(ctx, productID)
	s.publish(ctx, messaging.ListingDeletedEvent, product, changedBy)
	return nil
}

// ArtifactURL публичный адрес файла выгрузки
func (s *ProductService) ArtifactURL(key string) string {
	return s.store.URL(key)
}

func (s *ProductService) resolveURLs(p *models.Product) {
	if p.ImageKey != "" {
		p.ImageURL = s.store.URL(p.ImageKey)
	}
	if p.CSVKey != nil {
		u := s.store.URL(*p.CSVKey)
		p.CSVURL = &u
	}
	if p.ExcelKey != nil {
		u := s.store.URL(*p.ExcelKey)
		p.ExcelURL = &u
	}
}

// discardObject удаляет объект, оставшийся без карточки; ошибка только логируется
func (s *ProductService) discardObject(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil {
		s.logger.WarnWithContext(ctx, "Не удалось удалить изображение несохраненной карточки",
			interfaces.LogField{Key: "key", Value: key},
			interfaces.LogField{Key: "error", Value: err.Error()},
		)
	}
}

func (s *ProductService) invalidate(ctx context.Context, productID int64) {
	if err := s.cache.Delete(ctx, ProductCacheKey(productID)); err != nil {
		s.logger.WarnWithContext(ctx, "Не удалось инвалидировать кэш карточки",
			interfaces.LogField{Key: "product_id", Value: productID},
			interfaces.LogField{Key: "error", Value: err.Error()},
		)
	}
}

// publish отправляет событие; ошибка брокера не прерывает запрос
func (s *ProductService) publish(ctx context.Context, eventType messaging.KafkaEvent, product *models.Product, changedBy string) {
	if s.messaging == nil {
		return
	}
	ev := messaging.NewListingEvent(eventType, product, changedBy)
	if err := messaging.PublishListingEvent(ctx, s.messaging, s.cfg.EventsTopic, ev); err != nil {
		s.logger.ErrorWithContext(ctx, "Не удалось опубликовать событие",
			interfaces.LogField{Key: "event", Value: eventType},
			interfaces.LogField{Key: "product_id", Value: product.ID},
			interfaces.LogField{Key: "error", Value: err.Error()},
		)
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// cachedProduct карточка в кэше вместе с ключами объектов
type cachedProduct struct {
	models.Product
	ImageKey string  `json:"image_key"`
	CSVKey   *string `json:"csv_key"`
	ExcelKey *string `json:"excel_key"`
}

func newCachedProduct(p *models.Product) cachedProduct {
	return cachedProduct{Product: *p, ImageKey: p.ImageKey, CSVKey: p.CSVKey, ExcelKey: p.ExcelKey}
}

func (c cachedProduct) toModel() *models.Product {
	p := c.Product
	p.ImageKey = c.ImageKey
	p.CSVKey = c.CSVKey
	p.ExcelKey = c.ExcelKey
	return &p
}
