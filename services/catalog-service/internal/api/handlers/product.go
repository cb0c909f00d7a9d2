package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/farhyn/catalog-platform/pkg/auth"
	"github.com/farhyn/catalog-platform/pkg/interfaces"
	pkgmodels "github.com/farhyn/catalog-platform/pkg/models"
	pkgutils "github.com/farhyn/catalog-platform/pkg/utils"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/domain/models"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/domain/services"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/utils"
	"github.com/go-chi/chi/v5"
)

const shopifyNotFound = "Shopify product not found"

// ProductService операции над карточками, нужные обработчикам
type ProductService interface {
	CreateShopifyProduct(ctx context.Context, upload *services.Upload, changedBy string) (*models.Product, error)
	CreateAmazonProduct(ctx context.Context, upload *services.Upload, changedBy string) (*models.Product, error)
	ListProducts(ctx context.Context, label pkgmodels.Marketplace, page *pkgutils.Pagination) ([]*models.Product, error)
	GetProduct(ctx context.Context, productID int64) (*models.Product, error)
	DeleteProduct(ctx context.Context, productID int64, changedBy string) error
}

// ProductHandler обработчик запросов для карточек Shopify и Amazon
type ProductHandler struct {
	productService ProductService
	maxUploadBytes int64
	logger         interfaces.LoggerPort
}

// NewProductHandler maxUploadBytes ограничивает тело multipart запроса
func NewProductHandler(productService ProductService, maxUploadBytes int64, logger interfaces.LoggerPort) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

type shopifyCreatedResponse struct {
	Message string          `json:"message"`
	Product *models.Product `json:"product"`
}

type amazonCreatedResponse struct {
	ID           int64   `json:"id"`
	ProductName  string  `json:"product_name"`
	ProductImage string  `json:"product_image"`
	CSVFile      *string `json:"csv_file"`
	ExcelFile    *string `json:"excel_file"`
	Message      string  `json:"message"`
}

// ListShopifyProducts обрабатывает GET /api/shopify-products/.
// Параметр label сужает выборку до одной площадки.
func (h *ProductHandler) ListShopifyProducts(w http.ResponseWriter, r *http.Request) {
	var label pkgmodels.Marketplace
	if raw := r.URL.Query().Get("label"); raw != "" {
		parsed, ok := pkgmodels.ParseMarketplace(raw)
		if !ok {
			writeJSON(w, r, http.StatusBadRequest, map[string][]string{
				"label": {"Select a valid choice. " + raw + " is not one of the available choices."},
			})
			return
		}
		label = parsed
	}
	h.list(w, r, label)
}

// ListAmazonProducts обрабатывает GET /api/amazon-products/
func (h *ProductHandler) ListAmazonProducts(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, pkgmodels.MarketplaceAmazon)
}

func (h *ProductHandler) list(w http.ResponseWriter, r *http.Request, label pkgmodels.Marketplace) {
	page := pkgutils.PaginationFromQuery(r.URL.Query())

	products, err := h.productService.ListProducts(r.Context(), label, page)
	if err != nil {
		writeError(w, r, h.logger, err, shopifyNotFound)
		return
	}

	w.Header().Set("X-Total-Count", strconv.FormatInt(page.TotalItems, 10))
	w.Header().Set("X-Total-Pages", strconv.Itoa(page.TotalPages))
	writeJSON(w, r, http.StatusOK, products)
}

// CreateShopifyProduct обрабатывает POST /api/shopify-products/create/
func (h *ProductHandler) CreateShopifyProduct(w http.ResponseWriter, r *http.Request) {
	upload, closeUpload, err := formUpload(w, r, "product_image", h.maxUploadBytes)
	if err != nil {
		writeError(w, r, h.logger, err, shopifyNotFound)
		return
	}
	defer closeUpload()

	product, err := h.productService.CreateShopifyProduct(r.Context(), upload, auth.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err, shopifyNotFound)
		return
	}

	writeJSON(w, r, http.StatusCreated, shopifyCreatedResponse{
		Message: "Shopify product created successfully",
		Product: product,
	})
}

// CreateAmazonProduct обрабатывает POST /api/amazon-products/create/
func (h *ProductHandler) CreateAmazonProduct(w http.ResponseWriter, r *http.Request) {
	upload, closeUpload, err := formUpload(w, r, "product_image", h.maxUploadBytes)
	if err != nil {
		writeError(w, r, h.logger, err, shopifyNotFound)
		return
	}
	defer closeUpload()

	product, err := h.productService.CreateAmazonProduct(r.Context(), upload, auth.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err, shopifyNotFound)
		return
	}

	writeJSON(w, r, http.StatusCreated, amazonCreatedResponse{
		ID:           product.ID,
		ProductName:  product.Name,
		ProductImage: product.ImageURL,
		CSVFile:      product.CSVURL,
		ExcelFile:    product.ExcelURL,
		Message:      "Amazon product CSV created successfully",
	})
}

// GetProduct обрабатывает GET /api/shopify-products/{id}/
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := productIDParam(r)
	if err != nil {
		writeError(w, r, h.logger, err, shopifyNotFound)
		return
	}

	product, err := h.productService.GetProduct(r.Context(), productID)
	if err != nil {
		writeError(w, r, h.logger, err, shopifyNotFound)
		return
	}
	writeJSON(w, r, http.StatusOK, product)
}

// DeleteShopifyProduct обрабатывает DELETE /api/shopify-products/{id}/delete/
func (h *ProductHandler) DeleteShopifyProduct(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, "Shopify product deleted successfully")
}

// DeleteAmazonProduct обрабатывает DELETE /api/amazon-products/{id}/delete/
func (h *ProductHandler) DeleteAmazonProduct(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, "amazon product deleted successfully")
}

func (h *ProductHandler) delete(w http.ResponseWriter, r *http.Request, message string) {
	productID, err := productIDParam(r)
	if err != nil {
		writeError(w, r, h.logger, err, shopifyNotFound)
		return
	}

	if err := h.productService.DeleteProduct(r.Context(), productID, auth.UserIDFromContext(r.Context())); err != nil {
		writeError(w, r, h.logger, err, shopifyNotFound)
		return
	}
	writeJSON(w, r, http.StatusOK, messageResponse{Message: message})
}

// productIDParam нечисловой ID считается отсутствующей карточкой
func productIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, utils.ErrProductNotFound
	}
	return id, nil
}
