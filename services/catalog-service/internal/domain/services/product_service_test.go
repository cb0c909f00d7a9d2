package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	pkgmodels "github.com/farhyn/catalog-platform/pkg/models"
	pkgutils "github.com/farhyn/catalog-platform/pkg/utils"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/adapters/cache"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/adapters/logger"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/adapters/messaging"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/adapters/objectstore"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/domain/export"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const storeURL = "https://cdn.test/media"

type productFixture struct {
	svc   *ProductService
	repo  *fakeProductRepo
	store *objectstore.MemoryStore
	bus   *fakeMessaging
}

func newProductFixture(t *testing.T, withTemplate bool) *productFixture {
	t.Helper()

	var template *export.Table
	if withTemplate {
		var err error
		template, err = export.LoadTemplate("")
		require.NoError(t, err)
	}

	f := &productFixture{
		repo:  newFakeProductRepo(),
		store: objectstore.NewMemoryStore(storeURL),
		bus:   &fakeMessaging{},
	}
	catalog := export.DefaultCatalog()
	f.svc = NewProductService(
		f.repo,
		f.store,
		cache.NewMemoryCache(time.Minute, time.Minute),
		f.bus,
		export.NewFlatFileExporter(template, catalog),
		catalog,
		logger.NewNopLogger(),
		ProductServiceConfig{Images: UploadPolicy{MaxSize: 1 << 20}, CacheTTL: time.Minute},
	)
	return f
}

// pngBytes PNG 2x2, достаточный для image.DecodeConfig
func pngBytes(t testing.TB) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func imageUpload(t testing.TB, name string) *Upload {
	body := pngBytes(t)
	return &Upload{Filename: name, Size: int64(len(body)), ContentType: "image/png", Body: bytes.NewReader(body)}
}

func keysWithPrefix(store *objectstore.MemoryStore, prefix string) []string {
	var out []string
	for _, k := range store.Keys() {
		if strings.HasPrefix(k, prefix+"/") {
			out = append(out, k)
		}
	}
	return out
}

func TestCreateShopifyProduct(t *testing.T) {
	f := newProductFixture(t, true)
	ctx := context.Background()

	product, err := f.svc.CreateShopifyProduct(ctx, imageUpload(t, "my_cool-shirt.png"), "7")
	require.NoError(t, err)

	assert.Equal(t, "My Cool Shirt - Baby Boy Girl Clothes Bodysuit Funny Cute", product.Name)
	assert.Equal(t, pkgmodels.MarketplaceShopify, product.Label)
	assert.Len(t, product.SKU, 36)
	assert.True(t, product.IsActive)
	assert.True(t, strings.HasPrefix(product.ImageKey, "product_images/my_cool-shirt_"), product.ImageKey)
	assert.True(t, strings.HasSuffix(product.ImageKey, ".png"))
	assert.Equal(t, storeURL+"/"+product.ImageKey, product.ImageURL)

	require.NotNil(t, product.CSVKey)
	assert.Regexp(t, `^product_csv_files/my_cool-shirt_[0-9a-f-]{36}\.csv$`, *product.CSVKey)
	require.NotNil(t, product.CSVURL)
	assert.Equal(t, storeURL+"/"+*product.CSVKey, *product.CSVURL)
	assert.Nil(t, product.ExcelKey)

	data, err := f.store.Get(ctx, *product.CSVKey)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\r\n")

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	header := records[0]
	col := func(name string) int {
		for i, h := range header {
			if h == name {
				return i
			}
		}
		t.Fatalf("column %q not found", name)
		return -1
	}
	assert.Equal(t, "mycoolshirt-baby-boy-girl-clothes-bodysuit-funny-cute", records[1][col(export.ColumnHandle)])
	assert.Equal(t, product.ImageURL, records[1][col(export.ColumnImageSrc)])

	stored, err := f.repo.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, product.CSVKey, stored.CSVKey)

	events := f.bus.events()
	require.Len(t, events, 2)
	first, err := messaging.DecodeListingEvent(events[0])
	require.NoError(t, err)
	assert.Equal(t, messaging.ListingCreatedEvent, first.Type)
	second, err := messaging.DecodeListingEvent(events[1])
	require.NoError(t, err)
	assert.Equal(t, messaging.ListingExportGeneratedEvent, second.Type)
	assert.Equal(t, *product.CSVKey, second.CSVKey)
	assert.Equal(t, "7", second.ChangedBy)
	assert.Equal(t, messaging.CatalogEventsTopic, events[1].Topic)
}

func TestCreateShopifyProduct_TemplateUnavailable(t *testing.T) {
	f := newProductFixture(t, false)

	_, err := f.svc.CreateShopifyProduct(context.Background(), imageUpload(t, "shirt.png"), "1")
	require.ErrorIs(t, err, utils.ErrTemplateUnavailable)

	assert.Empty(t, f.store.Keys())
	assert.Empty(t, f.repo.products)
	assert.Empty(t, f.bus.events())
}

func TestCreateAmazonProduct(t *testing.T) {
	f := newProductFixture(t, false)
	ctx := context.Background()

	product, err := f.svc.CreateAmazonProduct(ctx, imageUpload(t, "Little_Cupcake.jpg"), "1")
	require.NoError(t, err)

	assert.Equal(t, "Little Cupcake - Baby Boy Girl Clothes Bodysuit Funny", product.Name)
	assert.Equal(t, pkgmodels.MarketplaceAmazon, product.Label)
	require.NotNil(t, product.CSVKey)
	require.NotNil(t, product.ExcelKey)
	assert.Regexp(t, `^product_csv_files/little_cupcake_[0-9a-f-]{36}\.csv$`, *product.CSVKey)
	assert.Regexp(t, `^product_excel_files/little_cupcake_[0-9a-f-]{36}\.xlsx$`, *product.ExcelKey)
	require.NotNil(t, product.ExcelURL)

	data, err := f.store.Get(ctx, *product.CSVKey)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "\r\n")

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 29)
	assert.Equal(t, "Little_cupcake-Parent", records[1][0])
	for _, row := range records[1:] {
		assert.Equal(t, product.ImageURL, row[4])
	}

	xlsx, err := f.store.Get(ctx, *product.ExcelKey)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(xlsx, []byte("PK")))
}

func TestCreateProduct_InvalidUpload(t *testing.T) {
	f := newProductFixture(t, true)
	ctx := context.Background()

	tests := []struct {
		name   string
		upload *Upload
	}{
		{"missing", nil},
		{"extension", imageUpload(t, "notes.txt")},
		{"too large", &Upload{Filename: "big.png", Size: 2 << 20, Body: bytes.NewReader(nil)}},
		{"text named png", &Upload{Filename: "notes.png", Size: 32, Body: strings.NewReader("this is plain text, not an image")}},
		{"truncated png", &Upload{Filename: "half.png", Size: 8, Body: bytes.NewReader(pngBytes(t)[:8])}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateShopifyProduct(ctx, tt.upload, "1")
			var verr *utils.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Contains(t, verr.Fields, "product_image")
		})
	}
	assert.Empty(t, f.store.Keys())
}

func TestCreateProduct_RejectsNonImageContent(t *testing.T) {
	f := newProductFixture(t, true)

	body := "this is plain text, not an image"
	_, err := f.svc.CreateShopifyProduct(context.Background(),
		&Upload{Filename: "notes.png", Size: int64(len(body)), Body: strings.NewReader(body)}, "1")
	var verr *utils.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{invalidImageMessage}, verr.Fields["product_image"])
	assert.Empty(t, f.store.Keys())
	assert.Empty(t, f.repo.products)
}

func TestCreateProduct_StreamedUploadIsRewound(t *testing.T) {
	f := newProductFixture(t, false)
	ctx := context.Background()
	data := pngBytes(t)

	// тело без Seek, как у произвольного io.Reader
	upload := &Upload{Filename: "stream.png", Size: int64(len(data)), Body: io.MultiReader(bytes.NewReader(data))}
	product, err := f.svc.CreateAmazonProduct(ctx, upload, "1")
	require.NoError(t, err)

	stored, err := f.store.Get(ctx, product.ImageKey)
	require.NoError(t, err)
	assert.Equal(t, data, stored)
}

func TestCreateProduct_NameTooLong(t *testing.T) {
	f := newProductFixture(t, true)

	_, err := f.svc.CreateShopifyProduct(context.Background(), imageUpload(t, strings.Repeat("a", 230)+".png"), "1")
	var verr *utils.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "product_name")
	assert.Empty(t, f.store.Keys())

	// 250 символов вместе с суффиксом допустимы
	stem := strings.Repeat("b", maxProductNameLength-len(export.DefaultCatalog().TitleSuffix))
	_, err = f.svc.CreateShopifyProduct(context.Background(), imageUpload(t, stem+".png"), "1")
	assert.NoError(t, err)
}

func TestCreateProduct_CreateFailureRemovesImage(t *testing.T) {
	f := newProductFixture(t, false)
	f.repo.createErr = errors.New("value too long for type character varying(255)")

	_, err := f.svc.CreateAmazonProduct(context.Background(), imageUpload(t, "orphan.png"), "1")
	require.Error(t, err)
	assert.Empty(t, keysWithPrefix(f.store, objectstore.ProductImagesPrefix))
	assert.Empty(t, f.bus.events())
}

func TestCreateProduct_PublishFailureIsNotFatal(t *testing.T) {
	f := newProductFixture(t, false)
	f.bus.err = errors.New("broker down")

	product, err := f.svc.CreateAmazonProduct(context.Background(), imageUpload(t, "a.png"), "1")
	require.NoError(t, err)
	assert.NotNil(t, product.CSVKey)
}

func TestCreateProduct_AttachFailureKeepsRecord(t *testing.T) {
	f := newProductFixture(t, false)
	f.repo.attachErr = errors.New("connection reset")

	_, err := f.svc.CreateAmazonProduct(context.Background(), imageUpload(t, "a.png"), "1")
	require.Error(t, err)

	require.Len(t, f.repo.products, 1)
	for _, p := range f.repo.products {
		assert.Nil(t, p.CSVKey)
	}
}

func TestGetProduct_ReadThroughCache(t *testing.T) {
	f := newProductFixture(t, false)
	ctx := context.Background()

	created, err := f.svc.CreateAmazonProduct(ctx, imageUpload(t, "cat.png"), "1")
	require.NoError(t, err)

	calls := f.repo.getCalls
	got, err := f.svc.GetProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Name, got.Name)
	assert.Equal(t, calls+1, f.repo.getCalls)

	cached, err := f.svc.GetProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, calls+1, f.repo.getCalls)
	assert.Equal(t, got.CSVKey, cached.CSVKey)
	assert.Equal(t, got.ImageKey, cached.ImageKey)
	assert.Equal(t, got.CSVURL, cached.CSVURL)

	_, err = f.svc.GetProduct(ctx, 9999)
	assert.ErrorIs(t, err, utils.ErrProductNotFound)
}

func TestDeleteProduct(t *testing.T) {
	f := newProductFixture(t, true)
	ctx := context.Background()

	created, err := f.svc.CreateShopifyProduct(ctx, imageUpload(t, "dog.png"), "1")
	require.NoError(t, err)
	_, err = f.svc.GetProduct(ctx, created.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteProduct(ctx, created.ID, "2"))

	_, err = f.svc.GetProduct(ctx, created.ID)
	assert.ErrorIs(t, err, utils.ErrProductNotFound)

	events := f.bus.events()
	require.NoError(t, f.svc.DeleteProduct(ctx, created.ID, "2"))
	assert.Len(t, f.bus.events(), len(events))
	assert.ErrorIs(t, f.svc.DeleteProduct(ctx, 404, "2"), utils.ErrProductNotFound)

	last, err := messaging.DecodeListingEvent(events[len(events)-1])
	require.NoError(t, err)
	assert.Equal(t, messaging.ListingDeletedEvent, last.Type)
	assert.Equal(t, created.ID, last.ProductID)
}

func TestListProducts(t *testing.T) {
	f := newProductFixture(t, true)
	ctx := context.Background()

	a, err := f.svc.CreateShopifyProduct(ctx, imageUpload(t, "one.png"), "1")
	require.NoError(t, err)
	b, err := f.svc.CreateShopifyProduct(ctx, imageUpload(t, "two.png"), "1")
	require.NoError(t, err)
	_, err = f.svc.CreateAmazonProduct(ctx, imageUpload(t, "three.png"), "1")
	require.NoError(t, err)
	require.NoError(t, f.svc.DeleteProduct(ctx, a.ID, "1"))

	page := pkgutils.NewPagination(1, 10)
	shopify, err := f.svc.ListProducts(ctx, pkgmodels.MarketplaceShopify, page)
	require.NoError(t, err)
	require.Len(t, shopify, 1)
	assert.Equal(t, b.ID, shopify[0].ID)
	assert.Equal(t, int64(1), page.TotalItems)
	assert.NotEmpty(t, shopify[0].ImageURL)

	page = pkgutils.NewPagination(1, 1)
	all, err := f.svc.ListProducts(ctx, "", page)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, int64(2), page.TotalItems)
	assert.True(t, page.HasNext)
	assert.Equal(t, pkgmodels.MarketplaceAmazon, all[0].Label)
}

func TestListProducts_WithoutPageParamsReturnsAll(t *testing.T) {
	f := newProductFixture(t, true)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		_, err := f.svc.CreateShopifyProduct(ctx, imageUpload(t, "shirt.png"), "1")
		require.NoError(t, err)
	}

	page := pkgutils.PaginationFromQuery(url.Values{})
	products, err := f.svc.ListProducts(ctx, "", page)
	require.NoError(t, err)
	assert.Len(t, products, 25)
	assert.Equal(t, int64(25), page.TotalItems)
	assert.Equal(t, 1, page.TotalPages)

	page = pkgutils.PaginationFromQuery(url.Values{"page": {"2"}})
	products, err = f.svc.ListProducts(ctx, "", page)
	require.NoError(t, err)
	assert.Len(t, products, 5)
}
