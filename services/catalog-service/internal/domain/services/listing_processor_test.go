package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/farhyn/catalog-platform/pkg/interfaces"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/adapters/cache"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/adapters/logger"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/adapters/messaging"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/adapters/objectstore"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type delivered struct {
	label, fileName string
	data            []byte
}

type fakeDelivery struct {
	calls []delivered
	err   error
}

func (f *fakeDelivery) Deliver(_ context.Context, label, fileName string, data []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.calls = append(f.calls, delivered{label: label, fileName: fileName, data: data})
	return "outbound/" + label + "/" + fileName, nil
}

func listingMessage(t *testing.T, eventType string, product *models.Product) *interfaces.Message {
	t.Helper()
	bus := &fakeMessaging{}
	ev := messaging.NewListingEvent(eventType, product, "1")
	require.NoError(t, messaging.PublishListingEvent(context.Background(), bus, messaging.CatalogEventsTopic, ev))
	return bus.events()[0]
}

func TestListingEventProcessor_ExportGenerated(t *testing.T) {
	ctx := context.Background()
	store := objectstore.NewMemoryStore(storeURL)
	memCache := cache.NewMemoryCache(time.Minute, time.Minute)
	delivery := &fakeDelivery{}
	p := NewListingEventProcessor(memCache, store, delivery, logger.NewNopLogger())

	key := "product_csv_files/cat_1.csv"
	require.NoError(t, objectstore.Replace(ctx, store, logger.NewNopLogger(), nil, key, []byte("a,b\n"), "text/csv"))
	require.NoError(t, memCache.Set(ctx, ProductCacheKey(3), []byte("{}"), 0))

	product := &models.Product{ID: 3, Label: "amazon", CSVKey: &key}
	require.NoError(t, p.Handle(ctx, listingMessage(t, messaging.ListingExportGeneratedEvent, product)))

	_, err := memCache.Get(ctx, ProductCacheKey(3))
	assert.ErrorIs(t, err, interfaces.ErrCacheMiss)
	require.Len(t, delivery.calls, 1)
	assert.Equal(t, "amazon", delivery.calls[0].label)
	assert.Equal(t, "cat_1.csv", delivery.calls[0].fileName)
	assert.Equal(t, []byte("a,b\n"), delivery.calls[0].data)
}

func TestListingEventProcessor_Failures(t *testing.T) {
	ctx := context.Background()
	store := objectstore.NewMemoryStore(storeURL)
	memCache := cache.NewMemoryCache(time.Minute, time.Minute)
	delivery := &fakeDelivery{}
	p := NewListingEventProcessor(memCache, store, delivery, logger.NewNopLogger())

	missing := "product_csv_files/gone.csv"
	product := &models.Product{ID: 4, Label: "shopify", CSVKey: &missing}
	assert.NoError(t, p.Handle(ctx, listingMessage(t, messaging.ListingExportGeneratedEvent, product)))
	assert.Empty(t, delivery.calls)

	assert.NoError(t, p.Handle(ctx, &interfaces.Message{ID: "m", Value: []byte("not json")}))

	key := "product_csv_files/here.csv"
	require.NoError(t, objectstore.Replace(ctx, store, logger.NewNopLogger(), nil, key, []byte("x"), "text/csv"))
	delivery.err = errors.New("connection refused")
	product.CSVKey = &key
	assert.Error(t, p.Handle(ctx, listingMessage(t, messaging.ListingExportGeneratedEvent, product)))
}

func TestListingEventProcessor_Deleted(t *testing.T) {
	ctx := context.Background()
	memCache := cache.NewMemoryCache(time.Minute, time.Minute)
	p := NewListingEventProcessor(memCache, objectstore.NewMemoryStore(storeURL), nil, logger.NewNopLogger())

	require.NoError(t, memCache.Set(ctx, ProductCacheKey(5), []byte("{}"), 0))
	require.NoError(t, p.Handle(ctx, listingMessage(t, messaging.ListingDeletedEvent, &models.Product{ID: 5})))

	_, err := memCache.Get(ctx, ProductCacheKey(5))
	assert.ErrorIs(t, err, interfaces.ErrCacheMiss)
}

type traceRecorder struct {
	*logger.ZapLogger
	traces []string
}

func (r *traceRecorder) WithTraceID(traceID string) interfaces.LoggerPort {
	r.traces = append(r.traces, traceID)
	return r
}

func TestListingEventProcessor_TracesRequestID(t *testing.T) {
	ctx := context.Background()
	rec := &traceRecorder{ZapLogger: logger.NewNopLogger()}
	p := NewListingEventProcessor(cache.NewMemoryCache(time.Minute, time.Minute), objectstore.NewMemoryStore(storeURL), nil, rec)

	msg := listingMessage(t, messaging.ListingCreatedEvent, &models.Product{ID: 8})
	require.NoError(t, p.Handle(ctx, msg))
	assert.Empty(t, rec.traces)

	msg.Headers = map[string]string{"request_id": "api-host/abc-000001"}
	require.NoError(t, p.Handle(ctx, msg))
	assert.Equal(t, []string{"api-host/abc-000001"}, rec.traces)
}
