package services

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/farhyn/catalog-platform/pkg/interfaces"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/adapters/messaging"
)

// FeedDelivery отправляет файл выгрузки на площадку
type FeedDelivery interface {
	Deliver(ctx context.Context, label, fileName string, data []byte) (string, error)
}

// ListingEventProcessor обрабатывает события карточек в воркере
type ListingEventProcessor struct {
	cache    interfaces.CachePort
	store    interfaces.ObjectStoragePort
	delivery FeedDelivery
	logger   interfaces.LoggerPort
}

// NewListingEventProcessor создает обработчик; delivery nil отключает отправку файлов
func NewListingEventProcessor(cache interfaces.CachePort, store interfaces.ObjectStoragePort, delivery FeedDelivery, logger interfaces.LoggerPort) *ListingEventProcessor {
	return &ListingEventProcessor{cache: cache, store: store, delivery: delivery, logger: logger}
}

// Handle реализует interfaces.MessageHandler
func (p *ListingEventProcessor) Handle(ctx context.Context, msg *interfaces.Message) error {
	ev, err := messaging.DecodeListingEvent(msg)
	if err != nil {
		// повторная обработка не поможет, сообщение подтверждается
		listingEventsProcessed.WithLabelValues("unknown", "malformed").Inc()
		p.logger.ErrorWithContext(ctx, "Некорректное событие карточки",
			interfaces.LogField{Key: "message_id", Value: msg.ID},
			interfaces.LogField{Key: "error", Value: err.Error()},
		)
		return nil
	}

	// request_id запроса API, породившего событие
	logger := p.logger
	if reqID := msg.Headers["request_id"]; reqID != "" {
		logger = logger.WithTraceID(reqID)
	}
	logger = logger.WithFields(
		interfaces.LogField{Key: "event_id", Value: ev.ID},
		interfaces.LogField{Key: "event_type", Value: ev.Type},
		interfaces.LogField{Key: "product_id", Value: ev.ProductID},
	)

	switch ev.Type {
	case messaging.ListingExportGeneratedEvent:
		err = p.handleExportGenerated(ctx, ev.ProductID, string(ev.Label), ev.CSVKey)
	case messaging.ListingDeletedEvent:
		err = p.cache.Delete(ctx, ProductCacheKey(ev.ProductID))
	case messaging.ListingCreatedEvent:
		logger.DebugWithContext(ctx, "Карточка создана")
	default:
		logger.WarnWithContext(ctx, "Неизвестный тип события")
	}

	if err != nil {
		listingEventsProcessed.WithLabelValues(ev.Type, "error").Inc()
		logger.ErrorWithContext(ctx, "Ошибка обработки события", interfaces.LogField{Key: "error", Value: err.Error()})
		return err
	}
	listingEventsProcessed.WithLabelValues(ev.Type, "success").Inc()
	return nil
}

func (p *ListingEventProcessor) handleExportGenerated(ctx context.Context, productID int64, label, csvKey string) error {
	if err := p.cache.Delete(ctx, ProductCacheKey(productID)); err != nil {
		return fmt.Errorf("failed to invalidate product cache: %w", err)
	}
	if p.delivery == nil || csvKey == "" {
		return nil
	}

	data, err := p.store.Get(ctx, csvKey)
	if err != nil {
		if errors.Is(err, interfaces.ErrObjectNotFound) {
			// файл заменен или удален до доставки
			p.logger.WarnWithContext(ctx, "Файл выгрузки не найден", interfaces.LogField{Key: "key", Value: csvKey})
			return nil
		}
		return fmt.Errorf("failed to read export %s: %w", csvKey, err)
	}

	remote, err := p.delivery.Deliver(ctx, label, path.Base(csvKey), data)
	if err != nil {
		return fmt.Errorf("failed to deliver export: %w", err)
	}
	p.logger.InfoWithContext(ctx, "Выгрузка доставлена",
		interfaces.LogField{Key: "product_id", Value: productID},
		interfaces.LogField{Key: "remote_path", Value: remote},
	)
	return nil
}
