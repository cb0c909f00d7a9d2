package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/farhyn/catalog-platform/pkg/interfaces"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/domain/models"
	"github.com/google/uuid"
)

type KafkaEvent = string

// CatalogEventsTopic топик событий карточек по умолчанию
const CatalogEventsTopic = "catalog-events"

const (
	ListingCreatedEvent         KafkaEvent = "listing_created"
	ListingExportGeneratedEvent KafkaEvent = "listing_export_generated"
	ListingDeletedEvent         KafkaEvent = "listing_deleted"
)

// NewListingEvent событие по карточке с новым ID и текущим временем
func NewListingEvent(eventType KafkaEvent, product *models.Product, changedBy string) *models.ListingEvent {
	ev := &models.ListingEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		ProductID:  product.ID,
		SKU:        product.SKU,
		Label:      product.Label,
		ChangedBy:  changedBy,
		OccurredAt: time.Now().Unix(),
	}
	if product.CSVKey != nil {
		ev.CSVKey = *product.CSVKey
	}
	if product.ExcelKey != nil {
		ev.ExcelKey = *product.ExcelKey
	}
	return ev
}

// PublishListingEvent сериализует событие; ключ сообщения равен ID карточки
func PublishListingEvent(ctx context.Context, port interfaces.MessagingPort, topic string, event *models.ListingEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", event.Type, err)
	}
	return port.Publish(ctx, topic, strconv.FormatInt(event.ProductID, 10), payload)
}

// DecodeListingEvent разбирает событие из сообщения
func DecodeListingEvent(msg *interfaces.Message) (*models.ListingEvent, error) {
	var ev models.ListingEvent
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		return nil, fmt.Errorf("failed to decode listing event: %w", err)
	}
	return &ev, nil
}
