package messaging

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/farhyn/catalog-platform/pkg/interfaces"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// KafkaMessaging реализация MessagingPort на confluent-kafka-go
type KafkaMessaging struct {
	producer       *kafka.Producer
	consumers      map[string]*kafka.Consumer
	consumersMutex sync.Mutex
	brokers        string
	groupID        string
	clientID       string
	logger         interfaces.LoggerPort
}

// NewKafkaMessaging создает producer; consumer'ы создаются на каждый Subscribe
func NewKafkaMessaging(brokers []string, groupID, clientID string, logger interfaces.LoggerPort) (*KafkaMessaging, error) {
	joined := strings.Join(brokers, ",")
	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":            joined,
		"client.id":                    clientID,
		"acks":                         "all",
		"retries":                      5,
		"retry.backoff.ms":             500,
		"compression.type":             "snappy",
		"linger.ms":                    10,
		"message.max.bytes":            1000000,
		"queue.buffering.max.messages": 100000,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	k := &KafkaMessaging{
		producer:  producer,
		consumers: make(map[string]*kafka.Consumer),
		brokers:   joined,
		groupID:   groupID,
		clientID:  clientID,
		logger:    logger,
	}
	go k.watchDeliveries()
	return k, nil
}

// watchDeliveries вычитывает отчеты о доставке, иначе канал Events переполняется
func (k *KafkaMessaging) watchDeliveries() {
	for ev := range k.producer.Events() {
		switch e := ev.(type) {
		case *kafka.Message:
			if e.TopicPartition.Error != nil {
				k.logger.Error("Ошибка доставки сообщения",
					interfaces.LogField{Key: "topic", Value: *e.TopicPartition.Topic},
					interfaces.LogField{Key: "error", Value: e.TopicPartition.Error.Error()},
				)
			}
		case kafka.Error:
			k.logger.Warn("Ошибка Kafka producer", interfaces.LogField{Key: "error", Value: e.Error()})
		}
	}
}

// toKafkaMessage добавляет служебные заголовки message_id и timestamp
func toKafkaMessage(topic, key string, value []byte, headers map[string]string) *kafka.Message {
	kafkaHeaders := make([]kafka.Header, 0, len(headers)+2)
	for k, v := range headers {
		kafkaHeaders = append(kafkaHeaders, kafka.Header{Key: k, Value: []byte(v)})
	}
	kafkaHeaders = append(kafkaHeaders,
		kafka.Header{Key: "message_id", Value: []byte(uuid.New().String())},
		kafka.Header{Key: "timestamp", Value: []byte(strconv.FormatInt(time.Now().UnixNano(), 10))},
	)

	var keyBytes []byte
	if key != "" {
		keyBytes = []byte(key)
	}

	return &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            keyBytes,
		Value:          value,
		Headers:        kafkaHeaders,
	}
}

// fromKafkaMessage обратное преобразование; время публикации берется из заголовка timestamp
func fromKafkaMessage(msg *kafka.Message) *interfaces.Message {
	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}

	publishedAt := msg.Timestamp
	if ns, err := strconv.ParseInt(headers["timestamp"], 10, 64); err == nil {
		publishedAt = time.Unix(0, ns)
	}

	var topic string
	if msg.TopicPartition.Topic != nil {
		topic = *msg.TopicPartition.Topic
	}

	return &interfaces.Message{
		ID:          headers["message_id"],
		Topic:       topic,
		Key:         string(msg.Key),
		Value:       msg.Value,
		Headers:     headers,
		PublishedAt: publishedAt,
	}
}

// Publish ставит сообщение в очередь producer'а; доставка подтверждается асинхронно
func (k *KafkaMessaging) Publish(ctx context.Context, topic, key string, message []byte) error {
	headers := map[string]string{}
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		headers["request_id"] = reqID
	}
	if err := k.producer.Produce(toKafkaMessage(topic, key, message, headers), nil); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

// Subscribe подписывается на топик группой groupID
func (k *KafkaMessaging) Subscribe(ctx context.Context, topic string, handler interfaces.MessageHandler) (func() error, error) {
	return k.SubscribeWithConfig(ctx, topic, handler, &interfaces.ConsumerConfig{
		GroupID:            k.groupID,
		AutoCommit:         false,
		AutoCommitInterval: 5 * time.Second,
		PollTimeout:        100 * time.Millisecond,
	})
}

// SubscribeWithConfig подписка с явными настройками consumer'а
func (k *KafkaMessaging) SubscribeWithConfig(ctx context.Context, topic string, handler interfaces.MessageHandler, config *interfaces.ConsumerConfig) (func() error, error) {
	consumer, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers":       k.brokers,
		"group.id":                config.GroupID,
		"client.id":               k.clientID,
		"auto.offset.reset":       "earliest",
		"enable.auto.commit":      config.AutoCommit,
		"auto.commit.interval.ms": int(config.AutoCommitInterval.Milliseconds()),
		"session.timeout.ms":      30000,
		"max.poll.interval.ms":    300000,
		"heartbeat.interval.ms":   3000,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka consumer: %w", err)
	}

	if err := consumer.Subscribe(topic, nil); err != nil {
		_ = consumer.Close()
		return nil, fmt.Errorf("failed to subscribe to topic %s: %w", topic, err)
	}

	id := uuid.New().String()
	k.consumersMutex.Lock()
	k.consumers[id] = consumer
	k.consumersMutex.Unlock()

	consumeCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		k.consume(consumeCtx, consumer, handler, config)
	}()

	unsubscribe := func() error {
		cancel()
		<-done

		k.consumersMutex.Lock()
		delete(k.consumers, id)
		k.consumersMutex.Unlock()
		return consumer.Close()
	}
	return unsubscribe, nil
}

// consume цикл чтения; при ручном коммите offset фиксируется только после успешной обработки
func (k *KafkaMessaging) consume(ctx context.Context, consumer *kafka.Consumer, handler interfaces.MessageHandler, config *interfaces.ConsumerConfig) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		ev := consumer.Poll(int(config.PollTimeout.Milliseconds()))
		if ev == nil {
			continue
		}

		switch e := ev.(type) {
		case *kafka.Message:
			msg := fromKafkaMessage(e)
			if err := handler(ctx, msg); err != nil {
				k.logger.Error("Ошибка обработки сообщения",
					interfaces.LogField{Key: "topic", Value: msg.Topic},
					interfaces.LogField{Key: "message_id", Value: msg.ID},
					interfaces.LogField{Key: "error", Value: err.Error()},
				)
				continue
			}
			if !config.AutoCommit {
				if _, err := consumer.CommitMessage(e); err != nil {
					k.logger.Warn("Ошибка коммита offset", interfaces.LogField{Key: "error", Value: err.Error()})
				}
			}
		case kafka.Error:
			k.logger.Warn("Ошибка Kafka consumer",
				interfaces.LogField{Key: "code", Value: e.Code().String()},
				interfaces.LogField{Key: "error", Value: e.Error()},
			)
			if e.Code() == kafka.ErrAllBrokersDown {
				return
			}
		}
	}
}

// Close закрывает consumer'ов и дожидается отправки очереди producer'а
func (k *KafkaMessaging) Close() error {
	k.consumersMutex.Lock()
	for id, consumer := range k.consumers {
		_ = consumer.Close()
		delete(k.consumers, id)
	}
	k.consumersMutex.Unlock()

	k.producer.Flush(15 * 1000)
	k.producer.Close()
	return nil
}
