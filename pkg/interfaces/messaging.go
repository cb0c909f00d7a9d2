package interfaces

import (
	"context"
	"time"
)

// Message сообщение шины событий каталога
type Message struct {
	ID          string            `json:"id"`
	Topic       string            `json:"topic"`
	Key         string            `json:"key"`
	Value       []byte            `json:"value"`
	Headers     map[string]string `json:"headers"`
	PublishedAt time.Time         `json:"published_at"`
}

// MessageHandler обработчик входящего сообщения
type MessageHandler func(ctx context.Context, msg *Message) error

// ConsumerConfig настройки подписчика
type ConsumerConfig struct {
	GroupID            string
	AutoCommit         bool
	AutoCommitInterval time.Duration
	PollTimeout        time.Duration
}

type MessagingPort interface {
	// Publish отправляет сообщение; key задает партиционирование и может быть пустым
	Publish(ctx context.Context, topic, key string, message []byte) error

	// Subscribe запускает обработку топика и возвращает функцию отписки
	Subscribe(ctx context.Context, topic string, handler MessageHandler) (func() error, error)

	Close() error
}
