package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики генерации выгрузок
var (
	exportsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "export_generated_total",
		Help: "Количество сгенерированных выгрузок по площадкам",
	}, []string{"marketplace", "status"})

	exportDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "export_generation_duration_seconds",
		Help:    "Длительность генерации и сохранения выгрузки",
		Buckets: prometheus.DefBuckets,
	}, []string{"marketplace"})

	listingEventsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "worker_messages_processed_total",
		Help: "Количество обработанных событий карточек",
	}, []string{"type", "status"})
)
