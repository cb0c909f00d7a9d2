package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/farhyn/catalog-platform/pkg/interfaces"
	"github.com/farhyn/catalog-platform/services/catalog-service/config"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/adapters/cache"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/adapters/delivery"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/adapters/logger"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/adapters/messaging"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/adapters/objectstore"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/domain/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Метрики для Prometheus
var (
	messageProcessingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "worker_message_processing_duration_seconds",
		Help:    "Длительность обработки сообщений",
		Buckets: prometheus.DefBuckets,
	}, []string{"topic"})

	activeWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "worker_active_goroutines",
		Help: "Количество активных горутин-обработчиков",
	})
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Printf("Ошибка загрузки конфигурации: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log, err := logger.NewZapLogger(logger.Options{
		Level:      cfg.LogLevel,
		Production: cfg.IsProduction(),
		FilePath:   cfg.LogFile.Path,
		MaxSizeMB:  cfg.LogFile.MaxSize,
		MaxBackups: cfg.LogFile.MaxBackups,
		MaxAgeDays: cfg.LogFile.MaxAge,
		Compress:   cfg.LogFile.Compress,
	})
	if err != nil {
		fmt.Printf("Ошибка инициализации логгера: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	log.Info("Инициализация воркера",
		interfaces.LogField{Key: "app_name", Value: cfg.AppName + "-worker"},
		interfaces.LogField{Key: "version", Value: cfg.Version},
		interfaces.LogField{Key: "env", Value: cfg.ENV},
	)

	if !cfg.Kafka.Enabled {
		log.Fatal("Воркеру нужна Kafka: установите kafka.enabled")
	}

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metricsServer = startMetricsServer(cfg, log)
	}

	var cacheClient interfaces.CachePort
	if cfg.Redis.Enabled {
		cacheClient, err = cache.NewRedisCache(ctx, cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Prefix)
		if err != nil {
			log.Fatal("Ошибка инициализации кэша", interfaces.LogField{Key: "error", Value: err.Error()})
		}
	} else {
		// кэш API процесса недоступен воркеру, инвалидация сводится к no-op
		log.Warn("Redis отключен, воркер использует локальный кэш")
		cacheClient = cache.NewMemoryCache(cfg.Redis.TTL, 2*cfg.Redis.TTL)
	}
	defer cacheClient.Close()
	log.Info("Кэш инициализирован")

	var feedDelivery services.FeedDelivery
	var store interfaces.ObjectStoragePort
	if cfg.Delivery.Enabled {
		if cfg.Storage.Driver != config.StorageDriverMinio {
			log.Fatal("Доставка выгрузок требует storage.driver=minio")
		}
		store, err = objectstore.NewMinioStore(ctx, objectstore.MinioConfig{
			Endpoint:      cfg.Storage.Endpoint,
			AccessKey:     cfg.Storage.AccessKey,
			SecretKey:     cfg.Storage.SecretKey,
			Bucket:        cfg.Storage.Bucket,
			UseSSL:        cfg.Storage.UseSSL,
			PublicBaseURL: cfg.Storage.PublicBaseURL,
		}, log)
		if err != nil {
			log.Fatal("Ошибка инициализации объектного хранилища", interfaces.LogField{Key: "error", Value: err.Error()})
		}
		feedDelivery = delivery.NewSFTPDelivery(delivery.SFTPConfig{
			Host:           cfg.Delivery.Host,
			Port:           cfg.Delivery.Port,
			Username:       cfg.Delivery.Username,
			PrivateKeyPath: cfg.Delivery.PrivateKeyPath,
			KnownHostsPath: cfg.Delivery.KnownHostsPath,
			OutboundDir:    cfg.Delivery.OutboundDir,
			Timeout:        cfg.Delivery.Timeout,
		}, log)
		log.Info("Доставка выгрузок по SFTP включена",
			interfaces.LogField{Key: "host", Value: cfg.Delivery.Host})
	}

	messagingClient, err := messaging.NewKafkaMessaging(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.ClientID+"-worker", log)
	if err != nil {
		log.Fatal("Ошибка инициализации системы обмена сообщениями", interfaces.LogField{Key: "error", Value: err.Error()})
	}
	defer messagingClient.Close()
	log.Info("Система обмена сообщениями инициализирована")

	processor := services.NewListingEventProcessor(cacheClient, store, feedDelivery, log)

	done := make(chan struct{})
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var wg sync.WaitGroup
	subscribeToListingEvents(ctx, messagingClient, cfg.Kafka.Topic, instrument(cfg.Kafka.Topic, processor.Handle), log, &wg)

	go func() {
		<-quit
		log.Info("Получен сигнал завершения, выполняется graceful shutdown...")
		cancel()
		wg.Wait()

		if metricsServer != nil {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer shutdownCancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				log.Error("Ошибка остановки HTTP сервера метрик", interfaces.LogField{Key: "error", Value: err.Error()})
			}
		}
		close(done)
	}()

	log.Info("Воркер запущен и готов к обработке сообщений")
	<-done
	log.Info("Воркер корректно завершил работу")
}

// instrument добавляет метрики длительности и числа активных обработчиков
func instrument(topic string, handler interfaces.MessageHandler) interfaces.MessageHandler {
	return func(ctx context.Context, msg *interfaces.Message) error {
		startTime := time.Now()
		activeWorkers.Inc()
		defer activeWorkers.Dec()

		err := handler(ctx, msg)
		messageProcessingDuration.WithLabelValues(topic).Observe(time.Since(startTime).Seconds())
		return err
	}
}

// subscribeToListingEvents держит подписку на события карточек до отмены ctx
func subscribeToListingEvents(ctx context.Context, messagingClient interfaces.MessagingPort, topic string,
	handler interfaces.MessageHandler, logger interfaces.LoggerPort, wg *sync.WaitGroup) {

	wg.Add(1)
	go func() {
		defer wg.Done()

		unsubscribe, err := messagingClient.Subscribe(ctx, topic, handler)
		if err != nil {
			logger.Error("Ошибка подписки на события карточек",
				interfaces.LogField{Key: "topic", Value: topic},
				interfaces.LogField{Key: "error", Value: err.Error()})
			return
		}
		defer unsubscribe()

		logger.Info("Подписка на события карточек установлена", interfaces.LogField{Key: "topic", Value: topic})

		<-ctx.Done()
		logger.Info("Отмена подписки на события карточек")
	}()
}

func startMetricsServer(cfg *config.Config, log interfaces.LoggerPort) *http.Server {
	r := chi.NewRouter()
	r.Method(http.MethodGet, cfg.Metrics.Path, promhttp.Handler())
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("Запуск HTTP сервера для метрик", interfaces.LogField{Key: "addr", Value: server.Addr})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Ошибка запуска HTTP сервера для метрик", interfaces.LogField{Key: "error", Value: err.Error()})
		}
	}()
	return server
}
