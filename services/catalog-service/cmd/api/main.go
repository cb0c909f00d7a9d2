package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/farhyn/catalog-platform/pkg/auth"
	"github.com/farhyn/catalog-platform/pkg/interfaces"
	"github.com/farhyn/catalog-platform/pkg/tx"
	"github.com/farhyn/catalog-platform/services/catalog-service/config"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/adapters/cache"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/adapters/logger"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/adapters/messaging"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/adapters/objectstore"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/adapters/storage"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/api"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/api/docs"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/api/handlers"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/domain/export"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/domain/services"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/security"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/utils"
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
	log.Info("Инициализация сервиса",
		interfaces.LogField{Key: "app_name", Value: cfg.AppName},
		interfaces.LogField{Key: "version", Value: cfg.Version},
		interfaces.LogField{Key: "env", Value: cfg.ENV},
	)

	connStr, err := utils.GenerateConnectionString(utils.ConnParams{
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		DBName:   cfg.Postgres.DBName,
		SSLMode:  cfg.Postgres.SSLMode,
		PoolSize: cfg.Postgres.PoolSize,
		Timeout:  cfg.Postgres.Timeout,
	})
	if err != nil {
		log.Fatal("Ошибка инициализации строки подключения базы", interfaces.LogField{Key: "error", Value: err.Error()})
	}

	pool, err := storage.NewPool(ctx, connStr)
	if err != nil {
		log.Fatal("Ошибка подключения к PostgreSQL", interfaces.LogField{Key: "error", Value: err.Error()})
	}
	defer pool.Close()
	if err := storage.EnsureSchema(ctx, pool); err != nil {
		log.Fatal("Ошибка создания схемы", interfaces.LogField{Key: "error", Value: err.Error()})
	}
	log.Info("Хранилище инициализировано")

	cacheClient, err := newCache(ctx, cfg)
	if err != nil {
		log.Fatal("Ошибка инициализации кэша", interfaces.LogField{Key: "error", Value: err.Error()})
	}
	defer cacheClient.Close()

	store, err := newObjectStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("Ошибка инициализации объектного хранилища", interfaces.LogField{Key: "error", Value: err.Error()})
	}

	var messagingClient interfaces.MessagingPort
	if cfg.Kafka.Enabled {
		kafkaClient, err := messaging.NewKafkaMessaging(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.ClientID, log)
		if err != nil {
			log.Fatal("Ошибка инициализации системы обмена сообщениями", interfaces.LogField{Key: "error", Value: err.Error()})
		}
		defer kafkaClient.Close()
		messagingClient = kafkaClient
		log.Info("Система обмена сообщениями инициализирована")
	} else {
		log.Warn("Kafka отключена, события карточек не публикуются")
	}

	catalog := catalogFromConfig(cfg)
	if err := catalog.Validate(); err != nil {
		log.Fatal("Некорректный каталог выгрузок", interfaces.LogField{Key: "error", Value: err.Error()})
	}
	template, err := export.LoadTemplate(cfg.Export.TemplatePath)
	if err != nil {
		// сервис работает, создание карточек Shopify отвечает 400 до исправления шаблона
		log.Error("Шаблон плоского файла недоступен",
			interfaces.LogField{Key: "path", Value: cfg.Export.TemplatePath},
			interfaces.LogField{Key: "error", Value: err.Error()},
		)
	}

	jwtManager, err := security.NewJWTManager(cfg.Security.JWTSecret, cfg.Security.AccessTTL, cfg.Security.RefreshTTL, cfg.Security.Issuer)
	if err != nil {
		log.Fatal("Ошибка инициализации JWT", interfaces.LogField{Key: "error", Value: err.Error()})
	}

	productService := services.NewProductService(
		storage.NewProductStorage(pool),
		store,
		cacheClient,
		messagingClient,
		export.NewFlatFileExporter(template, catalog),
		catalog,
		log,
		services.ProductServiceConfig{
			Images: services.UploadPolicy{
				MaxSize:           cfg.Upload.MaxImageSize,
				AllowedExtensions: cfg.Upload.AllowedExtensions,
			},
			CacheTTL:    cfg.Redis.TTL,
			EventsTopic: cfg.Kafka.Topic,
		},
	)
	memberService := services.NewMemberService(
		storage.NewUserStorage(pool),
		tx.NewTxManager(pool, log),
		jwtManager,
		store,
		services.UploadPolicy{MaxSize: cfg.Upload.MaxAvatarSize},
		log,
	)
	log.Info("Сервисы инициализированы")

	cookies := handlers.CookieConfig{Domain: cfg.Security.CookieDomain, Secure: cfg.Security.CookieSecure}
	routes := api.Handlers{
		// запас на multipart обвязку поверх самого файла
		Products: handlers.NewProductHandler(productService, cfg.Upload.MaxImageSize+1<<20, log),
		Members:  handlers.NewMemberHandler(memberService, cookies, cfg.Upload.MaxAvatarSize+1<<20, log),
	}

	authPorts := auth.ChainAuth{jwtManager}
	if cfg.Keycloak.Enabled {
		keycloakClient, err := auth.NewKeycloakClient(ctx, cfg.Keycloak.GetKeycloakConfig())
		if err != nil {
			log.Fatal("Ошибка инициализации Keycloak", interfaces.LogField{Key: "error", Value: err.Error()})
		}
		authPorts = append(authPorts, keycloakClient)
		routes.SSO = handlers.NewSSOHandler(keycloakClient, cookies, cfg.Keycloak.PostLoginRedirect, log)
		log.Info("Вход через Keycloak включен")
	}

	docs.SwaggerInfo.Version = cfg.Version

	router := api.SetupRouter(routes, authPorts, log, api.RouterConfig{
		CORSAllowedOrigins: cfg.Security.CORSAllowOrigins,
		RequestTimeout:     cfg.Server.RequestTimeout,
		RateLimitPerMinute: cfg.Security.RateLimit,
		MetricsEnabled:     cfg.Metrics.Enabled,
		MetricsPath:        cfg.Metrics.Path,
		HealthCheck:        pool.Ping,
	})
	log.Info("Маршрутизатор настроен")

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	done := make(chan struct{})
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("Сервер запущен", interfaces.LogField{Key: "address", Value: server.Addr})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Ошибка запуска сервера", interfaces.LogField{Key: "error", Value: err.Error()})
		}
	}()

	go func() {
		<-quit
		log.Info("Получен сигнал завершения, выполняется graceful shutdown...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("Ошибка при graceful shutdown", interfaces.LogField{Key: "error", Value: err.Error()})
		}
		log.Info("HTTP сервер остановлен")
		close(done)
	}()

	<-done
	log.Info("Сервер корректно завершил работу")
}

// newCache Redis при redis.enabled, иначе кэш в памяти процесса
func newCache(ctx context.Context, cfg *config.Config) (interfaces.CachePort, error) {
	if !cfg.Redis.Enabled {
		return cache.NewMemoryCache(cfg.Redis.TTL, 2*cfg.Redis.TTL), nil
	}
	return cache.NewRedisCache(ctx, cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Prefix)
}

func newObjectStore(ctx context.Context, cfg *config.Config, log interfaces.LoggerPort) (interfaces.ObjectStoragePort, error) {
	if cfg.Storage.Driver == config.StorageDriverMemory {
		log.Warn("Используется объектное хранилище в памяти, файлы не переживут перезапуск")
		return objectstore.NewMemoryStore(cfg.Storage.PublicBaseURL), nil
	}
	return objectstore.NewMinioStore(ctx, objectstore.MinioConfig{
		Endpoint:      cfg.Storage.Endpoint,
		AccessKey:     cfg.Storage.AccessKey,
		SecretKey:     cfg.Storage.SecretKey,
		Bucket:        cfg.Storage.Bucket,
		UseSSL:        cfg.Storage.UseSSL,
		PublicBaseURL: cfg.Storage.PublicBaseURL,
	}, log)
}

// catalogFromConfig каталог по умолчанию с суффиксами из export.*
func catalogFromConfig(cfg *config.Config) export.Catalog {
	catalog := export.DefaultCatalog()
	if cfg.Export.HandleSuffix != "" {
		catalog.HandleSuffix = cfg.Export.HandleSuffix
	}
	if cfg.Export.TitleSuffix != "" {
		catalog.TitleSuffix = cfg.Export.TitleSuffix
	}
	if cfg.Export.ItemNameSuffix != "" {
		catalog.ItemNameSuffix = cfg.Export.ItemNameSuffix
	}
	return catalog
}
