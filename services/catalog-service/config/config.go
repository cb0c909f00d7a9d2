package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	StorageDriverMinio  = "minio"
	StorageDriverMemory = "memory"
)

// Config содержит все настройки сервиса
type Config struct {
	AppName  string
	Version  string
	LogLevel string
	ENV      string

	Server struct {
		Host            string
		Port            int
		ReadTimeout     time.Duration
		WriteTimeout    time.Duration
		ShutdownTimeout time.Duration
		RequestTimeout  time.Duration
	}

	Postgres struct {
		Host     string
		Port     int
		User     string
		Password string
		DBName   string
		SSLMode  string
		Timeout  time.Duration
		PoolSize int // размер пула соединений
	}

	Redis struct {
		Enabled  bool // false включает in-memory кэш
		Host     string
		Port     int
		Password string
		DB       int
		Prefix   string
		TTL      time.Duration // срок жизни карточки в кэше
	}

	Kafka struct {
		Enabled  bool
		Brokers  []string
		GroupID  string
		ClientID string
		Topic    string // топик событий карточек
	}

	Metrics struct {
		Enabled bool
		Path    string
		Port    int // порт HTTP сервера воркера с /metrics и /health
	}

	Security struct {
		JWTSecret        string
		AccessTTL        time.Duration
		RefreshTTL       time.Duration
		Issuer           string
		CORSAllowOrigins []string
		CookieDomain     string
		CookieSecure     bool
		RateLimit        int // запросов в минуту с одного IP, 0 отключает
	}

	Keycloak KeycloakConfig

	Storage struct {
		Driver        string
		Endpoint      string
		AccessKey     string
		SecretKey     string
		Bucket        string
		UseSSL        bool
		PublicBaseURL string
	}

	Export struct {
		TemplatePath   string // пустой путь означает встроенный шаблон
		HandleSuffix   string
		TitleSuffix    string
		ItemNameSuffix string
	}

	Upload struct {
		MaxImageSize      int64 // в байтах
		MaxAvatarSize     int64
		AllowedExtensions []string
	}

	Delivery struct {
		Enabled        bool
		Host           string
		Port           int
		Username       string
		PrivateKeyPath string
		KnownHostsPath string
		OutboundDir    string
		Timeout        time.Duration
	}

	LogFile struct {
		Path       string
		MaxSize    int // МБ
		MaxBackups int
		MaxAge     int // дни
		Compress   bool
	}
}

// Load загружает конфигурацию из файла и переменных окружения.
// configPath это имя файла без расширения в путях поиска или путь к yaml файлу.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	switch {
	case configPath == "":
		v.SetConfigName("config")
	case filepath.Ext(configPath) == ".yaml" || filepath.Ext(configPath) == ".yml":
		v.SetConfigFile(configPath)
	default:
		v.SetConfigName(configPath)
	}
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")
	v.AddConfigPath("../../config")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !(errors.Is(err, os.ErrNotExist) && configPath == "") {
			return nil, fmt.Errorf("ошибка чтения файла конфигурации: %w", err)
		}
		// файла нет, используются значения по умолчанию и переменные окружения
	}

	setDefaults(v)
	bindEnvVariables(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка десериализации конфигурации: %w", err)
	}

	cfg.ENV = v.GetString("env")
	if cfg.ENV == "" {
		cfg.ENV = "development"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет сочетания настроек, которые нельзя выразить значениями по умолчанию
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageDriverMinio:
		if c.Storage.Endpoint == "" || c.Storage.Bucket == "" {
			return errors.New("storage: endpoint and bucket are required for minio driver")
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("storage: unknown driver %q", c.Storage.Driver)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return errors.New("kafka: brokers are required")
	}
	if c.Delivery.Enabled && (c.Delivery.Host == "" || c.Delivery.Username == "" || c.Delivery.PrivateKeyPath == "") {
		return errors.New("delivery: host, username and privateKeyPath are required")
	}
	if c.Keycloak.Enabled && (c.Keycloak.ServerURL == "" || c.Keycloak.Realm == "") {
		return errors.New("keycloak: server_url and realm are required")
	}
	return nil
}

// IsProduction production окружение
func (c *Config) IsProduction() bool {
	return c.ENV == "production"
}

// setDefaults устанавливает значения по умолчанию
func setDefaults(v *viper.Viper) {
	// Основные настройки
	v.SetDefault("appName", "catalog-service")
	v.SetDefault("version", "1.0.0")
	v.SetDefault("logLevel", "info")
	v.SetDefault("env", "development")

	// Настройки сервера
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readTimeout", "15s")
	v.SetDefault("server.writeTimeout", "60s")
	v.SetDefault("server.shutdownTimeout", "10s")
	v.SetDefault("server.requestTimeout", "30s")

	// Настройки Postgres
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "postgres")
	v.SetDefault("postgres.dbname", "catalog")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.timeout", "5s")
	v.SetDefault("postgres.poolSize", 10)

	// Настройки Redis
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "catalog:")
	v.SetDefault("redis.ttl", "10m")

	// Настройки Kafka
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.groupID", "catalog-worker")
	v.SetDefault("kafka.clientID", "catalog-service")
	v.SetDefault("kafka.topic", "catalog-events")

	// Настройки метрик
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.port", 9100)

	// Настройки безопасности
	v.SetDefault("security.jwtSecret", "change-me-please-32-bytes-secret")
	v.SetDefault("security.accessTTL", "1h")
	v.SetDefault("security.refreshTTL", "336h")
	v.SetDefault("security.issuer", "catalog-service")
	v.SetDefault("security.corsAllowOrigins", []string{"http://localhost:3000"})
	v.SetDefault("security.cookieDomain", "")
	v.SetDefault("security.cookieSecure", false)
	v.SetDefault("security.rateLimit", 120)

	// Keycloak
	v.SetDefault("keycloak.enabled", false)
	v.SetDefault("keycloak.server_url", "")
	v.SetDefault("keycloak.realm", "")
	v.SetDefault("keycloak.client_id", "catalog-service")
	v.SetDefault("keycloak.client_secret", "")
	v.SetDefault("keycloak.redirect_url", "")
	v.SetDefault("keycloak.post_login_redirect", "/")

	// Объектное хранилище
	v.SetDefault("storage.driver", StorageDriverMinio)
	v.SetDefault("storage.endpoint", "localhost:9000")
	v.SetDefault("storage.accessKey", "minioadmin")
	v.SetDefault("storage.secretKey", "minioadmin")
	v.SetDefault("storage.bucket", "catalog-media")
	v.SetDefault("storage.useSSL", false)
	v.SetDefault("storage.publicBaseURL", "http://localhost:9000/catalog-media")

	// Выгрузки
	v.SetDefault("export.templatePath", "")
	v.SetDefault("export.handleSuffix", "")
	v.SetDefault("export.titleSuffix", "")
	v.SetDefault("export.itemNameSuffix", "")

	// Загрузки
	v.SetDefault("upload.maxImageSize", 10<<20)
	v.SetDefault("upload.maxAvatarSize", 5<<20)
	v.SetDefault("upload.allowedExtensions", []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp"})

	// Доставка выгрузок по SFTP
	v.SetDefault("delivery.enabled", false)
	v.SetDefault("delivery.port", 22)
	v.SetDefault("delivery.outboundDir", "outbound")
	v.SetDefault("delivery.timeout", "10s")

	// Файл лога
	v.SetDefault("logFile.path", "")
	v.SetDefault("logFile.maxSize", 100)
	v.SetDefault("logFile.maxBackups", 5)
	v.SetDefault("logFile.maxAge", 30)
	v.SetDefault("logFile.compress", true)
}

// bindEnvVariables привязывает переменные окружения к конфигурации
func bindEnvVariables(v *viper.Viper) {
	bind := func(key, env string) {
		_ = v.BindEnv(key, env)
	}

	// Основные настройки
	bind("appName", "APP_NAME")
	bind("version", "APP_VERSION")
	bind("logLevel", "LOG_LEVEL")
	bind("env", "APP_ENV")

	// Настройки сервера
	bind("server.host", "SERVER_HOST")
	bind("server.port", "SERVER_PORT")
	bind("server.readTimeout", "SERVER_READ_TIMEOUT")
	bind("server.writeTimeout", "SERVER_WRITE_TIMEOUT")
	bind("server.shutdownTimeout", "SERVER_SHUTDOWN_TIMEOUT")
	bind("server.requestTimeout", "SERVER_REQUEST_TIMEOUT")

	// Настройки Postgres
	bind("postgres.host", "POSTGRES_HOST")
	bind("postgres.port", "POSTGRES_PORT")
	bind("postgres.user", "POSTGRES_USER")
	bind("postgres.password", "POSTGRES_PASSWORD")
	bind("postgres.dbname", "POSTGRES_DBNAME")
	bind("postgres.sslmode", "POSTGRES_SSLMODE")
	bind("postgres.timeout", "POSTGRES_TIMEOUT")
	bind("postgres.poolSize", "POSTGRES_POOL_SIZE")

	// Настройки Redis
	bind("redis.enabled", "REDIS_ENABLED")
	bind("redis.host", "REDIS_HOST")
	bind("redis.port", "REDIS_PORT")
	bind("redis.password", "REDIS_PASSWORD")
	bind("redis.db", "REDIS_DB")
	bind("redis.ttl", "REDIS_TTL")

	// Настройки Kafka
	bind("kafka.enabled", "KAFKA_ENABLED")
	bind("kafka.brokers", "KAFKA_BROKERS")
	bind("kafka.groupID", "KAFKA_GROUP_ID")
	bind("kafka.topic", "KAFKA_TOPIC")

	// Настройки метрик
	bind("metrics.enabled", "METRICS_ENABLED")
	bind("metrics.port", "METRICS_PORT")

	// Настройки безопасности
	bind("security.jwtSecret", "JWT_SECRET")
	bind("security.accessTTL", "JWT_ACCESS_TTL")
	bind("security.refreshTTL", "JWT_REFRESH_TTL")
	bind("security.corsAllowOrigins", "CORS_ALLOW_ORIGINS")
	bind("security.cookieDomain", "COOKIE_DOMAIN")
	bind("security.cookieSecure", "COOKIE_SECURE")
	bind("security.rateLimit", "RATE_LIMIT")

	// Keycloak
	bind("keycloak.enabled", "KEYCLOAK_ENABLED")
	bind("keycloak.server_url", "KEYCLOAK_SERVER_URL")
	bind("keycloak.realm", "KEYCLOAK_REALM")
	bind("keycloak.client_id", "KEYCLOAK_CLIENT_ID")
	bind("keycloak.client_secret", "KEYCLOAK_CLIENT_SECRET")
	bind("keycloak.redirect_url", "KEYCLOAK_REDIRECT_URL")

	// Объектное хранилище
	bind("storage.driver", "STORAGE_DRIVER")
	bind("storage.endpoint", "MINIO_ENDPOINT")
	bind("storage.accessKey", "MINIO_ACCESS_KEY")
	bind("storage.secretKey", "MINIO_SECRET_KEY")
	bind("storage.bucket", "MINIO_BUCKET")
	bind("storage.useSSL", "MINIO_USE_SSL")
	bind("storage.publicBaseURL", "MEDIA_BASE_URL")

	bind("export.templatePath", "EXPORT_TEMPLATE_PATH")

	bind("upload.maxImageSize", "UPLOAD_MAX_IMAGE_SIZE")
	bind("upload.maxAvatarSize", "UPLOAD_MAX_AVATAR_SIZE")

	// Доставка
	bind("delivery.enabled", "DELIVERY_ENABLED")
	bind("delivery.host", "DELIVERY_HOST")
	bind("delivery.port", "DELIVERY_PORT")
	bind("delivery.username", "DELIVERY_USERNAME")
	bind("delivery.privateKeyPath", "DELIVERY_PRIVATE_KEY_PATH")
	bind("delivery.knownHostsPath", "DELIVERY_KNOWN_HOSTS_PATH")
	bind("delivery.outboundDir", "DELIVERY_OUTBOUND_DIR")

	bind("logFile.path", "LOG_FILE")
}
