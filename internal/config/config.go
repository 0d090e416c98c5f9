package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"happi-app-go/pkg/logger"
)

var ErrMissingJWTSecret = errors.New("AUTH_JWT_SECRET is required in production")

type Config struct {
	HTTPPort  string
	Env       string
	LogLevel  string
	LogFormat string
	CORS      CORSConfig
	DB        DBConfig
	Auth      AuthConfig
	Cache     CacheConfig
	Redis     RedisConfig
	Storage   StorageConfig
	Events    EventsConfig
	Snowflake SnowflakeConfig
}

type CORSConfig struct {
	AllowedOrigins []string
	MaxAge         time.Duration
}

type DBConfig struct {
	DSN             string
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	TimeZone        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

type AuthConfig struct {
	JWTSecret    string
	SessionTTL   time.Duration
	CookieName   string
	CookieSecure bool
	BcryptCost   int
}

type CacheConfig struct {
	Driver     string
	CatalogTTL time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TLS      bool
}

type StorageConfig struct {
	Driver         string
	LocalRoot      string
	PublicBaseURL  string
	GCSBucket      string
	GCSCDNDomain   string
	MaxUploadBytes int64
}

type EventsConfig struct {
	AMQPURL  string
	Exchange string
}

type SnowflakeConfig struct {
	Node int64
}

func Load(log logger.Logger) (Config, error) {
	err := loadDotEnv(log)
	if err != nil {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		HTTPPort:  getEnv("HTTP_PORT", "8080"),
		Env:       getEnv("ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", ""),
		LogFormat: getEnv("LOG_FORMAT", "json"),
		CORS: CORSConfig{
			AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
			MaxAge:         getEnvDuration("CORS_MAX_AGE", 24*time.Hour),
		},
		DB: DBConfig{
			DSN:             getEnv("DB_DSN", ""),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Name:            getEnv("DB_NAME", "happi_app"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			TimeZone:        getEnv("DB_TIMEZONE", "UTC"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			AutoMigrate:     getEnvBool("DB_AUTO_MIGRATE", true),
		},
		Auth: AuthConfig{
			JWTSecret:    getEnv("AUTH_JWT_SECRET", ""),
			SessionTTL:   getEnvDuration("AUTH_SESSION_TTL", 7*24*time.Hour),
			CookieName:   getEnv("AUTH_COOKIE_NAME", "happi_session"),
			CookieSecure: getEnvBool("AUTH_COOKIE_SECURE", false),
			BcryptCost:   getEnvInt("AUTH_BCRYPT_COST", 12),
		},
		Cache: CacheConfig{
			Driver:     strings.ToLower(getEnv("CACHE_DRIVER", "memory")),
			CatalogTTL: getEnvDuration("CACHE_CATALOG_TTL", 5*time.Minute),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			TLS:      getEnvBool("REDIS_TLS", false),
		},
		Storage: StorageConfig{
			Driver:         strings.ToLower(getEnv("STORAGE_DRIVER", "local")),
			LocalRoot:      getEnv("STORAGE_LOCAL_ROOT", "storage/public"),
			PublicBaseURL:  getEnv("STORAGE_PUBLIC_BASE_URL", "/storage"),
			GCSBucket:      getEnv("STORAGE_GCS_BUCKET", ""),
			GCSCDNDomain:   getEnv("STORAGE_GCS_CDN_DOMAIN", ""),
			MaxUploadBytes: int64(getEnvInt("STORAGE_MAX_UPLOAD_BYTES", 5*1024*1024)),
		},
		Events: EventsConfig{
			AMQPURL:  getEnv("EVENTS_AMQP_URL", ""),
			Exchange: getEnv("EVENTS_EXCHANGE", "happi.events"),
		},
		Snowflake: SnowflakeConfig{
			Node: int64(getEnvInt("SNOWFLAKE_NODE", 1)),
		},
	}

	if cfg.Auth.JWTSecret == "" {
		if cfg.IsProduction() {
			return Config{}, ErrMissingJWTSecret
		}
		log.Warn("config: AUTH_JWT_SECRET not set, using development secret")
		cfg.Auth.JWTSecret = "development-only-secret"
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	if len(result) == 0 {
		return fallback
	}
	return result
}

func (c DBConfig) GetDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.TimeZone
}
