package db

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"happi-app-go/internal/config"
	"happi-app-go/pkg/logger"
)

// Pool defaults applied when the matching DB_* variable is unset.
const (
	defaultMaxOpenConns    = 10
	defaultMaxIdleConns    = 5
	defaultConnMaxLifetime = 30 * time.Minute
)

// GormConfig is shared by the postgres connection and the sqlite test
// databases so both translate driver errors the same way. It logs nothing.
func GormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// NewPostgres opens the pool, applies the pool limits and pings once.
func NewPostgres(cfg config.DBConfig, log logger.Logger) (*gorm.DB, error) {
	target := []any{"host", cfg.Host, "port", cfg.Port, "dbname", cfg.Name, "sslmode", cfg.SSLMode}
	if cfg.DSN != "" {
		target = []any{"dsn", "set"}
	}
	log.Info("db: connecting to postgres", target...)

	gormCfg := GormConfig()
	gormCfg.Logger = newGormLog(log, slowQueryThreshold)

	gormDB, err := gorm.Open(postgres.Open(cfg.GetDSN()), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("db handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(orDefault(cfg.MaxOpenConns, defaultMaxOpenConns))
	sqlDB.SetMaxIdleConns(orDefault(cfg.MaxIdleConns, defaultMaxIdleConns))
	sqlDB.SetConnMaxLifetime(orDefault(cfg.ConnMaxLifetime, defaultConnMaxLifetime))

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	stats := sqlDB.Stats()
	log.Info("db: connected", "max_open", stats.MaxOpenConnections)
	return gormDB, nil
}

func orDefault[T int | time.Duration](value, fallback T) T {
	if value <= 0 {
		return fallback
	}
	return value
}
