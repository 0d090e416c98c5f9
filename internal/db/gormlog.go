package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"happi-app-go/pkg/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

// gormLog forwards gorm's messages to the application logger. Only failed
// statements and those slower than slow are traced. Missing records and
// unique violations surface as domain errors and are not logged here.
type gormLog struct {
	log   logger.Logger
	slow  time.Duration
	level gormlogger.LogLevel
}

func newGormLog(log logger.Logger, slow time.Duration) gormlogger.Interface {
	return &gormLog{log: log, slow: slow, level: gormlogger.Warn}
}

func (g *gormLog) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	next := *g
	next.level = level
	return &next
}

func (g *gormLog) Info(_ context.Context, msg string, args ...interface{}) {
	if g.level >= gormlogger.Info {
		g.log.Debug("db: "+fmt.Sprintf(msg, args...))
	}
}

func (g *gormLog) Warn(_ context.Context, msg string, args ...interface{}) {
	if g.level >= gormlogger.Warn {
		g.log.Warn("db: "+fmt.Sprintf(msg, args...))
	}
}

func (g *gormLog) Error(_ context.Context, msg string, args ...interface{}) {
	if g.level >= gormlogger.Error {
		g.log.Error("db: "+fmt.Sprintf(msg, args...))
	}
}

func (g *gormLog) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	log := logger.FromContext(ctx, g.log)

	switch {
	case err != nil && !expected(err) && g.level >= gormlogger.Error:
		sql, rows := fc()
		log.InternalError("db: query failed", err, "sql", sql, "rows", rows, "elapsed_ms", elapsed.Milliseconds())
	case g.slow > 0 && elapsed > g.slow && g.level >= gormlogger.Warn:
		sql, rows := fc()
		log.Warn("db: slow query", "sql", sql, "rows", rows, "elapsed_ms", elapsed.Milliseconds())
	}
}

func expected(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, gorm.ErrDuplicatedKey)
}
