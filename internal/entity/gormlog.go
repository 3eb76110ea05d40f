package entity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/vyrodovalexey/jsonapi-path-support/internal/observability"
)

// slowQueryThreshold is the duration above which queries log at warn.
const slowQueryThreshold = 200 * time.Millisecond

// gormLogger routes gorm logs to the server logger.
type gormLogger struct {
	logger observability.Logger
	level  gormlogger.LogLevel
}

func newGormLogger(logger observability.Logger) gormlogger.Interface {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &gormLogger{logger: logger, level: gormlogger.Warn}
}

func (l *gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *gormLogger) Info(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Info {
		l.logger.WithContext(ctx).Info(fmt.Sprintf(msg, args...))
	}
}

func (l *gormLogger) Warn(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Warn {
		l.logger.WithContext(ctx).Warn(fmt.Sprintf(msg, args...))
	}
}

func (l *gormLogger) Error(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Error {
		l.logger.WithContext(ctx).Error(fmt.Sprintf(msg, args...))
	}
}

func (l *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= gormlogger.Error:
		sql, rows := fc()
		l.logger.WithContext(ctx).Error("query failed",
			observability.String("sql", sql),
			observability.Int64("rows", rows),
			observability.Duration("elapsed", elapsed),
			observability.Error(err),
		)
	case elapsed > slowQueryThreshold && l.level >= gormlogger.Warn:
		sql, rows := fc()
		l.logger.WithContext(ctx).Warn("slow query",
			observability.String("sql", sql),
			observability.Int64("rows", rows),
			observability.Duration("elapsed", elapsed),
		)
	case l.level >= gormlogger.Info:
		sql, rows := fc()
		l.logger.WithContext(ctx).Debug("query",
			observability.String("sql", sql),
			observability.Int64("rows", rows),
			observability.Duration("elapsed", elapsed),
		)
	}
}
