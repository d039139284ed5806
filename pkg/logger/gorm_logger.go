package logger

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormLogger implements gorm's logger.Interface on top of zap.
type GormLogger struct {
	logger *zap.Logger
	// LogLevel is the minimum gorm level that is emitted.
	LogLevel gormlogger.LogLevel
	// SlowThreshold marks queries slower than this as slow. Zero disables it.
	SlowThreshold time.Duration
	// IgnoreRecordNotFoundError drops gorm.ErrRecordNotFound from traces.
	IgnoreRecordNotFoundError bool
}

// NewGormLogger creates a GormLogger writing to logger.
func NewGormLogger(logger *zap.Logger, level gormlogger.LogLevel, slowThreshold time.Duration, ignoreRecordNotFound bool) *GormLogger {
	return &GormLogger{
		logger:                    logger.Named("gorm"),
		LogLevel:                  level,
		SlowThreshold:             slowThreshold,
		IgnoreRecordNotFoundError: ignoreRecordNotFound,
	}
}

func (g *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *g
	clone.LogLevel = level
	return &clone
}

func (g *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if g.LogLevel >= gormlogger.Info {
		For(ctx, g.logger).Sugar().Infof(msg, data...)
	}
}

func (g *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if g.LogLevel >= gormlogger.Warn {
		For(ctx, g.logger).Sugar().Warnf(msg, data...)
	}
}

func (g *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if g.LogLevel >= gormlogger.Error {
		For(ctx, g.logger).Sugar().Errorf(msg, data...)
	}
}

// Trace logs the executed statement with its latency and affected rows.
func (g *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.LogLevel <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	log := For(ctx, g.logger)
	fields := []zap.Field{
		zap.Duration("elapsed", elapsed),
		zap.String("sql", sql),
		zap.Int64("rows", rows),
	}

	switch {
	case err != nil && g.LogLevel >= gormlogger.Error &&
		(!g.IgnoreRecordNotFoundError || !errors.Is(err, gorm.ErrRecordNotFound)):
		log.Error("GORM query error", append(fields, zap.Error(err))...)
	case g.SlowThreshold != 0 && elapsed > g.SlowThreshold && g.LogLevel >= gormlogger.Warn:
		log.Warn("GORM slow query", append(fields, zap.Duration("threshold", g.SlowThreshold))...)
	case g.LogLevel >= gormlogger.Info:
		log.Info("GORM query", fields...)
	}
}
