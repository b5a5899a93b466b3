// Package gorm routes gorm's statement and error logging into zerolog.
package gorm

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Logger implements gorm's logger.Interface on a zerolog logger.
type Logger struct {
	log           zerolog.Logger
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

// New creates a gorm logger. With logQueries every statement is logged at debug level,
// otherwise only errors and slow statements are reported.
func New(l zerolog.Logger, logQueries bool) *Logger {
	level := gormlogger.Warn
	if logQueries {
		level = gormlogger.Info
	}

	return &Logger{log: l, level: level, slowThreshold: 200 * time.Millisecond} //nolint:mnd
}

// LogMode implements logger.Interface.
func (l *Logger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level

	return &clone
}

// Info implements logger.Interface.
func (l *Logger) Info(_ context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Info {
		l.log.Info().Interface("data", data).Msg(msg)
	}
}

// Warn implements logger.Interface.
func (l *Logger) Warn(_ context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Warn {
		l.log.Warn().Interface("data", data).Msg(msg)
	}
}

// Error implements logger.Interface.
func (l *Logger) Error(_ context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Error {
		l.log.Error().Interface("data", data).Msg(msg)
	}
}

// Trace implements logger.Interface. Record not found is an expected outcome of lookups
// and is not reported as an error.
func (l *Logger) Trace(_ context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)

	var ev *zerolog.Event

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= gormlogger.Error:
		ev = l.log.Error().Err(err)
	case l.slowThreshold > 0 && elapsed > l.slowThreshold && l.level >= gormlogger.Warn:
		ev = l.log.Warn().Dur("threshold", l.slowThreshold)
	case l.level >= gormlogger.Info:
		ev = l.log.Debug()
	default:
		return
	}

	sql, rows := fc()
	ev.Str("sql", sql).Int64("rows", rows).Dur("elapsed", elapsed).Msg("gorm")
}
