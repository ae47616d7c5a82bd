package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	gormlogger "gorm.io/gorm/logger"
)

func newGormTestLogger(level gormlogger.LogLevel, slogLevel slog.Level) (*GormLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slogLevel}))
	return NewGormLogger(base, level), &buf
}

func TestGormLoggerTrace(t *testing.T) {
	query := func() (string, int64) { return "SELECT 1", 1 }

	tests := []struct {
		name      string
		level     gormlogger.LogLevel
		slogLevel slog.Level
		begin     time.Time
		err       error
		want      string
	}{
		{name: "error", level: gormlogger.Warn, slogLevel: slog.LevelInfo, begin: time.Now(), err: errors.New("locked"), want: "query failed"},
		{name: "record not found ignored", level: gormlogger.Warn, slogLevel: slog.LevelInfo, begin: time.Now(), err: gormlogger.ErrRecordNotFound, want: ""},
		{name: "slow", level: gormlogger.Warn, slogLevel: slog.LevelInfo, begin: time.Now().Add(-time.Second), want: "slow query"},
		{name: "fast query at warn", level: gormlogger.Warn, slogLevel: slog.LevelDebug, begin: time.Now(), want: ""},
		{name: "fast query at info", level: gormlogger.Info, slogLevel: slog.LevelDebug, begin: time.Now(), want: "msg=query"},
		{name: "silent", level: gormlogger.Silent, slogLevel: slog.LevelDebug, begin: time.Now(), err: errors.New("locked"), want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, buf := newGormTestLogger(tt.level, tt.slogLevel)
			l.Trace(context.Background(), tt.begin, query, tt.err)
			if tt.want == "" {
				assert.Empty(t, buf.String())
				return
			}
			assert.Contains(t, buf.String(), tt.want)
			assert.Contains(t, buf.String(), "component=gorm")
		})
	}
}

func TestGormLoggerSkipsSQLWhenQuiet(t *testing.T) {
	l, _ := newGormTestLogger(gormlogger.Info, slog.LevelInfo)
	called := false
	l.Trace(context.Background(), time.Now(), func() (string, int64) {
		called = true
		return "", 0
	}, nil)
	assert.False(t, called)
}

func TestGormLoggerSlowThresholdDisabled(t *testing.T) {
	l, buf := newGormTestLogger(gormlogger.Warn, slog.LevelInfo)
	l = l.WithSlowThreshold(0)
	l.Trace(context.Background(), time.Now().Add(-time.Minute), func() (string, int64) { return "SELECT 1", 1 }, nil)
	assert.Empty(t, buf.String())
}

func TestGormLoggerLogMode(t *testing.T) {
	l, buf := newGormTestLogger(gormlogger.Silent, slog.LevelInfo)
	l.Warn(context.Background(), "ignored")
	assert.Empty(t, buf.String())

	l.LogMode(gormlogger.Warn).Warn(context.Background(), "shown")
	assert.Contains(t, buf.String(), "shown")
}
