package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestOperationFromSQL(t *testing.T) {
	assert.Equal(t, "SELECT", operationFromSQL("select * from companies"))
	assert.Equal(t, "INSERT", operationFromSQL("  INSERT INTO quotes (id) VALUES (1)"))
	assert.Equal(t, "UNKNOWN", operationFromSQL(""))
}

func TestGormLoggerTraceSkipsRecordNotFound(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewGormLogger(zap.New(core), DefaultGormLoggerConfig())

	l.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "SELECT 1", 0
	}, gormlogger.ErrRecordNotFound)
	assert.Equal(t, 0, logs.Len())

	l.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "SELECT 1", 0
	}, errors.New("boom"))
	if assert.Equal(t, 1, logs.Len()) {
		assert.Equal(t, "db.query", logs.All()[0].Message)
	}
}

func TestGormLoggerSilentMode(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewGormLogger(zap.New(core), DefaultGormLoggerConfig()).LogMode(gormlogger.Silent)

	l.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "DELETE FROM quotes", 1
	}, errors.New("boom"))
	assert.Equal(t, 0, logs.Len())
}
