package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestConvertFields(t *testing.T) {
	fields := convertFields("user_id", "u1", 42, "answer", "dangling")
	require.Len(t, fields, 2)
	assert.Equal(t, "user_id", fields[0].Key)
	assert.Equal(t, "42", fields[1].Key)

	assert.Nil(t, convertFields())
}

func TestLoggerWritesKeyValues(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := FromZap(zap.New(core)).With("component", "join")

	l.Warn("[JOIN] debit failed", "user_id", "u1", "error", errors.New("boom"))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "[JOIN] debit failed", entries[0].Message)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "join", ctx["component"])
	assert.Equal(t, "u1", ctx["user_id"])
	assert.Equal(t, "boom", ctx["error"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
}
