package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger_LevelsAndFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapLogger(zap.New(core))
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.Info(ctx, "inf", "b", 2)
	log.Warn(ctx, "wrn", "c", 3)
	log.Error(ctx, "err", "d", 4)

	entries := logs.All()
	require.Len(t, entries, 4)

	want := []struct {
		level zapcore.Level
		msg   string
		key   string
	}{
		{zapcore.DebugLevel, "dbg", "a"},
		{zapcore.InfoLevel, "inf", "b"},
		{zapcore.WarnLevel, "wrn", "c"},
		{zapcore.ErrorLevel, "err", "d"},
	}
	for i, w := range want {
		assert.Equal(t, w.level, entries[i].Level)
		assert.Equal(t, w.msg, entries[i].Message)
		assert.Contains(t, entries[i].ContextMap(), w.key)
	}
}

func TestZapLogger_With(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := NewZapLogger(zap.New(core)).With("component", "sos")

	log.Info(context.Background(), "hello", "request_id", "r1")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "sos", fields["component"])
	assert.Equal(t, "r1", fields["request_id"])
}

func TestNew_Backends(t *testing.T) {
	var buf bytes.Buffer

	l, err := New(BackendZap, "info", &buf)
	require.NoError(t, err)
	l.Info(context.Background(), "via zap", "k", "v")
	assert.Contains(t, buf.String(), `"msg":"via zap"`)

	buf.Reset()
	l, err = New(BackendSlog, "debug", &buf)
	require.NoError(t, err)
	l.Debug(context.Background(), "via slog")
	assert.Contains(t, buf.String(), "msg=\"via slog\"")

	_, err = New("logrus", "info", &buf)
	assert.Error(t, err)

	_, err = New(BackendSlog, "loud", &buf)
	assert.Error(t, err)
}
