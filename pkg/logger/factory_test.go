package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/statekit/pkg/logger"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestNew(t *testing.T) {
	t.Run("creates JSON logger", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf))
		log.Info("hello")
		entry := decode(t, buf)
		assert.Equal(t, "INFO", entry["level"])
		assert.Equal(t, "hello", entry["msg"])
	})

	t.Run("text format", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf), logger.WithFormat(logger.FormatText))
		log.Info("hello")
		assert.Contains(t, buf.String(), "level=INFO")
		assert.Contains(t, buf.String(), "msg=hello")
	})

	t.Run("level filters records", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf), logger.WithLevel(slog.LevelWarn))
		log.Info("dropped")
		assert.Empty(t, buf.String())
	})

	t.Run("static attributes", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf), logger.WithAttr(logger.Machine("review")))
		log.Info("msg")
		assert.Equal(t, "review", decode(t, buf)["machine"])
	})

	t.Run("context value", func(t *testing.T) {
		buf := &bytes.Buffer{}
		type key struct{}
		log := logger.New(logger.WithOutput(buf), logger.WithContextValue("record_id", key{}))
		ctx := context.WithValue(context.Background(), key{}, "rec-1")
		log.InfoContext(ctx, "msg")
		assert.Equal(t, "rec-1", decode(t, buf)["record_id"])
	})

	t.Run("extractors survive With", func(t *testing.T) {
		buf := &bytes.Buffer{}
		type key struct{}
		log := logger.New(
			logger.WithOutput(buf),
			logger.WithContextExtractors(nil, func(ctx context.Context) (slog.Attr, bool) {
				v, ok := ctx.Value(key{}).(string)
				return slog.String("id", v), ok
			}),
		).With(logger.Component("test")).WithGroup("g")
		ctx := context.WithValue(context.Background(), key{}, "42")
		log.InfoContext(ctx, "msg")
		entry := decode(t, buf)
		assert.Equal(t, "test", entry["component"])
		assert.Equal(t, map[string]any{"id": "42"}, entry["g"])
	})
}

func TestWithEnvironment(t *testing.T) {
	t.Run("development", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithEnvironment("dev", "statekit"), logger.WithOutput(buf))
		log.Debug("msg")
		assert.Contains(t, buf.String(), "level=DEBUG")
		assert.Contains(t, buf.String(), "service=statekit")
		assert.Contains(t, buf.String(), "env=development")
	})

	t.Run("production", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithEnvironment("prod", "statekit"), logger.WithOutput(buf))
		log.Debug("dropped")
		log.Info("msg")
		entry := decode(t, buf)
		assert.Equal(t, "statekit", entry["service"])
		assert.Equal(t, "production", entry["env"])
	})

	t.Run("staging", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithEnvironment(logger.EnvStaging, ""), logger.WithOutput(buf))
		log.Info("msg")
		entry := decode(t, buf)
		assert.Equal(t, "staging", entry["env"])
		assert.NotContains(t, entry, "service")
	})
}

func TestParseLevel(t *testing.T) {
	l, err := logger.ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, l)

	l, err = logger.ParseLevel(" WARN ")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, l)

	_, err = logger.ParseLevel("loud")
	assert.Error(t, err)
}

func TestSetAsDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	buf := &bytes.Buffer{}
	logger.SetAsDefault(logger.New(logger.WithOutput(buf)))
	slog.Info("default")
	assert.Equal(t, "default", decode(t, buf)["msg"])
}

func TestWithFormatPanics(t *testing.T) {
	assert.Panics(t, func() {
		logger.New(logger.WithFormat(logger.Format("xml")))
	})
}
