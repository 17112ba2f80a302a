package vecdb

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	gojson "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/vecdb/index"
)

func TestLoggerRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := NewFormatLogger(&buf, "json", slog.LevelDebug)

	ctx := ContextWithRequestID(context.Background(), "req-1")
	logger.LogInsert(ctx, index.TypeFlat, 7, 3, nil)

	var line map[string]any
	require.NoError(t, gojson.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "insert completed", line["msg"])
	assert.Equal(t, "req-1", line["request_id"])
	assert.Equal(t, "FLAT", line["index_type"])
	assert.EqualValues(t, 7, line["id"])
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewFormatLogger(&buf, "text", slog.LevelInfo)

	logger.LogSearch(context.Background(), index.TypeGraph, 3, 3, nil)
	assert.Empty(t, buf.String(), "debug lines are filtered at info level")

	logger.LogSearch(context.Background(), index.TypeGraph, 3, 0, errors.New("boom"))
	assert.Contains(t, buf.String(), "search failed")
	assert.Contains(t, buf.String(), "index_type=HNSW")

	buf.Reset()
	logger.LogBatchInsert(context.Background(), index.TypeFlat, 10, 2)
	assert.Contains(t, buf.String(), "failed=2")
}

func TestNoopLogger(t *testing.T) {
	logger := NoopLogger()
	assert.False(t, logger.Enabled(context.Background(), slog.LevelError))

	// WithContext without a request id returns the logger itself.
	assert.Same(t, logger, logger.WithContext(context.Background()))
}

func TestParseLogLevel(t *testing.T) {
	level, err := ParseLogLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	level, err = ParseLogLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	_, err = ParseLogLevel("loud")
	assert.Error(t, err)
}
