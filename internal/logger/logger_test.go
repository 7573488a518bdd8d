package logger_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/andymarkow/pandero/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	lvl, err := logger.ParseLogLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, lvl)

	_, err = logger.ParseLogLevel("loud")
	assert.Error(t, err)
}

func TestParseLogFormat(t *testing.T) {
	f, err := logger.ParseLogFormat("Tint")
	require.NoError(t, err)
	assert.Equal(t, logger.LogFormatTint, f)

	_, err = logger.ParseLogFormat("xml")
	assert.Error(t, err)
}

func TestNewLogger_JSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer

	logg := logger.NewLogger(
		logger.WithOutput(&buf),
		logger.WithLevel(slog.LevelWarn),
	)

	logg.Info("dropped")
	logg.Warn("kept", slog.String("module", "test"))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "kept", rec["msg"])
	assert.Equal(t, "test", rec["module"])
}

func TestNewLogger_Tint(t *testing.T) {
	var buf bytes.Buffer

	logger.NewLogger(logger.WithOutput(&buf), logger.WithFormat(logger.LogFormatTint)).Info("hello")

	assert.Contains(t, buf.String(), "hello")
}
