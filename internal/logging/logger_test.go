package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), tt.in)
	}
}

func TestNewJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(buf, "info", "json")

	logger.Debug("hidden")
	logger.Info("sheet converted", "columns", 3)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "sheet converted", rec["msg"])
	assert.Equal(t, float64(3), rec["columns"])
}

func TestNewText(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(buf, "debug", "text")

	logger.Debug("column inferred", "type", "year")

	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), `msg="column inferred"`)
	assert.Contains(t, buf.String(), "type=year")
}

func TestValidFormat(t *testing.T) {
	assert.True(t, ValidFormat("text"))
	assert.True(t, ValidFormat("JSON"))
	assert.True(t, ValidFormat(""))
	assert.False(t, ValidFormat("xml"))
}

func TestSetupReplacesDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	buf := &bytes.Buffer{}
	logger := Setup(buf, "warn", "text")

	slog.Info("dropped")
	slog.Warn("kept")

	assert.Same(t, logger, slog.Default())
	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}
