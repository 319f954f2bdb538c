package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLoggerTo_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLoggerTo(&buf, "json", "info")
	require.NoError(t, err)

	logger.Named("gravity").Info("flushed", zap.String("table", "adlist"))
	logger.Debug("hidden")
	require.NoError(t, logger.Sync())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "gravity", entry["logger"])
	assert.Equal(t, "flushed", entry["msg"])
	assert.Equal(t, "adlist", entry["table"])
}

func TestNewLoggerTo_Console(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLoggerTo(&buf, "", "DEBUG")
	require.NoError(t, err)

	logger.Debug("processing", zap.String("line", "10.0.0.5 host.local"))
	assert.Contains(t, buf.String(), "DEBUG")
	assert.Contains(t, buf.String(), "processing")
}

func TestNewLoggerTo_Invalid(t *testing.T) {
	_, err := NewLoggerTo(&bytes.Buffer{}, "json", "loud")
	assert.Error(t, err)

	_, err = NewLoggerTo(&bytes.Buffer{}, "xml", "info")
	assert.Error(t, err)
}
