package log

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xabinapal/ccswitch/internal/config"
)

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, DefaultLevel, level)

	level, err = ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, level)

	_, err = ParseLevel("chatty")
	assert.Error(t, err)
}

func TestNewLoggerVerbose(t *testing.T) {
	entry, err := NewLogger(config.LogConfig{Level: "error"}, true)
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, entry.Logger.GetLevel())
}

func TestNewLoggerInvalidLevel(t *testing.T) {
	_, err := NewLogger(config.LogConfig{Level: "loud"}, false)
	assert.Error(t, err)
}

func TestNewLoggerToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "ccswitch.log")

	entry, err := NewLogger(config.LogConfig{Level: "info", File: path, JSON: true}, false)
	require.NoError(t, err)
	entry.WithField("alias", "kimi").Info("switched")

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &line))
	assert.Equal(t, "switched", line["msg"])
	assert.Equal(t, "kimi", line["alias"])
	assert.Contains(t, line, "version")
}

func TestTextFormatter(t *testing.T) {
	var buf bytes.Buffer
	entry := newEntry(&buf, logrus.InfoLevel, false)

	entry.Debug("hidden")
	entry.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestDiscard(t *testing.T) {
	entry := Discard()
	entry.Error("nothing")
	assert.False(t, entry.Logger.IsLevelEnabled(logrus.ErrorLevel))
}
