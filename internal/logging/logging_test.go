package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("json", "info", &buf)

	logger.Info("hook finished", "id", "check-yaml", "exit_code", 0)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "hook finished", record["msg"])
	assert.Equal(t, "check-yaml", record["id"])
}

func TestSetupTextOmitsColorForBuffers(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("text", "info", &buf)

	logger.Info("plain")
	assert.NotContains(t, buf.String(), "\x1b[", "non-terminal writers get no ANSI")
	assert.Contains(t, buf.String(), "plain")
}

func TestSetupDefaultLevelIsWarn(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("text", "", &buf)

	logger.Info("quiet")
	assert.Empty(t, buf.String())

	logger.Warn("loud")
	assert.Contains(t, buf.String(), "loud")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelInfo, parseLevel("info"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelWarn, parseLevel("nonsense"))
}
