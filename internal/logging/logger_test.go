package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	cfgpkg "github.com/tasifacuj/mission-control/internal/config"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("verbose"))
}

func TestLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(cfgpkg.LoggingConfig{Level: "info", Format: "json"}, &buf)

	log.Debug("hidden")
	log.Info("decoded", zap.String("message", "MSP_STATUS"))
	require.NoError(t, log.Sync())

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1, "debug 日志被过滤")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "decoded", entry["msg"])
	assert.Equal(t, "MSP_STATUS", entry["message"])
	assert.Equal(t, "info", entry["level"])
}

func TestLoggerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mspt.log")
	var buf bytes.Buffer
	log := newLogger(cfgpkg.LoggingConfig{Level: "debug", Format: "console", File: cfgpkg.LumberjackConfig{Filename: path, MaxSizeMB: 1}}, &buf)

	log.Debug("to both")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to both")
	assert.Contains(t, buf.String(), "to both")
}
