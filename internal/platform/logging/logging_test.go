package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatLog(t *testing.T) {
	tests := []struct {
		tag, msg, want string
	}{
		{"HTTP", "server ready", "[HTTP] server ready"},
		{"", "plain", "plain"},
		{"HTTP", "[Vision] already tagged", "[Vision] already tagged"},
		{" Market ", "  padded  ", "[Market] padded"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatLog(tt.tag, tt.msg))
	}
}

func TestLogger_JSONConsole(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter(Config{Level: "info", Format: "json"}, &buf)
	require.NoError(t, err)
	defer logger.Close()

	logger.InfoTag("HTTP", "listening on %d", 3000)
	logger.Warn("structured", map[string]interface{}{"crop": "wheat", "limit": 10})
	logger.Debug("hidden at info level")

	out := buf.String()
	assert.Contains(t, out, `"message":"[HTTP] listening on 3000"`)
	assert.Contains(t, out, `"tag":"HTTP"`)
	assert.Contains(t, out, `"crop":"wheat"`)
	assert.Contains(t, out, `"level":"warn"`)
	assert.NotContains(t, out, "hidden at info level")
}

func TestLogger_DebugLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter(Config{Level: "DEBUG", Format: "json"}, &buf)
	require.NoError(t, err)
	defer logger.Close()

	logger.DebugTag("Vision", "prompt built")
	assert.Contains(t, buf.String(), "[Vision] prompt built")
}

func TestLogger_FileOutput(t *testing.T) {
	dir := t.TempDir()
	var console bytes.Buffer
	logger, err := NewWithWriter(Config{Level: "info", Dir: dir, Filename: "test.log"}, &console)
	require.NoError(t, err)

	logger.ErrorTag("Market", "upstream failed: %v", "timeout")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(filepath.Join(dir, "test.log"))
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "[Market] upstream failed: timeout")
	assert.True(t, strings.HasPrefix(content, "{"), "file output should be JSON lines")
	assert.Contains(t, console.String(), "upstream failed")
}

func TestLogger_CloseTwice(t *testing.T) {
	logger, err := NewWithWriter(Config{Level: "info"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.NoError(t, logger.Close())
	assert.NoError(t, logger.Close())
}

func TestNewNop(t *testing.T) {
	logger := NewNop()
	logger.Info("nothing to see")
	logger.ErrorTag("HTTP", "still nothing %d", 1)
	assert.NoError(t, logger.Close())
}
