package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, LogInfo)

	c.Logger.Debug("hidden")
	assert.Zero(t, buf.Len(), "debug output at info level")

	c.Logger.Warn("dropped link", "id", "a->b")
	assert.Contains(t, buf.String(), "dropped link")

	buf.Reset()
	c.SetLogLevel(LogDebug)
	c.Logger.Debug("shown")
	assert.Contains(t, buf.String(), "shown")

	buf.Reset()
	c.SetLogLevel(LogWarn)
	c.Logger.Info("quiet")
	assert.Zero(t, buf.Len())
}

func TestParseLogFormat(t *testing.T) {
	tests := []struct {
		in   string
		want log.Formatter
	}{
		{"", log.TextFormatter},
		{"text", log.TextFormatter},
		{"LOGFMT", log.LogfmtFormatter},
		{"json", log.JSONFormatter},
	}
	for _, tt := range tests {
		got, err := parseLogFormat(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := parseLogFormat("xml")
	assert.Error(t, err)
}

func TestLogFormatFlag(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, LogInfo)
	root := c.RootCommand()
	root.SetOut(io.Discard)
	root.SetArgs([]string{"--store", "memory:", "--log-format", "json", "store", "path"})
	require.NoError(t, root.ExecuteContext(context.Background()))

	c.Logger.Info("after", "k", "v")
	line := buf.String()[strings.LastIndex(strings.TrimSpace(buf.String()), "\n")+1:]
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry), line)
	assert.Equal(t, "after", entry["msg"])

	root.SetArgs([]string{"--store", "memory:", "--log-format", "xml", "store", "path"})
	assert.Error(t, root.ExecuteContext(context.Background()))
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	newProgress(newLogger(&buf, log.InfoLevel)).done("Rendered 2 file(s)", "key", "flows")

	out := buf.String()
	assert.Contains(t, out, "Rendered 2 file(s) (")
	assert.Contains(t, out, "key=flows")
}

func TestLoggerFromContext(t *testing.T) {
	assert.NotNil(t, loggerFromContext(context.Background()))

	custom := newLogger(io.Discard, log.InfoLevel)
	assert.Same(t, custom, loggerFromContext(withLogger(context.Background(), custom)))
}
