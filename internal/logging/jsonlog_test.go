package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONLinesCarryFields(t *testing.T) {
	var buf bytes.Buffer
	Setup(&buf, "info", "json")
	t.Cleanup(func() { Setup(os.Stdout, "info", "json") })

	Info("task_done", map[string]any{"kind": "like", "post": "p1"})
	Debug("hidden", nil)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)
	var got map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &got))
	assert.Equal(t, "INFO", got["level"])
	assert.Equal(t, "task_done", got["msg"])
	assert.Equal(t, "like", got["kind"])
	assert.Equal(t, "p1", got["post"])
}

func TestTextFormatAndLevel(t *testing.T) {
	var buf bytes.Buffer
	Setup(&buf, "debug", "text")
	t.Cleanup(func() { Setup(os.Stdout, "info", "json") })

	Debug("tick", map[string]any{"n": 1})
	assert.Contains(t, buf.String(), "msg=tick")
	assert.Contains(t, buf.String(), "n=1")
}
