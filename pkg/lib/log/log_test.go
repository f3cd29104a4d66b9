package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseLevel 测试级别解析
func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, LevelDebug, lvl)

	lvl, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, LevelInfo, lvl)

	_, err = ParseLevel("chatty")
	assert.Error(t, err)
}

// TestSetup 测试控制台和文件扇出
func TestSetup(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var console bytes.Buffer
	file := filepath.Join(t.TempDir(), "logs", "fabric.log")

	closer, err := Setup(Options{Level: "info", Format: "json", File: file, Console: &console})
	require.NoError(t, err)

	Logger("test/log").Info("hello", "node", "node-a")
	Logger("test/log").Debug("hidden")
	require.NoError(t, closer.Close())

	var rec map[string]any
	require.NoError(t, json.Unmarshal(console.Bytes(), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, "test/log", rec["component"])
	assert.Equal(t, "node-a", rec["node"])

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.NotContains(t, string(data), "hidden")
}

// TestSetup_UnknownFormat 测试未知格式
func TestSetup_UnknownFormat(t *testing.T) {
	_, err := Setup(Options{Format: "xml"})
	assert.Error(t, err)
}
