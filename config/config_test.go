package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewConfig 测试默认配置
func TestNewConfig(t *testing.T) {
	cfg := NewConfig()
	require.NotNil(t, cfg)

	assert.Equal(t, 10*time.Minute, cfg.Routing.FloodTTL.Duration())
	assert.Equal(t, 60*time.Second, cfg.Flood.SweepInterval.Duration())
	assert.Equal(t, time.Second, cfg.Forwarding.IdleInterval.Duration())
	assert.Equal(t, "fabric", cfg.Transport.SubjectPrefix)

	// 缺少节点 ID 时无效
	assert.Error(t, cfg.Validate())

	cfg.Node.ID = "node-a"
	assert.NoError(t, cfg.Validate())
}

// TestConfig_Validate 测试多个错误被合并返回
func TestConfig_Validate(t *testing.T) {
	cfg := NewConfig()
	cfg.Flood.SweepInterval = 0
	cfg.Log.Level = "loud"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "node id is required")
	assert.Contains(t, err.Error(), "flood sweep interval must be positive")
	assert.Contains(t, err.Error(), "unknown log level")
}

// TestForwardingConfig_Validate 测试转发配置验证
func TestForwardingConfig_Validate(t *testing.T) {
	t.Run("Default", func(t *testing.T) {
		assert.NoError(t, DefaultForwardingConfig().Validate())
	})

	t.Run("RateWithoutBurst", func(t *testing.T) {
		cfg := DefaultForwardingConfig()
		cfg.DispatchRate = 10
		cfg.DispatchBurst = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("ZeroIdle", func(t *testing.T) {
		cfg := DefaultForwardingConfig()
		cfg.IdleInterval = 0
		assert.Error(t, cfg.Validate())
	})
}

// TestTransportConfig_Validate 测试主题前缀验证
func TestTransportConfig_Validate(t *testing.T) {
	cfg := DefaultTransportConfig()
	assert.NoError(t, cfg.Validate())

	cfg.SubjectPrefix = "fab.*"
	assert.Error(t, cfg.Validate())

	cfg.SubjectPrefix = ""
	assert.Error(t, cfg.Validate())
}

// TestFromJSON 测试 JSON 加载
func TestFromJSON(t *testing.T) {
	data := []byte(`{
		"node": {"id": "node-a"},
		"flood": {"sweep_interval": "5s"},
		"forwarding": {"idle_interval": 250000000}
	}`)

	cfg, err := FromJSON(data)
	require.NoError(t, err)

	assert.Equal(t, "node-a", cfg.Node.ID)
	assert.Equal(t, 5*time.Second, cfg.Flood.SweepInterval.Duration())
	assert.Equal(t, 250*time.Millisecond, cfg.Forwarding.IdleInterval.Duration())
	// 未出现的字段保留默认值
	assert.Equal(t, 10*time.Minute, cfg.Routing.FloodTTL.Duration())
}

// TestFromYAML 测试 YAML 加载
func TestFromYAML(t *testing.T) {
	data := []byte(`
node:
  id: node-b
routing:
  flood_ttl: 2m
  path_cache_size: 16
transport:
  nats_url: nats://127.0.0.1:4222
log:
  level: debug
  format: json
`)

	cfg, err := FromYAML(data)
	require.NoError(t, err)

	assert.Equal(t, "node-b", cfg.Node.ID)
	assert.Equal(t, 2*time.Minute, cfg.Routing.FloodTTL.Duration())
	assert.Equal(t, 16, cfg.Routing.PathCacheSize)
	assert.Equal(t, "nats://127.0.0.1:4222", cfg.Transport.NATSURL)
	assert.Equal(t, "fabric", cfg.Transport.SubjectPrefix)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

// TestLoad 测试按扩展名加载文件
func TestLoad(t *testing.T) {
	dir := t.TempDir()

	t.Run("YAML", func(t *testing.T) {
		path := filepath.Join(dir, "fabric.yaml")
		require.NoError(t, os.WriteFile(path, []byte("node:\n  id: node-c\n"), 0o600))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "node-c", cfg.Node.ID)
	})

	t.Run("Invalid", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"node": {"id": ""}}`), 0o600))

		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("UnknownExt", func(t *testing.T) {
		path := filepath.Join(dir, "fabric.toml")
		require.NoError(t, os.WriteFile(path, []byte(""), 0o600))

		_, err := Load(path)
		assert.Error(t, err)
	})
}

// TestConfig_ToJSON 测试 Duration 以字符串输出
func TestConfig_ToJSON(t *testing.T) {
	cfg := NewConfig()
	data, err := cfg.ToJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"sweep_interval": "1m0s"`)

	back, err := FromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, cfg.Flood, back.Flood)
}

// TestDuration_UnmarshalJSON 测试错误输入
func TestDuration_UnmarshalJSON(t *testing.T) {
	var d Duration
	assert.Error(t, d.UnmarshalJSON([]byte(`"soon"`)))
	assert.Error(t, d.UnmarshalJSON([]byte(`true`)))
	require.NoError(t, d.UnmarshalJSON([]byte(`"1500ms"`)))
	assert.Equal(t, 1500*time.Millisecond, d.Duration())
}
