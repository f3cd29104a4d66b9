package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-fabric/internal/core/topology"
	"github.com/dep2p/go-fabric/internal/message"
	"github.com/dep2p/go-fabric/internal/protocol/flood"
	"github.com/dep2p/go-fabric/internal/routing"
	"github.com/dep2p/go-fabric/pkg/interfaces"
	"github.com/dep2p/go-fabric/pkg/types"
)

var testFeed = types.FeedDescriptor{Platform: "plant", Service: "sensor", Feed: "temp"}

const testTopology = `
nodes:
  - id: A
  - id: B
  - id: C
neighbours:
  - {node: A, neighbour: B}
  - {node: B, neighbour: C}
routes:
  - {start: A, end: C, ordinal: 1, descriptor: "nodes=A,B,C"}
`

// TestComputeRoute 测试路由计算
func TestComputeRoute(t *testing.T) {
	topo, err := topology.Parse([]byte(testTopology))
	require.NoError(t, err)

	r, err := computeRoute(topo, "A", "C", "nodes=A,C")
	require.NoError(t, err)
	assert.Equal(t, []types.NodeID{"A", "B", "C"}, r.Shortest)
	assert.Equal(t, []types.NodeID{"A", "B", "C"}, r.Route)
	assert.Equal(t, []types.NodeID{"A", "C"}, r.Resolved)
	require.Len(t, r.Precomputed, 1)

	var buf bytes.Buffer
	require.NoError(t, r.write(&buf, false))
	assert.Contains(t, buf.String(), "实际路由: A -> B -> C")

	buf.Reset()
	require.NoError(t, r.write(&buf, true))
	var decoded routeReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, r.Route, decoded.Route)
}

// TestRouteCmd 测试 route 命令
func TestRouteCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testTopology), 0o600))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"route", "-t", path, "--from", "A", "--to", "C"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "A -> C")
}

func encodeTestMessage(t *testing.T, rt func(f *routing.Factory) (interfaces.Routing, error)) []byte {
	t.Helper()
	cache, err := flood.New()
	require.NoError(t, err)
	cfg := routing.DefaultConfig()
	cfg.LocalNode = "A"
	f, err := routing.NewFactory(cfg, topology.NewTestRegistry(t, "A-B"), cache)
	require.NoError(t, err)

	msg := message.New(testFeed, []byte("21.5"), types.QoSReliable)
	msg.SetProperty("unit", "C")
	if rt != nil {
		r, err := rt(f)
		require.NoError(t, err)
		msg.Routing = r
	}
	data, err := message.Encode(msg)
	require.NoError(t, err)
	return data
}

// TestInspectMessage 测试消息诊断
func TestInspectMessage(t *testing.T) {
	data := encodeTestMessage(t, func(f *routing.Factory) (interfaces.Routing, error) {
		return f.RouteTo("B"), nil
	})

	out, err := inspectMessage(data, "B")
	require.NoError(t, err)
	assert.Empty(t, out.Error)
	assert.Equal(t, "plant/sensor/temp", out.Feed)
	assert.Equal(t, "reliable", out.QoS)
	assert.Equal(t, "21.5", out.Payload)
	assert.Equal(t, "C", out.Properties["unit"])
	assert.NotEmpty(t, out.Routing)
	assert.True(t, json.Valid(out.Document))
}

// TestInspectMessage_Flood 测试洪泛路由的消息
func TestInspectMessage_Flood(t *testing.T) {
	data := encodeTestMessage(t, func(f *routing.Factory) (interfaces.Routing, error) {
		return f.NewFlood(time.Minute, false)
	})

	out, err := inspectMessage(data, "B")
	require.NoError(t, err)
	assert.Empty(t, out.Error)
	assert.NotEmpty(t, out.Routing)
}

// TestInspectMessage_Garbage 测试无法解码的输入
func TestInspectMessage_Garbage(t *testing.T) {
	_, err := inspectMessage([]byte{0xff, 0xff, 0xff}, "B")
	assert.Error(t, err)
}

// TestInspectCmd_Base64 测试从标准输入读取 base64
func TestInspectCmd_Base64(t *testing.T) {
	data := encodeTestMessage(t, nil)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetIn(bytes.NewBufferString(encodeBase64(data)))
	rootCmd.SetArgs([]string{"inspect", "--base64", "-"})
	require.NoError(t, rootCmd.Execute())

	var got inspection
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "21.5", got.Payload)
}

// TestVersionCmd 测试 version 命令
func TestVersionCmd(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "go-fabric")
}

func encodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}
