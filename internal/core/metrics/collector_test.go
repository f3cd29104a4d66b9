package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCollector_Forwarding 测试转发指标
func TestCollector_Forwarding(t *testing.T) {
	c, err := NewCollector(nil)
	require.NoError(t, err)

	c.Dispatched("forward")
	c.Dispatched("forward")
	c.Dispatched("deliver")
	c.Failed("forward")
	c.QueueDepth(7)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.dispatched.WithLabelValues("forward")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.dispatched.WithLabelValues("deliver")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.failed.WithLabelValues("forward")))
	assert.Equal(t, 7.0, testutil.ToFloat64(c.queueDepth))
}

// TestCollector_Flood 测试去重缓存指标
func TestCollector_Flood(t *testing.T) {
	c, err := NewCollector(nil)
	require.NoError(t, err)

	c.Duplicate()
	c.Evicted(3)
	c.Evicted(0)
	c.Size(12)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.duplicates))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.evicted))
	assert.Equal(t, 12.0, testutil.ToFloat64(c.cacheEntries))
}

// TestCollector_Registry 测试注册与导出名称
func TestCollector_Registry(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)

	c.PathComputed("found")
	c.PathComputed("cached")
	c.DecodeFailed()

	expected := `
# HELP fabric_routing_paths_total Shortest path lookups by result
# TYPE fabric_routing_paths_total counter
fabric_routing_paths_total{result="cached"} 1
fabric_routing_paths_total{result="found"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "fabric_routing_paths_total"))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.decodeFailures))

	// 重复注册返回错误
	_, err = NewCollector(reg)
	assert.Error(t, err)
}
