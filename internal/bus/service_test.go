package bus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-fabric/internal/core/metrics"
	"github.com/dep2p/go-fabric/internal/core/topology"
	"github.com/dep2p/go-fabric/internal/message"
	"github.com/dep2p/go-fabric/internal/plugin"
	"github.com/dep2p/go-fabric/internal/protocol/flood"
	"github.com/dep2p/go-fabric/internal/protocol/forwarding"
	"github.com/dep2p/go-fabric/internal/routing"
	"github.com/dep2p/go-fabric/pkg/interfaces"
	"github.com/dep2p/go-fabric/pkg/types"
)

var testFeed = types.FeedDescriptor{Platform: "plant", Service: "sensor", Feed: "temp"}

// newTestNode 创建接入 net 的节点
func newTestNode(t *testing.T, net *Network, topo *topology.Registry, local types.NodeID) *Service {
	t.Helper()

	cache, err := flood.New()
	require.NoError(t, err)

	cfg := routing.DefaultConfig()
	cfg.LocalNode = local
	factory, err := routing.NewFactory(cfg, topo, cache)
	require.NoError(t, err)

	fcfg := forwarding.DefaultConfig()
	fcfg.DispatchTimeout = time.Second
	fwd, err := forwarding.NewService(fcfg, net.Endpoint(local))
	require.NoError(t, err)
	require.NoError(t, fwd.Start(context.Background()))
	t.Cleanup(func() { _ = fwd.Stop() })

	s, err := New(factory, fwd)
	require.NoError(t, err)
	net.Attach(local, s)
	return s
}

func newTestNetwork(t *testing.T, topo *topology.Registry, nodes ...types.NodeID) (*Network, map[types.NodeID]*Service) {
	t.Helper()
	net := NewNetwork()
	out := make(map[types.NodeID]*Service, len(nodes))
	for _, n := range nodes {
		out[n] = newTestNode(t, net, topo, n)
	}
	return net, out
}

func subscribeAll(t *testing.T, nodes map[types.NodeID]*Service) {
	t.Helper()
	for n, s := range nodes {
		_, err := s.Subscribe("actor-"+string(n), "", testFeed)
		require.NoError(t, err)
	}
}

// ============================================================================
//                              静态路由
// ============================================================================

// TestService_SendTo 测试沿最短路径转发并只在终点投递
func TestService_SendTo(t *testing.T) {
	topo := topology.NewTestRegistry(t, "A-B", "B-C")
	net, nodes := newTestNetwork(t, topo, "A", "B", "C")
	subscribeAll(t, nodes)

	msg, err := nodes["A"].SendTo(context.Background(), "C", testFeed, []byte("21.5"), types.QoSReliable)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return len(net.Deliveries("C")) == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Never(t, func() bool { return len(net.Deliveries("")) > 1 }, 100*time.Millisecond, 10*time.Millisecond)

	d := net.Deliveries("C")[0]
	assert.Equal(t, msg.ID, d.Message.ID)
	assert.Equal(t, []byte("21.5"), d.Message.Payload)
	assert.Equal(t, types.QoSReliable, d.Message.QoS)
	assert.Equal(t, "actor-C", d.Sub.Actor)
}

// TestService_SendTo_Self 测试发给自己直接本地投递
func TestService_SendTo_Self(t *testing.T) {
	topo := topology.NewTestRegistry(t, "A-B")
	net, nodes := newTestNetwork(t, topo, "A", "B")
	subscribeAll(t, nodes)

	_, err := nodes["A"].SendTo(context.Background(), "A", testFeed, []byte("x"), types.QoSDefault)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return len(net.Deliveries("A")) == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Empty(t, net.Deliveries("B"))
}

// ============================================================================
//                              洪泛
// ============================================================================

// TestService_Flood 测试环形拓扑中每个节点恰好投递一次
func TestService_Flood(t *testing.T) {
	topo := topology.NewTestRegistry(t, "A-B", "B-C", "C-A", "C-D")
	net, nodes := newTestNetwork(t, topo, "A", "B", "C", "D")
	subscribeAll(t, nodes)

	msg, err := nodes["A"].Flood(context.Background(), testFeed, []byte("alarm"), types.QoSDefault, time.Minute, false)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return len(net.Deliveries("")) == 4 }, 2*time.Second, 10*time.Millisecond)
	assert.Never(t, func() bool { return len(net.Deliveries("")) > 4 }, 200*time.Millisecond, 10*time.Millisecond)

	for _, n := range types.NodeIDs("A", "B", "C", "D") {
		ds := net.Deliveries(n)
		require.Len(t, ds, 1, "node %s", n)
		assert.Equal(t, msg.ID, ds[0].Message.ID)
	}
}

// TestService_HandleInbound_Duplicate 测试重复洪泛消息被忽略
func TestService_HandleInbound_Duplicate(t *testing.T) {
	topo := topology.NewTestRegistry(t, "A-B")
	net, nodes := newTestNetwork(t, topo, "A", "B")
	subscribeAll(t, nodes)

	rt, err := nodes["A"].Factory().NewFlood(time.Minute, false)
	require.NoError(t, err)
	msg := message.New(testFeed, []byte("x"), types.QoSDefault)
	msg.Routing = rt
	data, err := message.Encode(msg)
	require.NoError(t, err)

	require.NoError(t, nodes["B"].HandleInbound(context.Background(), data))
	require.NoError(t, nodes["B"].HandleInbound(context.Background(), data))

	require.Eventually(t, func() bool { return len(net.Deliveries("B")) == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Never(t, func() bool { return len(net.Deliveries("B")) > 1 }, 100*time.Millisecond, 10*time.Millisecond)
}

// ============================================================================
//                              插件
// ============================================================================

// TestService_InboundPluginDiscard 测试入站插件丢弃后不再转发
func TestService_InboundPluginDiscard(t *testing.T) {
	topo := topology.NewTestRegistry(t, "A-B", "B-C")
	net, nodes := newTestNetwork(t, topo, "A", "B", "C")
	subscribeAll(t, nodes)

	nodes["B"].InboundPlugins().Register(plugin.NewFuncPlugin("block",
		func(context.Context, *message.FeedMessage, interfaces.Routing, plugin.Action) plugin.Action {
			return plugin.DiscardImmediate
		}))

	_, err := nodes["A"].SendTo(context.Background(), "C", testFeed, []byte("x"), types.QoSDefault)
	require.NoError(t, err)

	assert.Never(t, func() bool { return len(net.Deliveries("")) > 0 }, 200*time.Millisecond, 10*time.Millisecond)
}

// TestService_OutboundPluginTag 测试出站插件可以修改转发的消息
func TestService_OutboundPluginTag(t *testing.T) {
	topo := topology.NewTestRegistry(t, "A-B")
	net, nodes := newTestNetwork(t, topo, "A", "B")
	subscribeAll(t, nodes)

	nodes["A"].OutboundPlugins().Register(plugin.NewFuncPlugin("tag",
		func(_ context.Context, m *message.FeedMessage, _ interfaces.Routing, a plugin.Action) plugin.Action {
			m.SetProperty("via", "A")
			return a
		}))

	_, err := nodes["A"].SendTo(context.Background(), "B", testFeed, []byte("x"), types.QoSDefault)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return len(net.Deliveries("B")) == 1 }, 2*time.Second, 10*time.Millisecond)
	v, ok := net.Deliveries("B")[0].Message.Property("via")
	assert.True(t, ok)
	assert.Equal(t, "A", v)
}

// ============================================================================
//                              错误与订阅
// ============================================================================

// TestService_HandleInbound_Garbage 测试无法解码的消息
func TestService_HandleInbound_Garbage(t *testing.T) {
	topo := topology.NewTestRegistry(t, "A")
	_, nodes := newTestNetwork(t, topo, "A")

	err := nodes["A"].HandleInbound(context.Background(), []byte{0xff, 0xff, 0xff})
	assert.ErrorIs(t, err, message.ErrDecode)
}

// TestService_Publish_NoRouting 测试没有路由的消息不能发布
func TestService_Publish_NoRouting(t *testing.T) {
	topo := topology.NewTestRegistry(t, "A")
	_, nodes := newTestNetwork(t, topo, "A")

	err := nodes["A"].Publish(context.Background(), message.New(testFeed, nil, types.QoSDefault))
	assert.ErrorIs(t, err, ErrNoRouting)
	assert.ErrorIs(t, nodes["A"].Publish(context.Background(), nil), message.ErrInvalidMessage)
}

// TestService_Subscribe 测试订阅管理
func TestService_Subscribe(t *testing.T) {
	topo := topology.NewTestRegistry(t, "A")
	_, nodes := newTestNetwork(t, topo, "A")
	s := nodes["A"]

	_, err := s.Subscribe("", "", testFeed)
	assert.ErrorIs(t, err, ErrInvalidSubscription)
	_, err = s.Subscribe("actor", "", types.FeedDescriptor{})
	assert.ErrorIs(t, err, ErrInvalidSubscription)

	sub1, err := s.Subscribe("actor", "t1", testFeed)
	require.NoError(t, err)
	other := types.FeedDescriptor{Feed: "other"}
	_, err = s.Subscribe("actor", "t2", other)
	require.NoError(t, err)

	assert.Len(t, s.Subscriptions(testFeed), 1)
	assert.Len(t, s.Subscriptions(types.FeedDescriptor{}), 2)

	assert.True(t, s.Unsubscribe(sub1.ID))
	assert.False(t, s.Unsubscribe(sub1.ID))
	assert.Empty(t, s.Subscriptions(testFeed))
}

// TestService_Reporter 测试入站流量统计
func TestService_Reporter(t *testing.T) {
	topo := topology.NewTestRegistry(t, "A-B")
	_, nodes := newTestNetwork(t, topo, "A", "B")
	counter := metrics.NewTrafficCounter()
	nodes["B"].SetReporter(counter)

	msg := message.New(testFeed, []byte("x"), types.QoSDefault)
	msg.Routing = nodes["A"].Factory().NewStatic(types.NodeIDs("A", "B"))
	data, err := message.Encode(msg)
	require.NoError(t, err)

	require.NoError(t, nodes["B"].HandleInbound(context.Background(), data))
	assert.Equal(t, int64(len(data)), counter.ForNode("A").TotalIn)
	assert.Equal(t, int64(len(data)), counter.ForFeed(testFeed).TotalIn)
}

// TestNew_Invalid 测试构造参数
func TestNew_Invalid(t *testing.T) {
	_, err := New(nil, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
