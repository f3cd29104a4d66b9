package fabric

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"

	"github.com/dep2p/go-fabric/internal/core/topology"
	"github.com/dep2p/go-fabric/internal/debug/introspect"
	"github.com/dep2p/go-fabric/pkg/types"
)

var testFeed = ParseFeed("plant/sensor/temp")

// memNet 内存网络，把 SendToNode 交给目标节点的 HandleInbound
type memNet struct {
	mu    sync.RWMutex
	nodes map[types.NodeID]*Node
}

func newMemNet() *memNet {
	return &memNet{nodes: make(map[types.NodeID]*Node)}
}

func (m *memNet) attach(n *Node) {
	m.mu.Lock()
	m.nodes[n.ID()] = n
	m.mu.Unlock()
}

func (m *memNet) SendToNode(ctx context.Context, target types.NodeID, _ types.FeedDescriptor, payload []byte, _ types.QoS) error {
	m.mu.RLock()
	n := m.nodes[target]
	m.mu.RUnlock()
	if n == nil {
		return ErrNoTransport
	}
	return n.HandleInbound(ctx, payload)
}

func (m *memNet) DeliverToSubscriber(context.Context, types.Subscription, types.FeedDescriptor, []byte, types.QoS) error {
	return nil
}

type collected struct {
	mu   sync.Mutex
	msgs []*Message
}

func (c *collected) handler(_ context.Context, _ Subscription, msg *Message) {
	c.mu.Lock()
	c.msgs = append(c.msgs, msg)
	c.mu.Unlock()
}

func (c *collected) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.msgs)
}

func startTestNode(t *testing.T, id NodeID, opts ...Option) *Node {
	t.Helper()
	opts = append([]Option{WithNodeID(id)}, opts...)
	n, err := Start(context.Background(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = n.Close() })
	return n
}

// ============================================================================
//                              生命周期
// ============================================================================

// TestNode_Lifecycle 测试启动和关闭
func TestNode_Lifecycle(t *testing.T) {
	n, err := New(context.Background(), WithNodeID("A"))
	require.NoError(t, err)
	assert.Equal(t, StateIdle, n.State())
	assert.Equal(t, NodeID("A"), n.ID())

	// 未启动时不能发送
	_, err = n.SendTo(context.Background(), "A", testFeed, nil, QoSDefault)
	assert.ErrorIs(t, err, ErrNotStarted)

	require.NoError(t, n.Start(context.Background()))
	assert.True(t, n.IsRunning())
	assert.ErrorIs(t, n.Start(context.Background()), ErrAlreadyStarted)

	require.NoError(t, n.Close())
	assert.NoError(t, n.Close())
	assert.ErrorIs(t, n.Start(context.Background()), ErrNodeClosed)
	_, err = n.SendTo(context.Background(), "A", testFeed, nil, QoSDefault)
	assert.ErrorIs(t, err, ErrNodeClosed)
}

// TestNode_Stop 测试停止后不能重启
func TestNode_Stop(t *testing.T) {
	n, err := New(context.Background(), WithNodeID("A"))
	require.NoError(t, err)
	assert.ErrorIs(t, n.Stop(context.Background()), ErrNotStarted)

	require.NoError(t, n.Start(context.Background()))
	require.NoError(t, n.Stop(context.Background()))
	assert.Equal(t, StateStopped, n.State())
	assert.ErrorIs(t, n.Start(context.Background()), ErrNodeClosed)
	assert.NoError(t, n.Close())
}

// TestNew_InvalidConfig 测试无效配置
func TestNew_InvalidConfig(t *testing.T) {
	// 缺少节点 ID
	_, err := New(context.Background())
	assert.Error(t, err)

	_, err = New(context.Background(), WithNodeID(""))
	assert.Error(t, err)

	_, err = New(context.Background(), WithNodeID("A"), WithFloodTTL(-time.Second))
	assert.Error(t, err)

	_, err = New(context.Background(), WithConfig(nil))
	assert.Error(t, err)
}

// ============================================================================
//                              本地投递
// ============================================================================

// TestNode_LocalDelivery 测试没有传输层时投递给本地订阅者
func TestNode_LocalDelivery(t *testing.T) {
	var got collected
	n := startTestNode(t, "A", WithDeliveryHandler(got.handler))

	_, err := n.Subscribe("dashboard", "", testFeed)
	require.NoError(t, err)

	sent, err := n.SendTo(context.Background(), "A", testFeed, []byte("21.5"), QoSReliable)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return got.len() == 1 }, 2*time.Second, 10*time.Millisecond)
	got.mu.Lock()
	assert.Equal(t, sent.ID, got.msgs[0].ID)
	assert.Equal(t, []byte("21.5"), got.msgs[0].Payload)
	got.mu.Unlock()
}

// TestNode_NoTransport 测试没有传输层时发往其他节点失败
func TestNode_NoTransport(t *testing.T) {
	topo := topology.NewTestRegistry(t, "A-B")
	reg := prometheus.NewRegistry()
	n := startTestNode(t, "A", WithTopology(topo), WithRegistry(reg))

	_, err := n.SendTo(context.Background(), "B", testFeed, []byte("x"), QoSDefault)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return n.Stats().Forwarding.Failed == 1 }, 2*time.Second, 10*time.Millisecond)

	count, err := testutil.GatherAndCount(n.Gatherer(), "fabric_forwarding_failed_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

// ============================================================================
//                              多节点
// ============================================================================

// TestNode_SendTo 测试经中间节点的静态路由
func TestNode_SendTo(t *testing.T) {
	topo := topology.NewTestRegistry(t, "A-B", "B-C")
	net := newMemNet()

	var atB, atC collected
	a := startTestNode(t, "A", WithTopology(topo), WithTransport(net))
	b := startTestNode(t, "B", WithTopology(topo), WithTransport(net), WithDeliveryHandler(atB.handler))
	c := startTestNode(t, "C", WithTopology(topo), WithTransport(net))
	c.OnDeliver(atC.handler)
	for _, n := range []*Node{a, b, c} {
		net.attach(n)
	}

	_, err := b.Subscribe("b", "", testFeed)
	require.NoError(t, err)
	_, err = c.Subscribe("c", "", testFeed)
	require.NoError(t, err)

	_, err = a.SendTo(context.Background(), "C", testFeed, []byte("21.5"), QoSReliable)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return atC.len() == 1 }, 2*time.Second, 10*time.Millisecond)
	// 中间节点只转发
	assert.Equal(t, 0, atB.len())
	assert.Eventually(t, func() bool { return a.Traffic().Totals().TotalOut > 0 }, time.Second, 10*time.Millisecond)
}

// TestNode_Flood 测试洪泛在每个节点投递一次
func TestNode_Flood(t *testing.T) {
	topo := topology.NewTestRegistry(t, "A-B", "B-C", "C-A")
	net := newMemNet()

	var got collected
	nodes := make([]*Node, 0, 3)
	for _, id := range []NodeID{"A", "B", "C"} {
		n := startTestNode(t, id, WithTopology(topo), WithTransport(net), WithDeliveryHandler(got.handler))
		_, err := n.Subscribe("actor-"+string(id), "", testFeed)
		require.NoError(t, err)
		net.attach(n)
		nodes = append(nodes, n)
	}

	_, err := nodes[0].Flood(context.Background(), testFeed, []byte("alarm"), QoSDefault, 0, false)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return got.len() == 3 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 3, got.len())
}

// TestNode_Plugins 测试入站插件丢弃消息
func TestNode_Plugins(t *testing.T) {
	topo := topology.NewTestRegistry(t, "A-B")
	net := newMemNet()

	drop := NewPlugin("drop", func(_ context.Context, msg *Message, _ Routing, action PluginAction) PluginAction {
		if string(msg.Payload) == "secret" {
			return DiscardImmediate
		}
		return action
	})

	var got collected
	a := startTestNode(t, "A", WithTopology(topo), WithTransport(net))
	b := startTestNode(t, "B", WithTopology(topo), WithTransport(net),
		WithInboundPlugin(drop), WithDeliveryHandler(got.handler))
	net.attach(a)
	net.attach(b)
	_, err := b.Subscribe("b", "", testFeed)
	require.NoError(t, err)

	_, err = a.SendTo(context.Background(), "B", testFeed, []byte("secret"), QoSDefault)
	require.NoError(t, err)
	_, err = a.SendTo(context.Background(), "B", testFeed, []byte("public"), QoSDefault)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return got.len() == 1 }, 2*time.Second, 10*time.Millisecond)
	got.mu.Lock()
	assert.Equal(t, []byte("public"), got.msgs[0].Payload)
	got.mu.Unlock()
}

// TestVersionInfo 测试版本信息
func TestVersionInfo(t *testing.T) {
	assert.Contains(t, VersionInfo(), Version)
}

// TestNode_Introspect 测试启用诊断服务
func TestNode_Introspect(t *testing.T) {
	var srv *introspect.Server
	n := startTestNode(t, "A",
		WithIntrospect("127.0.0.1:0"),
		WithFxOptions(fx.Populate(&srv)),
	)
	_, err := n.Subscribe("alice", "", testFeed)
	require.NoError(t, err)

	require.NotNil(t, srv)
	resp, err := http.Get("http://" + srv.Addr() + "/debug/introspect/subscriptions")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var subs []types.Subscription
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&subs))
	require.Len(t, subs, 1)
	assert.Equal(t, "alice", subs[0].Actor)
}

// TestNode_IntrospectDisabled 测试默认不创建诊断服务
func TestNode_IntrospectDisabled(t *testing.T) {
	var srv *introspect.Server
	startTestNode(t, "A", WithFxOptions(fx.Populate(&srv)))
	assert.Nil(t, srv)
}
