package fabric

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-fabric/config"
	"github.com/dep2p/go-fabric/internal/bus"
	"github.com/dep2p/go-fabric/internal/core/metrics"
	"github.com/dep2p/go-fabric/internal/core/topology"
	"github.com/dep2p/go-fabric/internal/protocol/flood"
	"github.com/dep2p/go-fabric/internal/protocol/forwarding"
	"github.com/dep2p/go-fabric/pkg/lib/log"
)

var logger = log.Logger("fabric")

// ════════════════════════════════════════════════════════════════════════════
//                              节点状态
// ════════════════════════════════════════════════════════════════════════════

// NodeState 节点状态
type NodeState int

const (
	// StateIdle 已创建，未启动
	StateIdle NodeState = iota

	// StateRunning 运行中
	StateRunning

	// StateStopped 已停止
	StateStopped
)

// String 返回状态的字符串表示
func (s NodeState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              Node
// ════════════════════════════════════════════════════════════════════════════

// Node 消息织网节点
//
// 使用示例：
//
//	node, _ := fabric.Start(ctx, fabric.WithNodeID("A"), fabric.WithTopologyFile("topo.yaml"))
//	defer node.Close()
//
//	node.OnDeliver(func(ctx context.Context, sub fabric.Subscription, msg *fabric.Message) {
//	    fmt.Println(sub.Actor, string(msg.Payload))
//	})
//	node.Subscribe("dashboard", "", fabric.ParseFeed("plant/sensor/temp"))
type Node struct {
	// ────────────────────────────────────────────────────────────────────────
	// 配置
	// ────────────────────────────────────────────────────────────────────────

	config   *config.Config
	registry *prometheus.Registry
	app      *fx.App

	// transport 本地投递适配，先于 Fx 创建
	transport *nodeTransport

	// ────────────────────────────────────────────────────────────────────────
	// 核心组件（由 Fx 注入）
	// ────────────────────────────────────────────────────────────────────────

	bus       *bus.Service
	forwarder *forwarding.Service
	cache     *flood.Cache
	collector *metrics.Collector
	reporter  metrics.Reporter
	topology  *topology.Registry

	// ────────────────────────────────────────────────────────────────────────
	// 生命周期状态
	// ────────────────────────────────────────────────────────────────────────

	mu     sync.RWMutex
	state  NodeState
	closed bool
}

// ════════════════════════════════════════════════════════════════════════════
//                              构造函数
// ════════════════════════════════════════════════════════════════════════════

// New 创建新节点
//
// 创建节点但不启动，需要调用 Start() 启动。
//
// 示例：
//
//	node, err := fabric.New(ctx,
//	    fabric.WithNodeID("A"),
//	    fabric.WithNATS("nats://127.0.0.1:4222"),
//	)
func New(_ context.Context, opts ...Option) (*Node, error) {
	o := newOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}
	if err := o.resolve(); err != nil {
		return nil, err
	}

	node := &Node{
		config:    o.config,
		registry:  o.registry,
		transport: newNodeTransport(o.handlers),
	}

	var err error
	node.app, err = buildFxApp(o, node)
	if err != nil {
		return nil, fmt.Errorf("build fx app: %w", err)
	}
	return node, nil
}

// Start 快捷启动函数
//
// 等价于 New() + Start()。
func Start(ctx context.Context, opts ...Option) (*Node, error) {
	node, err := New(ctx, opts...)
	if err != nil {
		return nil, err
	}
	if err := node.Start(ctx); err != nil {
		return nil, fmt.Errorf("start node: %w", err)
	}
	return node, nil
}

// ════════════════════════════════════════════════════════════════════════════
//                              基本信息
// ════════════════════════════════════════════════════════════════════════════

// ID 返回本地节点标识
func (n *Node) ID() NodeID {
	return NodeID(n.config.Node.ID)
}

// Config 返回节点使用的统一配置
func (n *Node) Config() *config.Config {
	return n.config
}

// State 返回节点状态
func (n *Node) State() NodeState {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.state
}

// IsRunning 节点是否在运行
func (n *Node) IsRunning() bool {
	return n.State() == StateRunning
}

// Bus 返回总线服务
func (n *Node) Bus() *bus.Service {
	return n.bus
}

// Topology 返回节点使用的拓扑
//
// 拓扑变化会使最短路径缓存失效。
func (n *Node) Topology() *topology.Registry {
	return n.topology
}

// Gatherer 返回指标注册表，用于暴露 /metrics
func (n *Node) Gatherer() prometheus.Gatherer {
	return n.registry
}

// Traffic 返回流量统计
func (n *Node) Traffic() metrics.Reporter {
	return n.reporter
}

// Stats 节点运行统计
type Stats struct {
	Forwarding   forwarding.Stats
	QueueLen     int
	FloodEntries int
	Traffic      metrics.Stats
}

// Stats 返回节点运行统计
func (n *Node) Stats() Stats {
	return Stats{
		Forwarding:   n.forwarder.Stats(),
		QueueLen:     n.forwarder.Queue().Len(),
		FloodEntries: n.cache.Len(),
		Traffic:      n.reporter.Totals(),
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              订阅与投递
// ════════════════════════════════════════════════════════════════════════════

// Subscribe 为 actor 订阅 feed
func (n *Node) Subscribe(actor, task string, feed Feed) (Subscription, error) {
	return n.bus.Subscribe(actor, task, feed)
}

// Unsubscribe 取消订阅
func (n *Node) Unsubscribe(id string) bool {
	return n.bus.Unsubscribe(id)
}

// OnDeliver 注册本地投递回调
func (n *Node) OnDeliver(h DeliveryHandler) {
	n.transport.addHandler(h)
}

// ════════════════════════════════════════════════════════════════════════════
//                              发送
// ════════════════════════════════════════════════════════════════════════════

// SendTo 沿静态路由发送到 dest
func (n *Node) SendTo(ctx context.Context, dest NodeID, feed Feed, payload []byte, qos QoS) (*Message, error) {
	if err := n.checkRunning(); err != nil {
		return nil, err
	}
	return n.bus.SendTo(ctx, dest, feed, payload, qos)
}

// Flood 洪泛到全网
//
// ttl 为 0 时使用配置的默认值。
func (n *Node) Flood(ctx context.Context, feed Feed, payload []byte, qos QoS, ttl time.Duration, retained bool) (*Message, error) {
	if err := n.checkRunning(); err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = n.config.Routing.FloodTTL.Duration()
	}
	return n.bus.Flood(ctx, feed, payload, qos, ttl, retained)
}

// Publish 发送已附带路由的消息
func (n *Node) Publish(ctx context.Context, msg *Message) error {
	if err := n.checkRunning(); err != nil {
		return err
	}
	return n.bus.Publish(ctx, msg)
}

// HandleInbound 处理从自定义传输收到的编码消息
func (n *Node) HandleInbound(ctx context.Context, data []byte) error {
	if err := n.checkRunning(); err != nil {
		return err
	}
	return n.bus.HandleInbound(ctx, data)
}

func (n *Node) checkRunning() error {
	n.mu.RLock()
	defer n.mu.RUnlock()
	switch {
	case n.closed:
		return ErrNodeClosed
	case n.state != StateRunning:
		return ErrNotStarted
	}
	return nil
}
