package bus

import (
	"context"
	"fmt"
	"sync"

	"github.com/dep2p/go-fabric/internal/message"
	"github.com/dep2p/go-fabric/pkg/interfaces"
	"github.com/dep2p/go-fabric/pkg/types"
)

// Delivery 一次本地投递
type Delivery struct {
	Node    types.NodeID
	Sub     types.Subscription
	Message *message.FeedMessage
}

// Network 进程内的节点网络，用于测试多节点转发
//
// 发往节点的消息同步交给该节点总线的 HandleInbound；投递被记录下来。
type Network struct {
	mu         sync.Mutex
	nodes      map[types.NodeID]*Service
	deliveries []Delivery
}

// NewNetwork 创建进程内网络
func NewNetwork() *Network {
	return &Network{nodes: make(map[types.NodeID]*Service)}
}

// Endpoint 返回 node 使用的传输层
func (n *Network) Endpoint(node types.NodeID) interfaces.Transport {
	return &endpoint{net: n, node: node}
}

// Attach 把总线服务接入网络
func (n *Network) Attach(node types.NodeID, s *Service) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.nodes[node] = s
}

// Deliveries 返回 node 上的投递记录，node 为空时返回全部
func (n *Network) Deliveries(node types.NodeID) []Delivery {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []Delivery
	for _, d := range n.deliveries {
		if node.IsEmpty() || d.Node == node {
			out = append(out, d)
		}
	}
	return out
}

type endpoint struct {
	net  *Network
	node types.NodeID
}

func (e *endpoint) SendToNode(ctx context.Context, target types.NodeID, _ types.FeedDescriptor, payload []byte, _ types.QoS) error {
	e.net.mu.Lock()
	s, ok := e.net.nodes[target]
	e.net.mu.Unlock()
	if !ok {
		return fmt.Errorf("node %s not attached", target)
	}
	return s.HandleInbound(ctx, payload)
}

func (e *endpoint) DeliverToSubscriber(_ context.Context, sub types.Subscription, _ types.FeedDescriptor, payload []byte, _ types.QoS) error {
	msg, err := message.Decode(payload, nil)
	if err != nil {
		return err
	}
	e.net.mu.Lock()
	e.net.deliveries = append(e.net.deliveries, Delivery{Node: e.node, Sub: sub, Message: msg})
	e.net.mu.Unlock()
	return nil
}
