package forwarding

import (
	"context"
	"sync"

	"github.com/dep2p/go-fabric/pkg/interfaces"
	"github.com/dep2p/go-fabric/pkg/types"
)

var _ interfaces.Transport = (*MockTransport)(nil)

// MockCall 记录一次传输调用
type MockCall struct {
	Action       Action
	Target       types.NodeID
	Subscription types.Subscription
	Feed         types.FeedDescriptor
	Payload      []byte
	QoS          types.QoS
}

// MockTransport 用于测试的传输层
type MockTransport struct {
	mu    sync.Mutex
	calls []MockCall

	// SendErr 返回非 nil 时 SendToNode 失败
	SendErr func(target types.NodeID) error

	// DeliverErr 返回非 nil 时 DeliverToSubscriber 失败
	DeliverErr func(sub types.Subscription) error

	// Block 非 nil 时每次调用先等待该通道或 ctx 结束
	Block chan struct{}
}

// NewMockTransport 创建模拟传输层
func NewMockTransport() *MockTransport {
	return &MockTransport{}
}

// SendToNode 实现 interfaces.NodeSender
func (m *MockTransport) SendToNode(ctx context.Context, target types.NodeID, feed types.FeedDescriptor, payload []byte, qos types.QoS) error {
	if err := m.wait(ctx); err != nil {
		return err
	}
	m.record(MockCall{Action: ActionForward, Target: target, Feed: feed, Payload: payload, QoS: qos})
	if m.SendErr != nil {
		return m.SendErr(target)
	}
	return nil
}

// DeliverToSubscriber 实现 interfaces.SubscriberDeliverer
func (m *MockTransport) DeliverToSubscriber(ctx context.Context, sub types.Subscription, feed types.FeedDescriptor, payload []byte, qos types.QoS) error {
	if err := m.wait(ctx); err != nil {
		return err
	}
	m.record(MockCall{Action: ActionDeliver, Subscription: sub, Feed: feed, Payload: payload, QoS: qos})
	if m.DeliverErr != nil {
		return m.DeliverErr(sub)
	}
	return nil
}

// Calls 返回调用记录副本
func (m *MockTransport) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// Len 调用次数
func (m *MockTransport) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *MockTransport) record(c MockCall) {
	m.mu.Lock()
	m.calls = append(m.calls, c)
	m.mu.Unlock()
}

func (m *MockTransport) wait(ctx context.Context) error {
	if m.Block == nil {
		return nil
	}
	select {
	case <-m.Block:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
