package fabric

import (
	"context"
	"fmt"
	"sync"

	"github.com/dep2p/go-fabric/internal/message"
	"github.com/dep2p/go-fabric/pkg/interfaces"
	"github.com/dep2p/go-fabric/pkg/types"
)

// DeliveryHandler 处理投递给本地订阅者的消息
//
// 在转发协程上同步调用，处理器不应长时间阻塞。
type DeliveryHandler func(ctx context.Context, sub Subscription, msg *Message)

// nodeTransport 节点的传输适配
//
// 投递先交给本地回调，再交给下层传输；没有下层传输时无法发往其他节点。
type nodeTransport struct {
	mu       sync.RWMutex
	next     interfaces.Transport
	handlers []DeliveryHandler
}

var _ interfaces.Transport = (*nodeTransport)(nil)

func newNodeTransport(handlers []DeliveryHandler) *nodeTransport {
	return &nodeTransport{handlers: append([]DeliveryHandler(nil), handlers...)}
}

func (t *nodeTransport) setNext(next interfaces.Transport) {
	t.mu.Lock()
	t.next = next
	t.mu.Unlock()
}

func (t *nodeTransport) addHandler(h DeliveryHandler) {
	t.mu.Lock()
	t.handlers = append(t.handlers, h)
	t.mu.Unlock()
}

func (t *nodeTransport) snapshot() (interfaces.Transport, []DeliveryHandler) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.next, t.handlers
}

// SendToNode 发送到其他节点
func (t *nodeTransport) SendToNode(ctx context.Context, target types.NodeID, feed types.FeedDescriptor, payload []byte, qos types.QoS) error {
	next, _ := t.snapshot()
	if next == nil {
		return fmt.Errorf("%w: %s", ErrNoTransport, target)
	}
	return next.SendToNode(ctx, target, feed, payload, qos)
}

// DeliverToSubscriber 投递给本地订阅者
func (t *nodeTransport) DeliverToSubscriber(ctx context.Context, sub types.Subscription, feed types.FeedDescriptor, payload []byte, qos types.QoS) error {
	next, handlers := t.snapshot()
	if len(handlers) > 0 {
		msg, err := message.Decode(payload, nil)
		if err != nil {
			return err
		}
		for _, h := range handlers {
			h(ctx, sub, msg)
		}
	}
	if next == nil {
		return nil
	}
	return next.DeliverToSubscriber(ctx, sub, feed, payload, qos)
}
