package metrics

import (
	"context"

	"github.com/dep2p/go-fabric/pkg/interfaces"
	"github.com/dep2p/go-fabric/pkg/types"
)

var _ interfaces.Transport = (*MeteredTransport)(nil)

// MeteredTransport 记录出站流量的传输层包装
//
// 只统计成功的发送和投递。
type MeteredTransport struct {
	next     interfaces.Transport
	reporter Reporter
}

// NewMeteredTransport 创建包装
func NewMeteredTransport(next interfaces.Transport, reporter Reporter) *MeteredTransport {
	return &MeteredTransport{next: next, reporter: reporter}
}

// SendToNode 实现 interfaces.NodeSender
func (t *MeteredTransport) SendToNode(ctx context.Context, target types.NodeID, feed types.FeedDescriptor, payload []byte, qos types.QoS) error {
	if err := t.next.SendToNode(ctx, target, feed, payload, qos); err != nil {
		return err
	}
	t.reporter.LogSent(int64(len(payload)), target, feed)
	return nil
}

// DeliverToSubscriber 实现 interfaces.SubscriberDeliverer
func (t *MeteredTransport) DeliverToSubscriber(ctx context.Context, sub types.Subscription, feed types.FeedDescriptor, payload []byte, qos types.QoS) error {
	if err := t.next.DeliverToSubscriber(ctx, sub, feed, payload, qos); err != nil {
		return err
	}
	t.reporter.LogSent(int64(len(payload)), types.EmptyNodeID, feed)
	return nil
}
