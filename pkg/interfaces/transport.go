package interfaces

import (
	"context"

	"github.com/dep2p/go-fabric/pkg/types"
)

// NodeSender 将编码后的消息发送到目标节点
type NodeSender interface {
	SendToNode(ctx context.Context, target types.NodeID, feed types.FeedDescriptor, payload []byte, qos types.QoS) error
}

// SubscriberDeliverer 将编码后的消息投递给本地订阅者
type SubscriberDeliverer interface {
	DeliverToSubscriber(ctx context.Context, sub types.Subscription, feed types.FeedDescriptor, payload []byte, qos types.QoS) error
}

// Transport 同时具备发送和投递能力的传输层
type Transport interface {
	NodeSender
	SubscriberDeliverer
}
