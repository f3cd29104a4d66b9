package forwarding

import (
	"fmt"
	"time"

	"github.com/dep2p/go-fabric/internal/message"
	"github.com/dep2p/go-fabric/pkg/types"
)

// Action 出站动作
type Action int

const (
	// ActionUnknown 未知动作
	ActionUnknown Action = iota
	// ActionForward 发往下一跳节点
	ActionForward
	// ActionDeliver 投递给本地订阅者
	ActionDeliver
)

// String 返回动作名称
func (a Action) String() string {
	switch a {
	case ActionForward:
		return "forward"
	case ActionDeliver:
		return "deliver"
	default:
		return "unknown"
	}
}

// OutboundMessage 出站消息
//
// 构造时深拷贝负载消息，之后修改原消息不影响已入队的副本。
type OutboundMessage struct {
	// Action 动作
	Action Action

	// Message 消息副本
	Message *message.FeedMessage

	// Target 目标节点，仅 Forward 使用
	Target types.NodeID

	// Subscription 订阅句柄，仅 Deliver 使用
	Subscription types.Subscription

	// Feed Feed 描述符
	Feed types.FeedDescriptor

	// QoS 服务质量
	QoS types.QoS

	// EnqueuedAt 入队时间
	EnqueuedAt time.Time
}

// NewForward 创建发往 target 的出站消息
func NewForward(msg *message.FeedMessage, target types.NodeID, feed types.FeedDescriptor, qos types.QoS) *OutboundMessage {
	return &OutboundMessage{
		Action:  ActionForward,
		Message: msg.Replicate(),
		Target:  target,
		Feed:    feed,
		QoS:     qos,
	}
}

// NewDeliver 创建投递给 sub 的出站消息
//
// 订阅者不需要路由状态，副本中的路由被清除。
func NewDeliver(msg *message.FeedMessage, sub types.Subscription, feed types.FeedDescriptor, qos types.QoS) *OutboundMessage {
	cp := msg.Replicate()
	if cp != nil {
		cp.Routing = nil
	}
	return &OutboundMessage{
		Action:       ActionDeliver,
		Message:      cp,
		Subscription: sub,
		Feed:         feed,
		QoS:          qos,
	}
}

// String 用于日志
func (o *OutboundMessage) String() string {
	switch o.Action {
	case ActionForward:
		return fmt.Sprintf("forward[%s -> %s]", o.Feed, o.Target)
	case ActionDeliver:
		return fmt.Sprintf("deliver[%s -> %s]", o.Feed, o.Subscription)
	default:
		return fmt.Sprintf("unknown[%s]", o.Feed)
	}
}
