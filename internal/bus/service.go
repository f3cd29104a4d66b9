package bus

import (
	"context"
	"fmt"
	"time"

	"github.com/dep2p/go-fabric/internal/core/metrics"
	"github.com/dep2p/go-fabric/internal/message"
	"github.com/dep2p/go-fabric/internal/plugin"
	"github.com/dep2p/go-fabric/internal/routing"
	"github.com/dep2p/go-fabric/pkg/interfaces"
	"github.com/dep2p/go-fabric/pkg/lib/log"
	"github.com/dep2p/go-fabric/pkg/types"
)

var logger = log.Logger("bus")

// Forwarder 出站队列
type Forwarder interface {
	Forward(msg *message.FeedMessage, target types.NodeID, feed types.FeedDescriptor, qos types.QoS) error
	Deliver(msg *message.FeedMessage, sub types.Subscription, feed types.FeedDescriptor, qos types.QoS) error
}

// Service 总线服务
type Service struct {
	factory   *routing.Factory
	forwarder Forwarder
	reporter  metrics.Reporter

	inbound  *plugin.Dispatcher
	outbound *plugin.Dispatcher

	subs *subscriptions
}

// New 创建总线服务
func New(factory *routing.Factory, forwarder Forwarder) (*Service, error) {
	if factory == nil || forwarder == nil {
		return nil, fmt.Errorf("%w: factory and forwarder are required", ErrInvalidConfig)
	}
	return &Service{
		factory:   factory,
		forwarder: forwarder,
		inbound:   plugin.NewDispatcher("inbound"),
		outbound:  plugin.NewDispatcher("outbound"),
		subs:      newSubscriptions(),
	}, nil
}

// SetReporter 设置流量统计
func (s *Service) SetReporter(r metrics.Reporter) {
	s.reporter = r
}

// Local 本地节点
func (s *Service) Local() types.NodeID {
	return s.factory.Local()
}

// Factory 路由工厂
func (s *Service) Factory() *routing.Factory {
	return s.factory
}

// InboundPlugins 入站插件链，在去重之后、转发之前调用
func (s *Service) InboundPlugins() *plugin.Dispatcher {
	return s.inbound
}

// OutboundPlugins 出站插件链，在发往下一跳之前调用
func (s *Service) OutboundPlugins() *plugin.Dispatcher {
	return s.outbound
}

// ============================================================================
//                              订阅
// ============================================================================

// Subscribe 订阅 feed，返回订阅句柄
func (s *Service) Subscribe(actor, task string, feed types.FeedDescriptor) (types.Subscription, error) {
	if actor == "" || feed.IsZero() {
		return types.Subscription{}, ErrInvalidSubscription
	}
	sub := s.subs.add(actor, task, feed)
	logger.Debug("新增订阅", "sub", sub.String(), "feed", feed)
	return sub, nil
}

// Unsubscribe 取消订阅
func (s *Service) Unsubscribe(id string) bool {
	return s.subs.remove(id)
}

// Subscriptions 返回 feed 的订阅，feed 为空时返回全部
func (s *Service) Subscriptions(feed types.FeedDescriptor) []types.Subscription {
	if feed.IsZero() {
		return s.subs.all()
	}
	return s.subs.match(feed)
}

// ============================================================================
//                              入站
// ============================================================================

// HandleInbound 处理从传输层收到的编码消息
//
// 重复的洪泛消息和被插件丢弃的消息返回 nil。
func (s *Service) HandleInbound(ctx context.Context, data []byte) error {
	msg, err := message.Decode(data, s.factory)
	if err != nil {
		logger.Warn("丢弃无法解码的入站消息", "bytes", len(data), "err", err)
		return err
	}

	rt := msg.Routing
	if s.reporter != nil {
		var from types.NodeID
		if rt != nil {
			from = rt.PreviousNode()
		}
		s.reporter.LogRecv(int64(len(data)), from, msg.Feed)
	}

	if rt == nil {
		// 没有路由的消息只在本地投递
		s.deliverLocal(ctx, msg)
		return nil
	}

	if rt.IsDuplicate(msg) {
		logger.DebugContext(ctx, "忽略重复消息", "msg", msg.ID, "from", rt.PreviousNode())
		return nil
	}

	if action := s.inbound.Dispatch(ctx, msg, rt, plugin.Continue); action.Dropped() {
		logger.DebugContext(ctx, "入站插件丢弃消息", "msg", msg.ID, "action", action)
		return nil
	}

	s.route(ctx, msg, rt)
	return nil
}

// ============================================================================
//                              出站
// ============================================================================

// Publish 按消息携带的路由从本地发出
func (s *Service) Publish(ctx context.Context, msg *message.FeedMessage) error {
	if msg == nil {
		return message.ErrInvalidMessage
	}
	if msg.Routing == nil {
		return ErrNoRouting
	}
	// 洪泛消息在源节点登记，回传时被抑制
	msg.Routing.IsDuplicate(msg)
	s.route(ctx, msg, msg.Routing)
	return nil
}

// SendTo 沿静态路由把负载发往 dest
func (s *Service) SendTo(ctx context.Context, dest types.NodeID, feed types.FeedDescriptor, payload []byte, qos types.QoS) (*message.FeedMessage, error) {
	msg := message.New(feed, payload, qos)
	msg.Routing = s.factory.RouteTo(dest)
	logger.DebugContext(ctx, "发送消息", "msg", msg.ID, "dest", dest, "route", msg.Routing)
	return msg, s.Publish(ctx, msg)
}

// Flood 向全网洪泛负载，ttl <= 0 表示去重登记永不过期
func (s *Service) Flood(ctx context.Context, feed types.FeedDescriptor, payload []byte, qos types.QoS, ttl time.Duration, retained bool) (*message.FeedMessage, error) {
	rt, err := s.factory.NewFlood(ttl, retained)
	if err != nil {
		return nil, err
	}
	msg := message.New(feed, payload, qos)
	msg.Routing = rt
	logger.DebugContext(ctx, "洪泛消息", "msg", msg.ID, "ttl", ttl, "retained", retained)
	return msg, s.Publish(ctx, msg)
}

// ============================================================================
//                              路由
// ============================================================================

func (s *Service) route(ctx context.Context, msg *message.FeedMessage, rt interfaces.Routing) {
	if next := rt.NextNodes(); len(next) > 0 {
		s.forward(ctx, msg, rt, next)
	}
	if s.deliversHere(rt) {
		s.deliverLocal(ctx, msg)
	}
}

// deliversHere 本地是否投递：洪泛在每个节点投递，其他路由只在终点投递
func (s *Service) deliversHere(rt interfaces.Routing) bool {
	if rt.Type() == interfaces.RoutingFlood {
		return true
	}
	return rt.EndNode() == s.Local()
}

func (s *Service) forward(ctx context.Context, msg *message.FeedMessage, rt interfaces.Routing, next []types.NodeID) {
	if action := s.outbound.Dispatch(ctx, msg, rt, plugin.Continue); action.Dropped() {
		logger.DebugContext(ctx, "出站插件丢弃消息", "msg", msg.ID, "action", action)
		return
	}
	for _, n := range next {
		if err := s.forwarder.Forward(msg, n, msg.Feed, msg.QoS); err != nil {
			logger.Warn("转发入队失败", "msg", msg.ID, "target", n, "feed", msg.Feed, "err", err)
		}
	}
}

func (s *Service) deliverLocal(ctx context.Context, msg *message.FeedMessage) {
	subs := s.subs.match(msg.Feed)
	if len(subs) == 0 {
		logger.DebugContext(ctx, "本地无订阅者", "msg", msg.ID, "feed", msg.Feed)
		return
	}
	for _, sub := range subs {
		if err := s.forwarder.Deliver(msg, sub, msg.Feed, msg.QoS); err != nil {
			logger.Warn("投递入队失败", "msg", msg.ID, "sub", sub.String(), "feed", msg.Feed, "err", err)
		}
	}
}
