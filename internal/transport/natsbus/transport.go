package natsbus

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/dep2p/go-fabric/pkg/interfaces"
	"github.com/dep2p/go-fabric/pkg/lib/log"
	"github.com/dep2p/go-fabric/pkg/types"
)

var logger = log.Logger("transport/natsbus")

// 处理单条入站消息的超时
const handleTimeout = 30 * time.Second

// Handler 处理发往本节点的编码消息
type Handler func(ctx context.Context, data []byte) error

// DeliveryHandler 处理投递给订阅者的编码消息
type DeliveryHandler func(ctx context.Context, feed types.FeedDescriptor, qos types.QoS, data []byte) error

// Transport 基于 NATS 的传输层
type Transport struct {
	cfg   Config
	conn  *nats.Conn
	owned bool

	mu     sync.Mutex
	subs   []*nats.Subscription
	closed bool
}

var _ interfaces.Transport = (*Transport)(nil)

// Connect 连接 NATS 服务并创建传输层
func Connect(ctx context.Context, cfg Config) (*Transport, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.URL == "" {
		return nil, fmt.Errorf("%w: nats url is required", ErrInvalidConfig)
	}

	type result struct {
		conn *nats.Conn
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		conn, err := nats.Connect(cfg.URL, connectOptions(cfg)...)
		ch <- result{conn, err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return nil, fmt.Errorf("connect %s: %w", cfg.URL, r.err)
		}
		logger.Info("已连接 NATS", "url", r.conn.ConnectedUrl(), "name", cfg.ClientName)
		t := New(r.conn, cfg)
		t.owned = true
		return t, nil
	case <-ctx.Done():
		// 连接完成后立即关闭
		go func() {
			if r := <-ch; r.conn != nil {
				r.conn.Close()
			}
		}()
		return nil, ctx.Err()
	}
}

func connectOptions(cfg Config) []nats.Option {
	opts := []nats.Option{
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS 连接断开", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("NATS 已重连", "url", c.ConnectedUrl())
		}),
		nats.ClosedHandler(func(*nats.Conn) {
			logger.Debug("NATS 连接已关闭")
		}),
	}
	if cfg.ClientName != "" {
		opts = append(opts, nats.Name(cfg.ClientName))
	}
	return opts
}

// New 包装已有的连接，Close 不会关闭该连接
func New(conn *nats.Conn, cfg Config) *Transport {
	return &Transport{cfg: cfg, conn: conn}
}

// Conn 返回底层连接
func (t *Transport) Conn() *nats.Conn {
	return t.conn
}

// ============================================================================
//                              发送
// ============================================================================

// SendToNode 发送消息到目标节点
func (t *Transport) SendToNode(ctx context.Context, target types.NodeID, feed types.FeedDescriptor, payload []byte, qos types.QoS) error {
	return t.publish(ctx, NodeSubject(t.cfg.SubjectPrefix, target), feed, payload, qos)
}

// DeliverToSubscriber 投递消息给订阅者
func (t *Transport) DeliverToSubscriber(ctx context.Context, sub types.Subscription, feed types.FeedDescriptor, payload []byte, qos types.QoS) error {
	return t.publish(ctx, SubscriberSubject(t.cfg.SubjectPrefix, sub.Actor, feed), feed, payload, qos)
}

func (t *Transport) publish(ctx context.Context, subject string, feed types.FeedDescriptor, payload []byte, qos types.QoS) error {
	if err := t.ready(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := nats.NewMsg(subject)
	m.Header.Set(HeaderFeed, feed.String())
	m.Header.Set(HeaderQoS, strconv.Itoa(int(qos)))
	m.Data = payload

	if err := t.conn.PublishMsg(m); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	if qos != types.QoSReliable {
		return nil
	}
	if _, ok := ctx.Deadline(); ok {
		return t.conn.FlushWithContext(ctx)
	}
	return t.conn.FlushTimeout(t.cfg.FlushTimeout)
}

func (t *Transport) ready() error {
	t.mu.Lock()
	closed := t.closed
	t.mu.Unlock()
	if closed {
		return ErrClosed
	}
	if t.conn == nil || !t.conn.IsConnected() {
		return ErrNotConnected
	}
	return nil
}

// ============================================================================
//                              接收
// ============================================================================

// Listen 订阅发往 node 的消息
//
// 处理器在 NATS 的分发协程上调用，返回的错误只记录日志。
// 订阅在 ctx 结束或 Close 时取消。
func (t *Transport) Listen(ctx context.Context, node types.NodeID, handler Handler) error {
	subject := NodeSubject(t.cfg.SubjectPrefix, node)
	return t.subscribe(ctx, subject, func(mctx context.Context, m *nats.Msg) {
		if err := handler(mctx, m.Data); err != nil {
			logger.Debug("处理入站消息失败", "subject", m.Subject, "error", err)
		}
	})
}

// ListenDeliveries 订阅投递给 actor 的所有消息
func (t *Transport) ListenDeliveries(ctx context.Context, actor string, handler DeliveryHandler) error {
	subject := ActorSubjects(t.cfg.SubjectPrefix, actor)
	return t.subscribe(ctx, subject, func(mctx context.Context, m *nats.Msg) {
		feed, qos := parseHeaders(m.Header)
		if err := handler(mctx, feed, qos, m.Data); err != nil {
			logger.Debug("处理投递消息失败", "subject", m.Subject, "error", err)
		}
	})
}

func (t *Transport) subscribe(ctx context.Context, subject string, fn func(context.Context, *nats.Msg)) error {
	if err := t.ready(); err != nil {
		return err
	}

	sub, err := t.conn.Subscribe(subject, func(m *nats.Msg) {
		mctx, cancel := context.WithTimeout(ctx, handleTimeout)
		defer cancel()
		fn(mctx, m)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}

	t.mu.Lock()
	t.subs = append(t.subs, sub)
	t.mu.Unlock()

	context.AfterFunc(ctx, func() {
		_ = sub.Unsubscribe()
	})
	logger.Debug("已订阅", "subject", subject)
	return nil
}

func parseHeaders(h nats.Header) (types.FeedDescriptor, types.QoS) {
	var feed types.FeedDescriptor
	qos := types.QoSDefault
	if h == nil {
		return feed, qos
	}
	if v := h.Get(HeaderFeed); v != "" {
		feed = types.ParseFeedDescriptor(v)
	}
	if v := h.Get(HeaderQoS); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			qos = types.QoS(n)
		}
	}
	return feed, qos
}

// Close 取消所有订阅；自行建立的连接会被排空后关闭
func (t *Transport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	subs := t.subs
	t.subs = nil
	t.mu.Unlock()

	if t.conn == nil {
		return nil
	}
	if t.owned {
		if err := t.conn.Drain(); err != nil {
			t.conn.Close()
		}
		return nil
	}
	for _, s := range subs {
		_ = s.Unsubscribe()
	}
	return nil
}
