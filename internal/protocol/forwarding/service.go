package forwarding

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/dep2p/go-fabric/internal/message"
	"github.com/dep2p/go-fabric/pkg/interfaces"
	"github.com/dep2p/go-fabric/pkg/lib/log"
	"github.com/dep2p/go-fabric/pkg/types"
)

var logger = log.Logger("protocol/forwarding")

// Stats 转发统计
type Stats struct {
	Enqueued  int64 // 入队数
	Forwarded int64 // 成功发往下一跳
	Delivered int64 // 成功投递给订阅者
	Failed    int64 // 分发失败
	Dropped   int64 // 队列满或停止时丢弃
}

// ============================================================================
//                              转发工作者
// ============================================================================

// Service 出站转发服务
//
// 单个工作者按 FIFO 顺序消费队列，失败的消息不会重试。
type Service struct {
	cfg       Config
	queue     *Queue
	sender    interfaces.NodeSender
	deliverer interfaces.SubscriberDeliverer
	limiter   *rate.Limiter
	recorder  Recorder

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool

	enqueued  atomic.Int64
	forwarded atomic.Int64
	delivered atomic.Int64
	failed    atomic.Int64
	dropped   atomic.Int64
}

// NewService 创建转发服务
func NewService(cfg Config, transport interfaces.Transport) (*Service, error) {
	if transport == nil {
		return nil, ErrNoTransport
	}
	return NewServiceWith(cfg, transport, transport)
}

// NewServiceWith 分别指定发送端和投递端创建转发服务
func NewServiceWith(cfg Config, sender interfaces.NodeSender, deliverer interfaces.SubscriberDeliverer) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sender == nil || deliverer == nil {
		return nil, ErrNoTransport
	}
	if cfg.Clock == nil {
		cfg.Clock = DefaultConfig().Clock
	}

	s := &Service{
		cfg:       cfg,
		queue:     NewQueue(cfg.MaxQueueSize),
		sender:    sender,
		deliverer: deliverer,
		recorder:  nopRecorder{},
	}
	if cfg.DispatchRate > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.DispatchRate), cfg.DispatchBurst)
	}
	return s, nil
}

// SetRecorder 设置指标记录器，需在 Start 之前调用
func (s *Service) SetRecorder(r Recorder) {
	if r == nil {
		r = nopRecorder{}
	}
	s.recorder = r
}

// Queue 返回出站队列
func (s *Service) Queue() *Queue {
	return s.queue
}

// ============================================================================
//                              入队接口
// ============================================================================

// Enqueue 追加出站消息
//
// 队列已满时消息被丢弃并返回 ErrQueueFull。
func (s *Service) Enqueue(out *OutboundMessage) error {
	if err := s.queue.Enqueue(out); err != nil {
		if err == ErrQueueFull {
			s.dropped.Add(1)
			logger.Warn("出站队列已满，丢弃消息", "out", out.String(), "max", s.cfg.MaxQueueSize)
		}
		return err
	}
	s.enqueued.Add(1)
	s.recorder.QueueDepth(s.queue.Len())
	return nil
}

// Forward 把消息副本排队发往 target
func (s *Service) Forward(msg *message.FeedMessage, target types.NodeID, feed types.FeedDescriptor, qos types.QoS) error {
	if msg == nil {
		return ErrInvalidMessage
	}
	return s.Enqueue(NewForward(msg, target, feed, qos))
}

// Deliver 把消息副本排队投递给 sub
func (s *Service) Deliver(msg *message.FeedMessage, sub types.Subscription, feed types.FeedDescriptor, qos types.QoS) error {
	if msg == nil {
		return ErrInvalidMessage
	}
	return s.Enqueue(NewDeliver(msg, sub, feed, qos))
}

// Stats 返回统计
func (s *Service) Stats() Stats {
	return Stats{
		Enqueued:  s.enqueued.Load(),
		Forwarded: s.forwarded.Load(),
		Delivered: s.delivered.Load(),
		Failed:    s.failed.Load(),
		Dropped:   s.dropped.Load(),
	}
}

// ============================================================================
//                              生命周期
// ============================================================================

// Start 启动工作者
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true

	go s.run(ctx, s.done)

	logger.Info("转发服务已启动", "idle", s.cfg.IdleInterval, "max_queue", s.cfg.MaxQueueSize)
	return nil
}

// Stop 停止工作者
//
// 正在进行的分发会被取消；等待时间不超过一个空闲间隔加一次分发超时。
// 队列中剩余的消息被丢弃。
func (s *Service) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	cancel()

	timer := time.NewTimer(s.cfg.IdleInterval + s.cfg.DispatchTimeout)
	defer timer.Stop()
	select {
	case <-done:
	case <-timer.C:
		logger.Warn("转发工作者未在限定时间内退出")
	}

	if n := s.queue.Clear(); n > 0 {
		s.dropped.Add(int64(n))
		logger.Info("停止时丢弃未发送的出站消息", "count", n)
	}
	s.recorder.QueueDepth(0)

	logger.Info("转发服务已停止")
	return nil
}

func (s *Service) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := s.cfg.Clock.Ticker(s.cfg.IdleInterval)
	defer ticker.Stop()

	for {
		for {
			if ctx.Err() != nil {
				return
			}
			out := s.queue.Dequeue()
			if out == nil {
				break
			}
			s.recorder.QueueDepth(s.queue.Len())
			s.dispatch(ctx, out)
		}

		select {
		case <-ctx.Done():
			return
		case <-s.queue.Wake():
		case <-ticker.C:
		}
	}
}

// ============================================================================
//                              分发
// ============================================================================

func (s *Service) dispatch(ctx context.Context, out *OutboundMessage) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			// 只会在停止时发生
			s.dropped.Add(1)
			return
		}
	}

	dctx := ctx
	if s.cfg.DispatchTimeout > 0 {
		var cancel context.CancelFunc
		dctx, cancel = context.WithTimeout(ctx, s.cfg.DispatchTimeout)
		defer cancel()
	}

	if err := s.send(dctx, out); err != nil {
		s.failed.Add(1)
		s.recorder.Failed(out.Action.String())
		if out.Action == ActionUnknown {
			logger.Error("未知的出站动作，丢弃消息", "msg", out.Message.ID, "feed", out.Feed)
			return
		}
		logger.Warn("出站消息分发失败，丢弃",
			"action", out.Action,
			"feed", out.Feed,
			"target", out.Target,
			"subscription", out.Subscription,
			"msg", out.Message.ID,
			"err", err)
		return
	}

	switch out.Action {
	case ActionForward:
		s.forwarded.Add(1)
	case ActionDeliver:
		s.delivered.Add(1)
	}
	s.recorder.Dispatched(out.Action.String())
}

func (s *Service) send(ctx context.Context, out *OutboundMessage) error {
	switch out.Action {
	case ActionForward, ActionDeliver:
	default:
		return fmt.Errorf("%w: %d", ErrUnknownAction, out.Action)
	}

	payload, err := message.Encode(out.Message)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	if out.Action == ActionForward {
		return s.sender.SendToNode(ctx, out.Target, out.Feed, payload, out.QoS)
	}
	return s.deliverer.DeliverToSubscriber(ctx, out.Subscription, out.Feed, payload, out.QoS)
}
