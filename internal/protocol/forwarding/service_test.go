package forwarding

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-fabric/internal/message"
	"github.com/dep2p/go-fabric/pkg/types"
)

type countingRecorder struct {
	mu         sync.Mutex
	dispatched map[string]int
	failed     map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{dispatched: map[string]int{}, failed: map[string]int{}}
}

func (r *countingRecorder) Dispatched(a string) {
	r.mu.Lock()
	r.dispatched[a]++
	r.mu.Unlock()
}

func (r *countingRecorder) Failed(a string) {
	r.mu.Lock()
	r.failed[a]++
	r.mu.Unlock()
}

func (r *countingRecorder) QueueDepth(int) {}

func (r *countingRecorder) counts() (map[string]int, map[string]int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d := map[string]int{}
	f := map[string]int{}
	for k, v := range r.dispatched {
		d[k] = v
	}
	for k, v := range r.failed {
		f[k] = v
	}
	return d, f
}

// newTestService 创建使用模拟时钟的服务，空闲轮询不会自行触发
func newTestService(t *testing.T, tr *MockTransport, mutate ...func(*Config)) *Service {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Clock = clock.NewMock()
	cfg.DispatchTimeout = time.Second
	for _, fn := range mutate {
		fn(&cfg)
	}
	s, err := NewService(cfg, tr)
	require.NoError(t, err)
	return s
}

func startService(t *testing.T, s *Service) {
	t.Helper()
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(func() { _ = s.Stop() })
}

// ============================================================================
//                              分发顺序
// ============================================================================

// TestService_FIFO 测试按入队顺序调用传输层
func TestService_FIFO(t *testing.T) {
	tr := NewMockTransport()
	s := newTestService(t, tr)

	// 先入队再启动，工作者启动后按顺序排空
	for _, id := range []string{"m1", "m2", "m3"} {
		require.NoError(t, s.Forward(testMessage(id), "B", testFeed, types.QoSDefault))
	}
	startService(t, s)

	require.Eventually(t, func() bool { return tr.Len() == 3 }, time.Second, 5*time.Millisecond)

	var ids []types.MessageID
	for _, c := range tr.Calls() {
		m, err := message.Decode(c.Payload, nil)
		require.NoError(t, err)
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []types.MessageID{"m1", "m2", "m3"}, ids)
}

// TestService_WakeOnEnqueue 测试入队立即唤醒工作者
func TestService_WakeOnEnqueue(t *testing.T) {
	tr := NewMockTransport()
	s := newTestService(t, tr)
	startService(t, s)

	require.NoError(t, s.Forward(testMessage("m1"), "B", testFeed, types.QoSReliable))
	sub := types.Subscription{ID: "1", Actor: "actor"}
	require.NoError(t, s.Deliver(testMessage("m2"), sub, testFeed, types.QoSDefault))

	require.Eventually(t, func() bool { return tr.Len() == 2 }, time.Second, 5*time.Millisecond)

	calls := tr.Calls()
	assert.Equal(t, ActionForward, calls[0].Action)
	assert.Equal(t, types.NodeID("B"), calls[0].Target)
	assert.Equal(t, types.QoSReliable, calls[0].QoS)
	assert.Equal(t, ActionDeliver, calls[1].Action)
	assert.Equal(t, sub, calls[1].Subscription)

	stats := s.Stats()
	assert.Equal(t, int64(2), stats.Enqueued)
	assert.Equal(t, int64(1), stats.Forwarded)
	assert.Equal(t, int64(1), stats.Delivered)
}

// TestService_IdlePoll 测试空闲轮询也能取出消息
func TestService_IdlePoll(t *testing.T) {
	tr := NewMockTransport()
	mock := clock.NewMock()
	s := newTestService(t, tr, func(c *Config) { c.Clock = mock })
	startService(t, s)

	// 先让工作者处理一条消息，随后回到等待状态
	require.NoError(t, s.Forward(testMessage("m0"), "B", testFeed, types.QoSDefault))
	require.Eventually(t, func() bool { return tr.Len() == 1 }, time.Second, 5*time.Millisecond)
	select {
	case <-s.queue.Wake():
	default:
	}
	require.Eventually(t, func() bool { return s.queue.Len() == 0 && len(s.queue.wake) == 0 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	// 绕过唤醒信号直接放入队列
	s.queue.mu.Lock()
	s.queue.queue.PushBack(NewForward(testMessage("m1"), "B", testFeed, types.QoSDefault))
	s.queue.mu.Unlock()

	assert.Never(t, func() bool { return tr.Len() > 1 }, 50*time.Millisecond, 5*time.Millisecond)

	mock.Add(DefaultConfig().IdleInterval)
	assert.Eventually(t, func() bool { return tr.Len() == 2 }, time.Second, 5*time.Millisecond)
}

// ============================================================================
//                              失败处理
// ============================================================================

// TestService_FailureNoRetry 测试失败后继续处理下一条且不重试
func TestService_FailureNoRetry(t *testing.T) {
	tr := NewMockTransport()
	tr.SendErr = func(target types.NodeID) error {
		if target == "bad" {
			return errors.New("unreachable")
		}
		return nil
	}
	rec := newCountingRecorder()
	s := newTestService(t, tr)
	s.SetRecorder(rec)

	require.NoError(t, s.Forward(testMessage("m1"), "bad", testFeed, types.QoSDefault))
	require.NoError(t, s.Forward(testMessage("m2"), "good", testFeed, types.QoSDefault))
	startService(t, s)

	require.Eventually(t, func() bool { return tr.Len() == 2 }, time.Second, 5*time.Millisecond)
	assert.Never(t, func() bool { return tr.Len() > 2 }, 50*time.Millisecond, 5*time.Millisecond)

	calls := tr.Calls()
	assert.Equal(t, types.NodeID("bad"), calls[0].Target)
	assert.Equal(t, types.NodeID("good"), calls[1].Target)
	assert.Equal(t, 0, s.Queue().Len())

	stats := s.Stats()
	assert.Equal(t, int64(1), stats.Failed)
	assert.Equal(t, int64(1), stats.Forwarded)

	dispatched, failed := rec.counts()
	assert.Equal(t, 1, dispatched["forward"])
	assert.Equal(t, 1, failed["forward"])
}

// TestService_UnknownAction 测试未知动作被丢弃
func TestService_UnknownAction(t *testing.T) {
	tr := NewMockTransport()
	s := newTestService(t, tr)

	require.NoError(t, s.Enqueue(&OutboundMessage{Message: testMessage("m1"), Feed: testFeed}))
	require.NoError(t, s.Forward(testMessage("m2"), "B", testFeed, types.QoSDefault))
	startService(t, s)

	require.Eventually(t, func() bool { return tr.Len() == 1 }, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return s.Stats().Failed == 1 }, time.Second, 5*time.Millisecond)
}

// TestService_DispatchTimeout 测试单次分发超时
func TestService_DispatchTimeout(t *testing.T) {
	tr := NewMockTransport()
	tr.Block = make(chan struct{})
	s := newTestService(t, tr, func(c *Config) { c.DispatchTimeout = 20 * time.Millisecond })
	startService(t, s)

	require.NoError(t, s.Forward(testMessage("m1"), "B", testFeed, types.QoSDefault))
	assert.Eventually(t, func() bool { return s.Stats().Failed == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, tr.Len())
}

// TestService_QueueFull 测试队列满时丢弃
func TestService_QueueFull(t *testing.T) {
	tr := NewMockTransport()
	s := newTestService(t, tr, func(c *Config) { c.MaxQueueSize = 1 })

	require.NoError(t, s.Forward(testMessage("m1"), "B", testFeed, types.QoSDefault))
	err := s.Forward(testMessage("m2"), "B", testFeed, types.QoSDefault)
	assert.ErrorIs(t, err, ErrQueueFull)
	assert.Equal(t, int64(1), s.Stats().Dropped)

	assert.ErrorIs(t, s.Forward(nil, "B", testFeed, types.QoSDefault), ErrInvalidMessage)
}

// ============================================================================
//                              限速与生命周期
// ============================================================================

// TestService_RateLimit 测试分发限速
func TestService_RateLimit(t *testing.T) {
	tr := NewMockTransport()
	s := newTestService(t, tr, func(c *Config) {
		c.DispatchRate = 20
		c.DispatchBurst = 1
	})
	for _, id := range []string{"m1", "m2", "m3"} {
		require.NoError(t, s.Forward(testMessage(id), "B", testFeed, types.QoSDefault))
	}

	start := time.Now()
	startService(t, s)
	require.Eventually(t, func() bool { return tr.Len() == 3 }, 2*time.Second, 5*time.Millisecond)

	// 第一条立即发送，其余两条各等待约 50ms
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}

// TestService_StartStop 测试生命周期
func TestService_StartStop(t *testing.T) {
	tr := NewMockTransport()
	tr.Block = make(chan struct{})
	s := newTestService(t, tr)

	require.NoError(t, s.Start(context.Background()))
	assert.ErrorIs(t, s.Start(context.Background()), ErrAlreadyStarted)

	require.NoError(t, s.Forward(testMessage("m1"), "B", testFeed, types.QoSDefault))
	require.NoError(t, s.Forward(testMessage("m2"), "B", testFeed, types.QoSDefault))

	// m1 阻塞在传输层，停止时被取消，m2 随队列丢弃
	start := time.Now()
	require.NoError(t, s.Stop())
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, 0, s.Queue().Len())
	assert.GreaterOrEqual(t, s.Stats().Dropped, int64(1))

	require.NoError(t, s.Stop())
}

// TestNewService_Errors 测试构造错误
func TestNewService_Errors(t *testing.T) {
	_, err := NewService(DefaultConfig(), nil)
	assert.ErrorIs(t, err, ErrNoTransport)

	cfg := DefaultConfig()
	cfg.IdleInterval = 0
	_, err = NewService(cfg, NewMockTransport())
	assert.ErrorIs(t, err, ErrInvalidConfig)

	cfg = DefaultConfig()
	cfg.DispatchRate = 1
	cfg.DispatchBurst = 0
	_, err = NewService(cfg, NewMockTransport())
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
