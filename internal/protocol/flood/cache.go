package flood

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/jellydator/ttlcache/v3"

	"github.com/dep2p/go-fabric/pkg/interfaces"
	"github.com/dep2p/go-fabric/pkg/lib/log"
	"github.com/dep2p/go-fabric/pkg/types"
)

var logger = log.Logger("protocol/flood")

var _ interfaces.DedupCache = (*Cache)(nil)

// Entry 缓存条目
type Entry struct {
	// Retained 保留标记
	Retained bool

	// ExpiresAt 过期时间，零值表示永不过期
	ExpiresAt time.Time
}

// ============================================================================
//                              去重缓存
// ============================================================================

// Cache 洪泛去重缓存
//
// 登记和查询在 ttlcache 内部加锁；清理时额外持有写锁，
// 因此一次清理不会与登记或查询交错。
type Cache struct {
	cfg      Config
	items    *ttlcache.Cache[types.MessageID, bool]
	recorder Recorder

	// sweepMu 登记/查询持读锁，清理持写锁
	sweepMu sync.RWMutex

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// New 创建去重缓存
func New(opts ...Option) (*Cache, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return NewWithConfig(cfg)
}

// NewWithConfig 按配置创建去重缓存
func NewWithConfig(cfg Config) (*Cache, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Clock == nil {
		cfg.Clock = DefaultConfig().Clock
	}

	cacheOpts := []ttlcache.Option[types.MessageID, bool]{
		ttlcache.WithDisableTouchOnHit[types.MessageID, bool](),
	}
	if cfg.Capacity > 0 {
		cacheOpts = append(cacheOpts, ttlcache.WithCapacity[types.MessageID, bool](cfg.Capacity))
	}

	return &Cache{
		cfg:      cfg,
		items:    ttlcache.New[types.MessageID, bool](cacheOpts...),
		recorder: nopRecorder{},
	}, nil
}

// SetRecorder 设置指标记录器
func (c *Cache) SetRecorder(r Recorder) {
	if r == nil {
		r = nopRecorder{}
	}
	c.recorder = r
}

func itemTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return ttlcache.NoTTL
	}
	return ttl
}

// IsDuplicate 消息是否已登记，不修改缓存
func (c *Cache) IsDuplicate(id types.MessageID) bool {
	c.sweepMu.RLock()
	defer c.sweepMu.RUnlock()
	return c.items.Has(id)
}

// Add 登记消息，已存在时保持原有条目
func (c *Cache) Add(id types.MessageID, ttl time.Duration, retained bool) {
	c.MarkSeen(id, ttl, retained)
}

// MarkSeen 原子地查询并登记，返回消息此前是否已登记
func (c *Cache) MarkSeen(id types.MessageID, ttl time.Duration, retained bool) bool {
	c.sweepMu.RLock()
	_, found := c.items.GetOrSet(id, retained, ttlcache.WithTTL[types.MessageID, bool](itemTTL(ttl)))
	c.sweepMu.RUnlock()

	if found {
		c.recorder.Duplicate()
	}
	return found
}

// Remove 删除登记
func (c *Cache) Remove(id types.MessageID) {
	c.sweepMu.RLock()
	defer c.sweepMu.RUnlock()
	c.items.Delete(id)
}

// Entry 返回条目详情，不存在或已过期时返回 false
func (c *Cache) Entry(id types.MessageID) (Entry, bool) {
	c.sweepMu.RLock()
	defer c.sweepMu.RUnlock()
	item := c.items.Get(id)
	if item == nil {
		return Entry{}, false
	}
	e := Entry{Retained: item.Value()}
	if item.TTL() > 0 {
		e.ExpiresAt = item.ExpiresAt()
	}
	return e, true
}

// Len 当前未过期的条目数
func (c *Cache) Len() int {
	return c.items.Len()
}

// Sweep 执行一次清理，返回删除的条目数
func (c *Cache) Sweep() (evicted int) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("清理去重缓存时发生 panic", "panic", fmt.Sprint(r))
			evicted = 0
		}
	}()

	c.sweepMu.Lock()
	before := c.items.Metrics().Evictions
	c.items.DeleteExpired()
	evicted = int(c.items.Metrics().Evictions - before)
	size := c.items.Len()
	c.sweepMu.Unlock()

	c.recorder.Evicted(evicted)
	c.recorder.Size(size)
	if evicted > 0 {
		logger.Debug("去重缓存清理完成", "evicted", evicted, "remaining", size)
	}
	return evicted
}

// ============================================================================
//                              清理循环
// ============================================================================

// Start 启动后台清理循环
func (c *Cache) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return ErrAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})
	c.running = true

	ticker := c.cfg.Clock.Ticker(c.cfg.SweepInterval)
	go c.run(ctx, ticker, c.done)

	logger.Debug("去重缓存清理循环已启动", "interval", c.cfg.SweepInterval)
	return nil
}

// Stop 停止清理循环，最多等待一个清理间隔
func (c *Cache) Stop() error {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return nil
	}
	c.running = false
	cancel, done := c.cancel, c.done
	c.mu.Unlock()

	cancel()

	timer := time.NewTimer(c.cfg.SweepInterval)
	defer timer.Stop()
	select {
	case <-done:
	case <-timer.C:
		logger.Warn("去重缓存清理循环未在一个间隔内退出", "interval", c.cfg.SweepInterval)
	}
	return nil
}

func (c *Cache) run(ctx context.Context, ticker *clock.Ticker, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.Sweep()
		case <-ctx.Done():
			return
		}
	}
}
