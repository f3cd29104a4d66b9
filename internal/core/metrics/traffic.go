package metrics

import (
	"sync"
	"sync/atomic"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-fabric/pkg/types"
)

// meter 一个方向上的累计量和速率
type meter struct {
	total atomic.Int64
	rate  *RateMeter
}

func newMeter(clk clock.Clock) *meter {
	return &meter{rate: NewRateMeter(clk)}
}

func (m *meter) add(n int64) {
	m.total.Add(n)
	m.rate.Add(n)
}

func (m *meter) reset() {
	m.total.Store(0)
	m.rate.Reset()
}

// pair 入站和出站
type pair struct {
	in, out *meter
}

func newPair(clk clock.Clock) *pair {
	return &pair{in: newMeter(clk), out: newMeter(clk)}
}

func (p *pair) stats() Stats {
	return Stats{
		TotalIn:  p.in.total.Load(),
		TotalOut: p.out.total.Load(),
		RateIn:   p.in.rate.Rate(),
		RateOut:  p.out.rate.Rate(),
	}
}

// TrafficCounter 流量计数器
//
// 按全局、节点、Feed 三层统计本地节点发送和接收的字节数。
type TrafficCounter struct {
	clk   clock.Clock
	total *pair

	mu    sync.RWMutex
	nodes map[types.NodeID]*pair
	feeds map[types.FeedDescriptor]*pair
}

// NewTrafficCounter 创建流量计数器
func NewTrafficCounter() *TrafficCounter {
	return NewTrafficCounterWithClock(clock.New())
}

// NewTrafficCounterWithClock 使用指定时钟创建流量计数器
func NewTrafficCounterWithClock(clk clock.Clock) *TrafficCounter {
	return &TrafficCounter{
		clk:   clk,
		total: newPair(clk),
		nodes: make(map[types.NodeID]*pair),
		feeds: make(map[types.FeedDescriptor]*pair),
	}
}

// LogSent 实现 Reporter
func (c *TrafficCounter) LogSent(size int64, node types.NodeID, feed types.FeedDescriptor) {
	c.total.out.add(size)
	if !node.IsEmpty() {
		c.nodePair(node).out.add(size)
	}
	if !feed.IsZero() {
		c.feedPair(feed).out.add(size)
	}
}

// LogRecv 实现 Reporter
func (c *TrafficCounter) LogRecv(size int64, node types.NodeID, feed types.FeedDescriptor) {
	c.total.in.add(size)
	if !node.IsEmpty() {
		c.nodePair(node).in.add(size)
	}
	if !feed.IsZero() {
		c.feedPair(feed).in.add(size)
	}
}

// ForNode 实现 Reporter
func (c *TrafficCounter) ForNode(node types.NodeID) Stats {
	c.mu.RLock()
	p, ok := c.nodes[node]
	c.mu.RUnlock()
	if !ok {
		return Stats{}
	}
	return p.stats()
}

// ForFeed 实现 Reporter
func (c *TrafficCounter) ForFeed(feed types.FeedDescriptor) Stats {
	c.mu.RLock()
	p, ok := c.feeds[feed]
	c.mu.RUnlock()
	if !ok {
		return Stats{}
	}
	return p.stats()
}

// Totals 实现 Reporter
func (c *TrafficCounter) Totals() Stats {
	return c.total.stats()
}

// ByNode 实现 Reporter
func (c *TrafficCounter) ByNode() map[types.NodeID]Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[types.NodeID]Stats, len(c.nodes))
	for n, p := range c.nodes {
		out[n] = p.stats()
	}
	return out
}

// Reset 实现 Reporter
func (c *TrafficCounter) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.total.in.reset()
	c.total.out.reset()
	c.nodes = make(map[types.NodeID]*pair)
	c.feeds = make(map[types.FeedDescriptor]*pair)
}

func (c *TrafficCounter) nodePair(node types.NodeID) *pair {
	c.mu.RLock()
	p, ok := c.nodes[node]
	c.mu.RUnlock()
	if ok {
		return p
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok = c.nodes[node]; !ok {
		p = newPair(c.clk)
		c.nodes[node] = p
	}
	return p
}

func (c *TrafficCounter) feedPair(feed types.FeedDescriptor) *pair {
	c.mu.RLock()
	p, ok := c.feeds[feed]
	c.mu.RUnlock()
	if ok {
		return p
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok = c.feeds[feed]; !ok {
		p = newPair(c.clk)
		c.feeds[feed] = p
	}
	return p
}
