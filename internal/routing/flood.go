package routing

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/dep2p/go-fabric/pkg/interfaces"
	"github.com/dep2p/go-fabric/pkg/types"
)

var _ interfaces.Routing = (*FloodRoute)(nil)

// FloodRoute 洪泛路由
//
// 下一跳是本地节点的全部邻居，去掉上一跳和本地节点自身。
// 下一跳只计算一次，之后在该实例的生命周期内保持不变。
type FloodRoute struct {
	base

	factory *Factory

	start    types.NodeID
	previous types.NodeID
	retained bool
	ttl      time.Duration

	nextOnce sync.Once
	next     []types.NodeID
}

// Retained 保留标记
func (r *FloodRoute) Retained() bool { return r.retained }

// TTL 去重缓存中的存活时间
func (r *FloodRoute) TTL() time.Duration { return r.ttl }

// CurrentNode 本地节点
func (r *FloodRoute) CurrentNode() types.NodeID { return r.factory.Local() }

// PreviousNode 上一跳
func (r *FloodRoute) PreviousNode() types.NodeID { return r.previous }

// StartNode 起点
func (r *FloodRoute) StartNode() types.NodeID { return r.start }

// EndNode 没有下一跳时为本地节点，否则为第一个下一跳
//
// 洪泛没有确定的终点，这个值只用于展示。
func (r *FloodRoute) EndNode() types.NodeID {
	next := r.NextNodes()
	if len(next) == 0 {
		return r.factory.Local()
	}
	return next[0]
}

// NextNodes 下一跳
func (r *FloodRoute) NextNodes() []types.NodeID {
	r.nextOnce.Do(func() {
		local := r.factory.Local()
		var next []types.NodeID
		for _, n := range r.factory.topology.NeighboursOf(local) {
			if n == local || n == r.previous || n.IsEmpty() || slices.Contains(next, n) {
				continue
			}
			next = append(next, n)
		}
		r.next = next
	})
	return slices.Clone(r.next)
}

// ReturnRoute 使用本地节点到起点的第一条预计算路由，没有时返回 nil
func (r *FloodRoute) ReturnRoute() interfaces.Routing {
	local := r.factory.Local()
	routes := r.factory.Routes(local, r.start)
	if len(routes) == 0 {
		return nil
	}
	nodes := r.factory.RouteNodes(local, r.start, routes[0].Descriptor)
	return NewStaticRoute(local, nodes)
}

// IsDuplicate 在去重缓存中登记消息，之前已登记过时返回 true
func (r *FloodRoute) IsDuplicate(msg interfaces.Message) bool {
	if r.factory.dedup == nil {
		return false
	}
	return r.factory.dedup.MarkSeen(msg.UID(), r.ttl, r.retained)
}

// Embed 写入文档，上一跳改写为本地节点
func (r *FloodRoute) Embed(path string, doc interfaces.Document) error {
	if err := r.embedBase(path, doc); err != nil {
		return err
	}
	if err := doc.Set(join(path, fieldStart), string(r.start)); err != nil {
		return err
	}
	if err := doc.Set(join(path, fieldPrevious), string(r.factory.Local())); err != nil {
		return err
	}
	if r.retained {
		if err := doc.Set(join(path, fieldRetain), true); err != nil {
			return err
		}
	} else {
		doc.Delete(join(path, fieldRetain))
	}
	return doc.Set(join(path, fieldTTL), r.ttl.Milliseconds())
}

// Clone 深拷贝，下一跳在副本上重新计算
func (r *FloodRoute) Clone() interfaces.Routing {
	return &FloodRoute{
		base:     r.cloneBase(),
		factory:  r.factory,
		start:    r.start,
		previous: r.previous,
		retained: r.retained,
		ttl:      r.ttl,
	}
}

// String 返回简短描述
func (r *FloodRoute) String() string {
	return fmt.Sprintf("flood[start=%s prev=%s ttl=%s retain=%t]", r.start, r.previous, r.ttl, r.retained)
}

func (f *Factory) decodeFlood(path string, doc interfaces.Document) (*FloodRoute, error) {
	start, ok := doc.GetString(join(path, fieldStart))
	if !ok || start == "" {
		return nil, fmt.Errorf("%w: flood start node missing", ErrInvalidRouting)
	}
	previous, _ := doc.GetString(join(path, fieldPrevious))
	retained, _ := doc.GetBool(join(path, fieldRetain))

	ttl := f.cfg.FloodTTL
	if ms, ok := doc.GetInt(join(path, fieldTTL)); ok {
		ttl = time.Duration(ms) * time.Millisecond
	}

	r := &FloodRoute{
		base:     newBase(interfaces.RoutingFlood),
		factory:  f,
		start:    types.NodeID(start),
		previous: types.NodeID(previous),
		retained: retained,
		ttl:      ttl,
	}
	r.initBase(path, doc)
	return r, nil
}
