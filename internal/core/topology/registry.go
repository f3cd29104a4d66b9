package topology

import (
	"slices"
	"sort"
	"sync"

	"github.com/dep2p/go-fabric/pkg/interfaces"
	"github.com/dep2p/go-fabric/pkg/types"
)

var _ interfaces.TopologyQuery = (*Registry)(nil)

// ============================================================================
//                              拓扑注册表
// ============================================================================

// Registry 内存拓扑注册表
//
// 邻居关系按无向边保存：AddNeighbour(A, B) 之后 A、B 互为邻居。
// 所有查询结果按节点 ID 排序，保证不同节点上的计算结果一致。
type Registry struct {
	mu sync.RWMutex

	nodes     map[types.NodeID]types.NodeStatus
	edges     map[types.NeighbourEdge]struct{}
	adjacency map[types.NodeID]map[types.NodeID]struct{}
	routes    []types.RouteRecord
	onChange  []func()
}

// NewRegistry 创建空注册表
func NewRegistry() *Registry {
	return &Registry{
		nodes:     make(map[types.NodeID]types.NodeStatus),
		edges:     make(map[types.NeighbourEdge]struct{}),
		adjacency: make(map[types.NodeID]map[types.NodeID]struct{}),
	}
}

// OnChange 注册拓扑变化回调
//
// 回调在修改完成、锁释放之后同步调用。
func (r *Registry) OnChange(fn func()) {
	r.mu.Lock()
	r.onChange = append(r.onChange, fn)
	r.mu.Unlock()
}

func (r *Registry) notify() {
	r.mu.RLock()
	fns := slices.Clone(r.onChange)
	r.mu.RUnlock()
	for _, fn := range fns {
		fn()
	}
}

// ============================================================================
//                              修改
// ============================================================================

// AddNode 添加或更新节点
func (r *Registry) AddNode(id types.NodeID, status types.NodeStatus) error {
	if id.IsEmpty() || id == types.WildcardNode {
		return ErrInvalidNode
	}
	r.mu.Lock()
	r.nodes[id] = status
	r.mu.Unlock()
	r.notify()
	return nil
}

// SetStatus 修改节点状态
func (r *Registry) SetStatus(id types.NodeID, status types.NodeStatus) error {
	r.mu.Lock()
	if _, ok := r.nodes[id]; !ok {
		r.mu.Unlock()
		return ErrNodeNotFound
	}
	r.nodes[id] = status
	r.mu.Unlock()
	r.notify()
	return nil
}

// RemoveNode 移除节点及其所有邻居边
func (r *Registry) RemoveNode(id types.NodeID) error {
	r.mu.Lock()
	if _, ok := r.nodes[id]; !ok {
		r.mu.Unlock()
		return ErrNodeNotFound
	}
	delete(r.nodes, id)
	for peer := range r.adjacency[id] {
		delete(r.adjacency[peer], id)
		delete(r.edges, types.NeighbourEdge{Node: id, Neighbour: peer})
		delete(r.edges, types.NeighbourEdge{Node: peer, Neighbour: id})
	}
	delete(r.adjacency, id)
	r.mu.Unlock()
	r.notify()
	return nil
}

// AddNeighbour 添加邻居边，两端节点不存在时以可用状态自动创建
func (r *Registry) AddNeighbour(node, neighbour types.NodeID) error {
	if node.IsEmpty() || neighbour.IsEmpty() || node == neighbour {
		return ErrInvalidNode
	}
	r.mu.Lock()
	for _, id := range []types.NodeID{node, neighbour} {
		if _, ok := r.nodes[id]; !ok {
			r.nodes[id] = types.NodeAvailable
		}
	}
	edge := types.NeighbourEdge{Node: node, Neighbour: neighbour}
	if _, ok := r.edges[edge.Reverse()]; !ok {
		r.edges[edge] = struct{}{}
	}
	r.link(node, neighbour)
	r.link(neighbour, node)
	r.mu.Unlock()
	r.notify()
	return nil
}

func (r *Registry) link(a, b types.NodeID) {
	set, ok := r.adjacency[a]
	if !ok {
		set = make(map[types.NodeID]struct{})
		r.adjacency[a] = set
	}
	set[b] = struct{}{}
}

// RemoveNeighbour 移除邻居边（两个方向）
func (r *Registry) RemoveNeighbour(node, neighbour types.NodeID) {
	r.mu.Lock()
	edge := types.NeighbourEdge{Node: node, Neighbour: neighbour}
	delete(r.edges, edge)
	delete(r.edges, edge.Reverse())
	delete(r.adjacency[node], neighbour)
	delete(r.adjacency[neighbour], node)
	r.mu.Unlock()
	r.notify()
}

// AddRoute 添加预计算路由
func (r *Registry) AddRoute(rec types.RouteRecord) error {
	if rec.Start.IsEmpty() || rec.End.IsEmpty() {
		return ErrInvalidRoute
	}
	r.mu.Lock()
	r.routes = append(r.routes, rec)
	r.mu.Unlock()
	r.notify()
	return nil
}

// ============================================================================
//                              查询
// ============================================================================

// Status 返回节点状态
func (r *Registry) Status(id types.NodeID) (types.NodeStatus, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.nodes[id]
	return s, ok
}

// Nodes 返回所有节点（含不可用节点）
func (r *Registry) Nodes() []types.NodeID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.NodeID, 0, len(r.nodes))
	for id := range r.nodes {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// AvailableNodes 返回所有可用节点
func (r *Registry) AvailableNodes() []types.NodeID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.NodeID, 0, len(r.nodes))
	for id, status := range r.nodes {
		if status == types.NodeAvailable {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out
}

// NeighbourEdges 返回所有邻居边，每条无向边只出现一次
func (r *Registry) NeighbourEdges() []types.NeighbourEdge {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.NeighbourEdge, 0, len(r.edges))
	for e := range r.edges {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Node != out[j].Node {
			return out[i].Node < out[j].Node
		}
		return out[i].Neighbour < out[j].Neighbour
	})
	return out
}

// NeighboursOf 返回节点的邻居
func (r *Registry) NeighboursOf(node types.NodeID) []types.NodeID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.adjacency[node]
	out := make([]types.NodeID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// PrecomputedRoutes 返回适用于 source -> dest 的路由记录
//
// 精确匹配的记录排在通配记录之前，同类记录按 Ordinal 升序。
func (r *Registry) PrecomputedRoutes(source, dest types.NodeID) []types.RouteRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var exact, wildcard []types.RouteRecord
	for _, rec := range r.routes {
		switch {
		case rec.Start == source && rec.End == dest:
			exact = append(exact, rec)
		case rec.Matches(source, dest):
			wildcard = append(wildcard, rec)
		}
	}
	byOrdinal := func(a, b types.RouteRecord) int { return a.Ordinal - b.Ordinal }
	slices.SortStableFunc(exact, byOrdinal)
	slices.SortStableFunc(wildcard, byOrdinal)
	return append(exact, wildcard...)
}
