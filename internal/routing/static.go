package routing

import (
	"fmt"
	"slices"

	"github.com/dep2p/go-fabric/pkg/interfaces"
	"github.com/dep2p/go-fabric/pkg/types"
)

var _ interfaces.Routing = (*StaticRoute)(nil)

// StaticRoute 固定路径路由
//
// 当前位置是本地节点在序列中第一次出现的下标，不在序列中时为 -1，
// 此时所有与位置相关的查询返回空值。
type StaticRoute struct {
	base

	local   types.NodeID
	nodes   []types.NodeID
	current int
}

// NewStaticRoute 创建静态路由
func NewStaticRoute(local types.NodeID, nodes []types.NodeID) *StaticRoute {
	r := &StaticRoute{base: newBase(interfaces.RoutingStatic), local: local}
	r.SetNodes(nodes)
	return r
}

// SetNodes 替换节点序列并重新计算当前位置
func (r *StaticRoute) SetNodes(nodes []types.NodeID) {
	r.nodes = slices.Clone(nodes)
	r.current = slices.Index(r.nodes, r.local)
}

// Nodes 返回节点序列副本
func (r *StaticRoute) Nodes() []types.NodeID {
	return slices.Clone(r.nodes)
}

// CurrentIndex 本地节点在序列中的位置，不存在时为 -1
func (r *StaticRoute) CurrentIndex() int {
	return r.current
}

// CurrentNode 本地节点
func (r *StaticRoute) CurrentNode() types.NodeID {
	return r.local
}

// PreviousNode 上一跳
func (r *StaticRoute) PreviousNode() types.NodeID {
	if r.current <= 0 {
		return types.EmptyNodeID
	}
	return r.nodes[r.current-1]
}

// StartNode 起点
func (r *StaticRoute) StartNode() types.NodeID {
	if len(r.nodes) == 0 {
		return types.EmptyNodeID
	}
	return r.nodes[0]
}

// EndNode 终点
func (r *StaticRoute) EndNode() types.NodeID {
	if len(r.nodes) == 0 {
		return types.EmptyNodeID
	}
	return r.nodes[len(r.nodes)-1]
}

// NextNodes 下一跳，到达终点或本地节点不在路径上时为空
func (r *StaticRoute) NextNodes() []types.NodeID {
	if r.current < 0 || r.current+1 >= len(r.nodes) {
		return nil
	}
	return []types.NodeID{r.nodes[r.current+1]}
}

// ReturnRoute 反转节点序列
func (r *StaticRoute) ReturnRoute() interfaces.Routing {
	reversed := slices.Clone(r.nodes)
	slices.Reverse(reversed)
	return NewStaticRoute(r.local, reversed)
}

// IsDuplicate 静态路由不会成环
func (r *StaticRoute) IsDuplicate(interfaces.Message) bool {
	return false
}

// Embed 写入文档
func (r *StaticRoute) Embed(path string, doc interfaces.Document) error {
	if err := r.embedBase(path, doc); err != nil {
		return err
	}
	nodes := make([]string, len(r.nodes))
	for i, n := range r.nodes {
		nodes[i] = string(n)
	}
	return doc.Set(join(path, fieldNodes), nodes)
}

// Clone 深拷贝
func (r *StaticRoute) Clone() interfaces.Routing {
	return &StaticRoute{
		base:    r.cloneBase(),
		local:   r.local,
		nodes:   slices.Clone(r.nodes),
		current: r.current,
	}
}

// String 返回 "A->B->C" 形式
func (r *StaticRoute) String() string {
	return fmt.Sprintf("static[%s]", types.JoinNodeIDs(r.nodes, "->"))
}

func decodeStatic(local types.NodeID, path string, doc interfaces.Document) (*StaticRoute, error) {
	raw, ok := doc.GetStrings(join(path, fieldNodes))
	if !ok && doc.Has(join(path, fieldNodes)) {
		return nil, fmt.Errorf("%w: static nodes must be a string list", ErrInvalidRouting)
	}
	r := NewStaticRoute(local, types.NodeIDs(raw...))
	r.initBase(path, doc)
	return r, nil
}
