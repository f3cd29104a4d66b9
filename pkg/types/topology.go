package types

// NeighbourEdge 两个节点之间的连通关系
//
// 存储上可能是有向的，但算法把它当作无权的连通事实。
type NeighbourEdge struct {
	Node      NodeID `json:"node" yaml:"node"`
	Neighbour NodeID `json:"neighbour" yaml:"neighbour"`
}

// Reverse 返回反向的边
func (e NeighbourEdge) Reverse() NeighbourEdge {
	return NeighbourEdge{Node: e.Neighbour, Neighbour: e.Node}
}

// WildcardNode 路由记录中的通配节点
const WildcardNode NodeID = "*"

// RouteRecord 预先计算并命名的路由
//
// Descriptor 描述路由的节点序列，支持以下形式：
//   - "nodes=a,b,c"      显式节点列表
//   - "factory=dynamic"  运行时计算最短路径
type RouteRecord struct {
	Start      NodeID `json:"start" yaml:"start"`
	End        NodeID `json:"end" yaml:"end"`
	Ordinal    int    `json:"ordinal" yaml:"ordinal"`
	Descriptor string `json:"descriptor" yaml:"descriptor"`
}

// IsWildcard 起点和终点都是通配符
func (r RouteRecord) IsWildcard() bool {
	return r.Start == WildcardNode && r.End == WildcardNode
}

// Matches 记录是否适用于 start -> end
func (r RouteRecord) Matches(start, end NodeID) bool {
	return (r.Start == start || r.Start == WildcardNode) && (r.End == end || r.End == WildcardNode)
}

// NodesRoute 构造显式节点列表形式的描述
func NodesRoute(nodes ...NodeID) string {
	return "nodes=" + JoinNodeIDs(nodes, ",")
}
