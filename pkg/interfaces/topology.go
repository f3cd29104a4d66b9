package interfaces

import "github.com/dep2p/go-fabric/pkg/types"

// TopologyQuery 只读拓扑查询
//
// 返回的切片归调用方所有，实现不得在返回后修改。
type TopologyQuery interface {
	// AvailableNodes 返回所有可用节点
	AvailableNodes() []types.NodeID

	// NeighbourEdges 返回所有邻居边
	NeighbourEdges() []types.NeighbourEdge

	// NeighboursOf 返回节点的邻居（已去重）
	NeighboursOf(node types.NodeID) []types.NodeID

	// PrecomputedRoutes 返回 source -> dest 的预计算路由，按 Ordinal 升序
	PrecomputedRoutes(source, dest types.NodeID) []types.RouteRecord
}
