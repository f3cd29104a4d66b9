// Package topology 提供内存拓扑注册表
//
// Registry 实现 interfaces.TopologyQuery，并提供节点、邻居和预计算路由的
// 修改方法。拓扑可以从 YAML 文件加载：
//
//	nodes:
//	  - id: A
//	  - id: B
//	    status: unavailable
//	neighbours:
//	  - {node: A, neighbour: B}
//	routes:
//	  - {start: A, end: B, ordinal: 0, descriptor: "nodes=A,B"}
package topology
