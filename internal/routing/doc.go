// Package routing 实现消息路由策略
//
// # 模块概述
//
// routing 包在每一跳决定消息怎样继续传播：
//   - StaticRoute: 固定节点序列，逐跳转发
//   - FloodRoute: 向除上一跳外的所有邻居洪泛，依赖去重缓存防止环路
//   - PathFinder: 在可用节点上运行 Dijkstra，为 StaticRoute 生成路径
//
// # 线上格式
//
// 路由状态嵌入到结构化文档的某个节点下：
//
//	<path>/type      "static" | "flood"
//	<path>/props     属性映射
//	<path>/nodes     静态路由节点序列
//	<path>/start     洪泛起点
//	<path>/previous  洪泛上一跳（发送时改写为本地节点）
//	<path>/retain    洪泛保留标记（仅 true 时写入）
//	<path>/ttl       洪泛去重 TTL（毫秒，总是写入）
//
// 类型标签无法识别时 Decode 返回 ErrUnknownRoutingType，不会构造出半成品。
//
// # 路由描述
//
// 预计算路由记录使用描述字符串：
//   - "nodes=A,B,C"       显式节点列表
//   - "factory=dynamic"   运行时最短路径
//
// 终点为 "$virtual" 时路由只包含起点；解析结果为空时退化为点对点 [start, end]。
package routing
