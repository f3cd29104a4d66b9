// Package interfaces 定义 go-fabric 公共接口
//
// 路由引擎只通过这些接口与外部协作者交互：
//   - TopologyQuery: 只读拓扑查询
//   - NodeSender / SubscriberDeliverer: 传输与本地投递
//   - Document: 线上结构化文档
//   - Routing: 路由策略的公共契约
//   - DedupCache: 洪泛去重缓存
package interfaces
