// Package bus 实现 Fabric 总线服务
//
// 总线服务负责一个节点上的消息处理：
//
//   - 入站：解码消息、洪泛去重、入站插件链、按路由转发给下一跳、投递给本地订阅者
//   - 出站：Publish 按消息携带的路由发出；SendTo 计算到目的节点的静态路由；
//     Flood 向全网洪泛
//
// 静态路由只在终点节点投递，洪泛路由在每个首次看到消息的节点投递。
// 所有发送和投递都经由 forwarding 队列异步完成。
package bus
