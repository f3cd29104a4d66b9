// Package message 定义总线上流转的 Feed 消息及其线上编解码
//
// 一条 FeedMessage 由信封（ID、Feed、QoS、属性）、负载和可选的路由状态组成。
// Encode 把信封和路由写入结构化文档，Decode 反向重建；路由的重建交给
// RoutingDecoder，类型标签无法识别时 Decode 返回错误而不是部分对象。
//
// 线上路径：
//
//	fab/id        消息 ID
//	fab/feed      Feed 描述符
//	fab/qos       服务质量
//	fab/props     属性映射
//	fab/payload   base64 编码的负载
//	fab/rt/...    路由状态
package message
