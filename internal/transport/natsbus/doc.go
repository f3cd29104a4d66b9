// Package natsbus 在 NATS 上实现节点发送和订阅者投递
//
// 主题布局：
//
//	<prefix>.node.<node>                                 发往节点的消息
//	<prefix>.sub.<actor>.<platform>.<service>.<feed>      投递给本地订阅者的消息
//
// 主题段中的 '.'、'%'、空白和通配符转义为 %XX，空段写作 '%'。
// 消息头 Fabric-Feed 和 Fabric-QoS 携带 Feed 描述符和服务质量；
// Reliable 服务质量的消息在发布后刷新连接，确认已写入服务器。
package natsbus
