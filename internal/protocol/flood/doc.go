// Package flood 实现洪泛去重缓存
//
// 每个节点对同一条洪泛消息最多处理一次：第一次看到消息 ID 时登记，
// 之后在 TTL 内再次看到同一 ID 都视为重复。
//
// 条目存放在 jellydator/ttlcache 中，ttl <= 0 的条目永不过期。
// 后台清理循环按固定间隔（默认 60 秒）删除已过期条目；
// 过期但尚未清理的条目在查询时同样视为不存在。
package flood
