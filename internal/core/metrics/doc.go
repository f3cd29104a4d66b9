// Package metrics 提供总线监控指标
//
// 两部分组成：
//
//   - TrafficCounter 按节点和 Feed 统计出入站字节数与最近 60 秒速率，
//     MeteredTransport 在传输层外包一层自动记录出站流量
//   - Collector 以 Prometheus 指标导出转发、去重缓存和路由计算的计数，
//     同时实现 forwarding、flood、routing 三个包的 Recorder 接口
//
// # 快速开始
//
//	counter := metrics.NewTrafficCounter()
//	tr := metrics.NewMeteredTransport(natsTransport, counter)
//
//	collector, _ := metrics.NewCollector(prometheus.NewRegistry())
//	svc.SetRecorder(collector)
//	cache.SetRecorder(collector)
//	factory.SetRecorder(collector)
//
//	stats := counter.Totals()
//	fmt.Printf("In: %d, Out: %d\n", stats.TotalIn, stats.TotalOut)
//
// # Prometheus 指标
//
//	fabric_forwarding_dispatched_total{action}
//	fabric_forwarding_failed_total{action}
//	fabric_forwarding_queue_depth
//	fabric_flood_duplicates_total
//	fabric_flood_evicted_total
//	fabric_flood_cache_entries
//	fabric_routing_paths_total{result}
//	fabric_routing_decode_failures_total
package metrics
