// Package introspect 提供本地自省 HTTP 服务
//
// 该服务运行在本地端口，提供 JSON 格式的诊断信息，用于调试和监控。
// 默认绑定到 127.0.0.1，不暴露到网络。
//
// # 端点
//
//	GET /debug/introspect               - 完整诊断报告 (JSON)
//	GET /debug/introspect/node          - 本地节点
//	GET /debug/introspect/topology      - 拓扑节点与邻接关系
//	GET /debug/introspect/subscriptions - 本地订阅
//	GET /debug/introspect/forwarding    - 出站转发统计
//	GET /debug/introspect/traffic       - 按节点的流量统计
//	GET /debug/introspect/runtime       - Go 运行时信息
//	GET /metrics                        - Prometheus 指标
//	GET /debug/pprof/*                  - Go pprof 端点
//	GET /health                         - 健康检查
//
// # 使用示例
//
//	server := introspect.New(introspect.Config{
//	    Addr:     "127.0.0.1:6060",
//	    Node:     "A",
//	    Topology: registry,
//	})
//	server.Start(ctx)
//	defer server.Stop()
//
// 通过 config.Diagnostics.EnableIntrospect 配置启用。
package introspect
