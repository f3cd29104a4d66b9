// Package config 提供 go-fabric 的统一配置管理
//
// 本包采用混合配置模式：
//   - 主 Config 结构体嵌入所有子配置
//   - 每个子配置在独立文件中定义
//   - 支持从 JSON 或 YAML 加载配置
//
// 使用示例：
//
//	cfg := config.NewConfig()
//	cfg.Node.ID = "node-a"
//
//	cfg, err := config.Load("fabric.yaml")
package config

import "go.uber.org/multierr"

// Config 是 go-fabric 的完整配置结构
//
// 配置按照功能模块组织：
//   - Node: 本地节点身份
//   - Topology: 拓扑文件
//   - Routing: 路由策略
//   - Flood: 洪泛去重缓存
//   - Forwarding: 出站转发
//   - Transport: NATS 传输
//   - Log: 日志输出
//   - Diagnostics: 自省服务
type Config struct {
	// Node 本地节点配置
	Node NodeConfig `json:"node" yaml:"node"`

	// Topology 拓扑配置
	Topology TopologyConfig `json:"topology" yaml:"topology"`

	// Routing 路由配置
	Routing RoutingConfig `json:"routing" yaml:"routing"`

	// Flood 洪泛去重配置
	Flood FloodConfig `json:"flood" yaml:"flood"`

	// Forwarding 出站转发配置
	Forwarding ForwardingConfig `json:"forwarding" yaml:"forwarding"`

	// Transport 传输层配置
	Transport TransportConfig `json:"transport" yaml:"transport"`

	// Log 日志配置
	Log LogConfig `json:"log" yaml:"log"`

	// Diagnostics 诊断配置
	Diagnostics DiagnosticsConfig `json:"diagnostics" yaml:"diagnostics"`
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	return &Config{
		Node:        DefaultNodeConfig(),
		Topology:    DefaultTopologyConfig(),
		Routing:     DefaultRoutingConfig(),
		Flood:       DefaultFloodConfig(),
		Forwarding:  DefaultForwardingConfig(),
		Transport:   DefaultTransportConfig(),
		Log:         DefaultLogConfig(),
		Diagnostics: DefaultDiagnosticsConfig(),
	}
}

// Validate 验证配置的有效性
//
// 所有子配置都会被检查，错误合并后一次性返回。
func (c *Config) Validate() error {
	return multierr.Combine(
		c.Node.Validate(),
		c.Routing.Validate(),
		c.Flood.Validate(),
		c.Forwarding.Validate(),
		c.Transport.Validate(),
		c.Log.Validate(),
		c.Diagnostics.Validate(),
	)
}
