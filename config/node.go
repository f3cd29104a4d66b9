package config

import "errors"

// NodeConfig 本地节点配置
type NodeConfig struct {
	// ID 本地节点标识，部署内全局唯一
	ID string `json:"id" yaml:"id"`
}

// DefaultNodeConfig 返回默认节点配置
func DefaultNodeConfig() NodeConfig {
	return NodeConfig{}
}

// Validate 验证节点配置
func (c NodeConfig) Validate() error {
	if c.ID == "" {
		return errors.New("node id is required")
	}
	return nil
}

// TopologyConfig 拓扑配置
type TopologyConfig struct {
	// File 拓扑描述文件（YAML），为空表示由程序填充
	File string `json:"file,omitempty" yaml:"file,omitempty"`
}

// DefaultTopologyConfig 返回默认拓扑配置
func DefaultTopologyConfig() TopologyConfig {
	return TopologyConfig{}
}
