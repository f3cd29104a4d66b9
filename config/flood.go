package config

import (
	"errors"
	"time"
)

// FloodConfig 洪泛去重缓存配置
type FloodConfig struct {
	// SweepInterval 后台清理间隔
	SweepInterval Duration `json:"sweep_interval" yaml:"sweep_interval"`

	// Capacity 缓存容量上限，0 表示不限制
	Capacity uint64 `json:"capacity" yaml:"capacity"`
}

// DefaultFloodConfig 返回默认洪泛配置
func DefaultFloodConfig() FloodConfig {
	return FloodConfig{
		SweepInterval: Duration(60 * time.Second),
		Capacity:      0,
	}
}

// Validate 验证洪泛配置
func (c FloodConfig) Validate() error {
	if c.SweepInterval <= 0 {
		return errors.New("flood sweep interval must be positive")
	}
	return nil
}
