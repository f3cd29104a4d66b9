package config

import (
	"errors"
	"time"
)

// ForwardingConfig 出站转发配置
type ForwardingConfig struct {
	// IdleInterval 队列为空时的最长等待时间
	IdleInterval Duration `json:"idle_interval" yaml:"idle_interval"`

	// DispatchTimeout 单次发送/投递超时，0 表示不限制
	DispatchTimeout Duration `json:"dispatch_timeout" yaml:"dispatch_timeout"`

	// DispatchRate 每秒最大分发数，0 表示不限速
	DispatchRate float64 `json:"dispatch_rate" yaml:"dispatch_rate"`

	// DispatchBurst 限速突发量
	DispatchBurst int `json:"dispatch_burst" yaml:"dispatch_burst"`

	// MaxQueueSize 出站队列上限，0 表示不限制
	MaxQueueSize int `json:"max_queue_size" yaml:"max_queue_size"`
}

// DefaultForwardingConfig 返回默认转发配置
func DefaultForwardingConfig() ForwardingConfig {
	return ForwardingConfig{
		IdleInterval:    Duration(1000 * time.Millisecond),
		DispatchTimeout: Duration(10 * time.Second),
		DispatchRate:    0,
		DispatchBurst:   1,
		MaxQueueSize:    0,
	}
}

// Validate 验证转发配置
func (c ForwardingConfig) Validate() error {
	if c.IdleInterval <= 0 {
		return errors.New("forwarding idle interval must be positive")
	}
	if c.DispatchTimeout < 0 {
		return errors.New("forwarding dispatch timeout must not be negative")
	}
	if c.DispatchRate < 0 {
		return errors.New("forwarding dispatch rate must not be negative")
	}
	if c.DispatchRate > 0 && c.DispatchBurst <= 0 {
		return errors.New("forwarding dispatch burst must be positive when rate limited")
	}
	if c.MaxQueueSize < 0 {
		return errors.New("forwarding max queue size must not be negative")
	}
	return nil
}
