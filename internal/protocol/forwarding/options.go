package forwarding

import (
	"fmt"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-fabric/config"
)

// Config 转发配置
type Config struct {
	// IdleInterval 队列为空时的兜底轮询间隔
	// 默认: 1000ms
	IdleInterval time.Duration

	// DispatchTimeout 单次发送/投递超时，0 表示不限制
	// 默认: 10s
	DispatchTimeout time.Duration

	// DispatchRate 每秒最大分发数，0 表示不限速
	DispatchRate float64

	// DispatchBurst 限速突发量
	// 默认: 1
	DispatchBurst int

	// MaxQueueSize 队列上限，0 表示不限制
	MaxQueueSize int

	// Clock 空闲轮询使用的时钟
	Clock clock.Clock
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		IdleInterval:    1000 * time.Millisecond,
		DispatchTimeout: 10 * time.Second,
		DispatchBurst:   1,
		Clock:           clock.New(),
	}
}

// ConfigFromUnified 从统一配置创建转发配置
func ConfigFromUnified(cfg *config.Config) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	f := cfg.Forwarding
	c.IdleInterval = f.IdleInterval.Duration()
	c.DispatchTimeout = f.DispatchTimeout.Duration()
	c.DispatchRate = f.DispatchRate
	c.DispatchBurst = f.DispatchBurst
	c.MaxQueueSize = f.MaxQueueSize
	return c
}

// Validate 验证配置
func (c Config) Validate() error {
	if c.IdleInterval <= 0 {
		return fmt.Errorf("%w: idle interval must be positive", ErrInvalidConfig)
	}
	if c.DispatchTimeout < 0 {
		return fmt.Errorf("%w: dispatch timeout must not be negative", ErrInvalidConfig)
	}
	if c.DispatchRate < 0 {
		return fmt.Errorf("%w: dispatch rate must not be negative", ErrInvalidConfig)
	}
	if c.DispatchRate > 0 && c.DispatchBurst <= 0 {
		return fmt.Errorf("%w: dispatch burst must be positive", ErrInvalidConfig)
	}
	if c.MaxQueueSize < 0 {
		return fmt.Errorf("%w: max queue size must not be negative", ErrInvalidConfig)
	}
	return nil
}
