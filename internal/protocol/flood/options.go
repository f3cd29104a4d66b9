package flood

import (
	"fmt"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-fabric/config"
)

// Config 去重缓存配置
type Config struct {
	// SweepInterval 后台清理间隔
	SweepInterval time.Duration

	// Capacity 条目上限，超过时淘汰最久未访问的条目；0 表示不限制
	Capacity uint64

	// Clock 清理循环使用的时钟，测试中可替换为 clock.NewMock()
	Clock clock.Clock
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		SweepInterval: 60 * time.Second,
		Clock:         clock.New(),
	}
}

// ConfigFromUnified 从统一配置创建去重缓存配置
func ConfigFromUnified(cfg *config.Config) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	c.SweepInterval = cfg.Flood.SweepInterval.Duration()
	c.Capacity = cfg.Flood.Capacity
	return c
}

// Validate 验证配置
func (c Config) Validate() error {
	if c.SweepInterval <= 0 {
		return fmt.Errorf("%w: sweep interval must be positive", ErrInvalidConfig)
	}
	return nil
}

// Option 配置选项
type Option func(*Config)

// WithSweepInterval 设置清理间隔
func WithSweepInterval(d time.Duration) Option {
	return func(c *Config) { c.SweepInterval = d }
}

// WithCapacity 设置条目上限
func WithCapacity(n uint64) Option {
	return func(c *Config) { c.Capacity = n }
}

// WithClock 设置时钟
func WithClock(clk clock.Clock) Option {
	return func(c *Config) { c.Clock = clk }
}
