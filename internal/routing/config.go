package routing

import (
	"fmt"
	"time"

	"github.com/dep2p/go-fabric/config"
	"github.com/dep2p/go-fabric/pkg/types"
)

// ============================================================================
//                              配置定义
// ============================================================================

// Config 路由配置
type Config struct {
	// LocalNode 本地节点
	LocalNode types.NodeID

	// FloodTTL 线上缺少 TTL 时洪泛路由使用的默认值，<= 0 表示永不过期
	FloodTTL time.Duration

	// PathCacheSize 最短路径缓存容量，0 表示不缓存
	PathCacheSize int

	// PathCacheTTL 最短路径缓存有效期
	PathCacheTTL time.Duration
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		FloodTTL:      10 * time.Minute,
		PathCacheSize: 256,
		PathCacheTTL:  30 * time.Second,
	}
}

// ConfigFromUnified 从统一配置创建路由配置
func ConfigFromUnified(cfg *config.Config) *Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	c.LocalNode = types.NodeID(cfg.Node.ID)
	c.FloodTTL = cfg.Routing.FloodTTL.Duration()
	c.PathCacheSize = cfg.Routing.PathCacheSize
	c.PathCacheTTL = cfg.Routing.PathCacheTTL.Duration()
	return c
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.LocalNode.IsEmpty() {
		return fmt.Errorf("%w: local node is required", ErrInvalidConfig)
	}
	if c.PathCacheSize < 0 {
		return fmt.Errorf("%w: path cache size must not be negative", ErrInvalidConfig)
	}
	if c.PathCacheTTL < 0 {
		return fmt.Errorf("%w: path cache ttl must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Clone 克隆配置
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
