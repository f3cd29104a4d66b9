package config

import (
	"errors"
	"time"
)

// RoutingConfig 路由配置
type RoutingConfig struct {
	// FloodTTL 洪泛消息在去重缓存中的默认存活时间
	//
	// 线上读取到的洪泛路由缺少 TTL 时使用该值，<= 0 表示永不过期。
	FloodTTL Duration `json:"flood_ttl" yaml:"flood_ttl"`

	// PathCacheSize 最短路径缓存容量
	PathCacheSize int `json:"path_cache_size" yaml:"path_cache_size"`

	// PathCacheTTL 最短路径缓存有效期
	PathCacheTTL Duration `json:"path_cache_ttl" yaml:"path_cache_ttl"`
}

// DefaultRoutingConfig 返回默认路由配置
func DefaultRoutingConfig() RoutingConfig {
	return RoutingConfig{
		FloodTTL:      Duration(10 * time.Minute), // 洪泛 TTL：600000 ms
		PathCacheSize: 256,                        // 路径缓存：256 条
		PathCacheTTL:  Duration(30 * time.Second), // 拓扑变化后最多 30 秒生效
	}
}

// Validate 验证路由配置
func (c RoutingConfig) Validate() error {
	if c.PathCacheSize < 0 {
		return errors.New("routing path cache size must not be negative")
	}
	if c.PathCacheTTL < 0 {
		return errors.New("routing path cache ttl must not be negative")
	}
	return nil
}
