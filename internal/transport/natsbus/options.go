package natsbus

import (
	"fmt"
	"strings"
	"time"

	"github.com/dep2p/go-fabric/config"
)

// Config NATS 传输配置
type Config struct {
	// URL NATS 服务地址
	URL string

	// SubjectPrefix 主题前缀
	// 默认: fabric
	SubjectPrefix string

	// ClientName 连接名称
	ClientName string

	// ReconnectWait 重连等待时间
	// 默认: 2s
	ReconnectWait time.Duration

	// MaxReconnects 最大重连次数，-1 表示无限
	MaxReconnects int

	// FlushTimeout 调用方 context 没有截止时间时 Reliable 消息的刷新超时
	// 默认: 5s
	FlushTimeout time.Duration
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		SubjectPrefix: "fabric",
		ReconnectWait: 2 * time.Second,
		MaxReconnects: -1,
		FlushTimeout:  5 * time.Second,
	}
}

// ConfigFromUnified 从统一配置创建传输配置
func ConfigFromUnified(cfg *config.Config) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	t := cfg.Transport
	c.URL = t.NATSURL
	c.SubjectPrefix = t.SubjectPrefix
	c.ClientName = t.ClientName
	c.ReconnectWait = t.ReconnectWait.Duration()
	c.MaxReconnects = t.MaxReconnects
	if c.ClientName == "" && cfg.Node.ID != "" {
		c.ClientName = "fabric-" + cfg.Node.ID
	}
	return c
}

// Validate 验证配置
func (c Config) Validate() error {
	if c.SubjectPrefix == "" || strings.ContainsAny(c.SubjectPrefix, " *>") {
		return fmt.Errorf("%w: bad subject prefix %q", ErrInvalidConfig, c.SubjectPrefix)
	}
	if c.FlushTimeout <= 0 {
		return fmt.Errorf("%w: flush timeout must be positive", ErrInvalidConfig)
	}
	return nil
}
