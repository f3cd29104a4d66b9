package config

import (
	"errors"
	"strings"
	"time"
)

// TransportConfig NATS 传输配置
type TransportConfig struct {
	// NATSURL NATS 服务地址，为空时不启用 NATS 传输
	NATSURL string `json:"nats_url,omitempty" yaml:"nats_url,omitempty"`

	// SubjectPrefix 主题前缀
	SubjectPrefix string `json:"subject_prefix" yaml:"subject_prefix"`

	// ClientName 连接名称
	ClientName string `json:"client_name,omitempty" yaml:"client_name,omitempty"`

	// ReconnectWait 重连等待时间
	ReconnectWait Duration `json:"reconnect_wait" yaml:"reconnect_wait"`

	// MaxReconnects 最大重连次数，-1 表示无限
	MaxReconnects int `json:"max_reconnects" yaml:"max_reconnects"`
}

// DefaultTransportConfig 返回默认传输配置
func DefaultTransportConfig() TransportConfig {
	return TransportConfig{
		SubjectPrefix: "fabric",
		ReconnectWait: Duration(2 * time.Second),
		MaxReconnects: -1,
	}
}

// Validate 验证传输配置
func (c TransportConfig) Validate() error {
	if c.SubjectPrefix == "" {
		return errors.New("transport subject prefix is required")
	}
	if strings.ContainsAny(c.SubjectPrefix, " *>") {
		return errors.New("transport subject prefix must not contain spaces or wildcards")
	}
	return nil
}
