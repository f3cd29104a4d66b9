package natsbus

import "errors"

var (
	// ErrNotConnected 连接不可用
	ErrNotConnected = errors.New("natsbus: not connected")

	// ErrInvalidConfig 无效的配置
	ErrInvalidConfig = errors.New("natsbus: invalid config")

	// ErrClosed 传输已关闭
	ErrClosed = errors.New("natsbus: closed")
)
