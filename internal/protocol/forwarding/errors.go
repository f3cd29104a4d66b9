package forwarding

import "errors"

var (
	// ErrQueueFull 出站队列已满
	ErrQueueFull = errors.New("forwarding: queue full")

	// ErrInvalidMessage 出站消息为空
	ErrInvalidMessage = errors.New("forwarding: invalid outbound message")

	// ErrAlreadyStarted 已启动
	ErrAlreadyStarted = errors.New("forwarding: already started")

	// ErrInvalidConfig 无效的配置
	ErrInvalidConfig = errors.New("forwarding: invalid config")

	// ErrNoTransport 缺少传输层
	ErrNoTransport = errors.New("forwarding: no transport")

	// ErrUnknownAction 未知的出站动作
	ErrUnknownAction = errors.New("forwarding: unknown action")
)
