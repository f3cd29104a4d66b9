package bus

import "errors"

var (
	// ErrNoRouting 消息没有路由
	ErrNoRouting = errors.New("bus: message has no routing")

	// ErrInvalidSubscription 订阅缺少 Actor 或 Feed
	ErrInvalidSubscription = errors.New("bus: invalid subscription")

	// ErrInvalidConfig 无效的配置
	ErrInvalidConfig = errors.New("bus: invalid config")
)
