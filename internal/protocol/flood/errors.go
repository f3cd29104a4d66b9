package flood

import "errors"

var (
	// ErrAlreadyStarted 清理循环已启动
	ErrAlreadyStarted = errors.New("flood: sweeper already started")

	// ErrInvalidConfig 无效的配置
	ErrInvalidConfig = errors.New("flood: invalid config")
)
